package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
)

// HandSample is one frame of controller data for a hand.
type HandSample struct {
	Grip      float64
	Trigger   float64
	Primary   float64
	Secondary float64

	Position mgl64.Vec3
	Rotation mgl64.Quat
	Tracked  bool
}

// InputProvider supplies controller samples. Implementations poll a device
// or replay a recording.
type InputProvider interface {
	Sample(hand component.Hand) HandSample
}

// HandInputSystem copies controller samples into HandInput, derives hand
// velocities and places the hand's kinematic body.
type HandInputSystem struct {
	provider InputProvider
	dt       float64
}

// NewHandInputSystem polls provider once per frame; dt is the frame time used
// for button hold times and velocities.
func NewHandInputSystem(provider InputProvider, dt float64) *HandInputSystem {
	return &HandInputSystem{provider: provider, dt: dt}
}

func (s *HandInputSystem) Update(w *ecs.World) {
	if s == nil || w == nil || s.provider == nil {
		return
	}
	ecs.ForEach(w, component.HandInputComponent.Kind(), func(e ecs.Entity, in *component.HandInput) {
		sample := s.provider.Sample(in.Hand)
		in.Grip.Update(sample.Grip, s.dt)
		in.Trigger.Update(sample.Trigger, s.dt)
		in.Primary.Update(sample.Primary, s.dt)
		in.Secondary.Update(sample.Secondary, s.dt)
		in.Tracked = sample.Tracked
		if !sample.Tracked {
			in.Velocity = mgl64.Vec3{}
			in.AngularVelocity = mgl64.Vec3{}
			return
		}

		rot := common.SafeQuat(sample.Rotation)
		if in.HasPrev && s.dt > 0 {
			in.Velocity = sample.Position.Sub(in.PrevPosition).Mul(1 / s.dt)
			in.AngularVelocity = angularVelocity(in.PrevRotation, rot, s.dt)
		}
		in.PrevPosition = sample.Position
		in.PrevRotation = rot
		in.HasPrev = true

		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
			t.Position = sample.Position
			t.Rotation = rot
		}
		if rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind()); ok && rb.Body != nil && rb.Body.Kinematic() {
			rb.Body.MoveTo(sample.Position, rot)
		}
	})
}

// angularVelocity is the rotation from prev to cur expressed in radians per
// second about a world axis.
func angularVelocity(prev, cur mgl64.Quat, dt float64) mgl64.Vec3 {
	angle, axis, ok := common.ToAngleAxis(cur.Mul(common.SafeQuat(prev).Inverse()))
	if !ok {
		return mgl64.Vec3{}
	}
	if angle > 180 {
		angle -= 360
	}
	return axis.Mul(mgl64.DegToRad(angle) / dt)
}
