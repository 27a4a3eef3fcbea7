package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"go.uber.org/zap"
)

// minGripSpan is the shortest anchor-to-anchor or hand-to-hand distance that
// still defines a two-handed axis.
const minGripSpan = 1e-4

// AttacherSystem pulls each grabbed body toward the hand holding it with
// velocity-change impulses.
type AttacherSystem struct{}

func NewAttacherSystem() *AttacherSystem {
	return &AttacherSystem{}
}

func (s *AttacherSystem) FixedUpdate(w *ecs.World, dt float64) {
	if w == nil || dt <= 0 {
		return
	}
	ecs.ForEach(w, component.AttacherComponent.Kind(), func(e ecs.Entity, att *component.Attacher) {
		s.step(w, att, dt)
	})
}

func (s *AttacherSystem) step(w *ecs.World, att *component.Attacher, dt float64) {
	if att.DisableForce {
		return
	}
	if !att.Attached() {
		att.Engaged = 0
		return
	}
	rb, ok := ecs.Get(w, ent(att.Grabbed), component.RigidBodyComponent.Kind())
	if !ok || rb.Body == nil {
		return
	}
	body := rb.Body
	target, okT := worldPose(w, ent(att.Target))
	anchor, okA := anchorPose(w, att.Anchor, att.Hand)
	if !okT || !okA {
		return
	}

	moveSpeed := att.MoveSpeed
	if moveSpeed <= 0 {
		moveSpeed = component.DefaultMoveSpeed
	}
	turnSpeed := att.TurnSpeed
	if turnSpeed <= 0 {
		turnSpeed = component.DefaultTurnSpeed
	}
	rate := att.EngageRate
	if rate <= 0 {
		rate = component.DefaultEngageRate
	}

	handVel, handAngVel := handVelocity(w, ent(att.Target))

	var (
		second       component.Transform
		secondTarget component.Transform
		twoHanded    bool
	)
	if att.TwoHanded() {
		var okS, okST bool
		second, okS = anchorPose(w, att.SecondAnchor, att.Hand.Other())
		secondTarget, okST = worldPose(w, ent(att.SecondTarget))
		twoHanded = okS && okST
	}

	mass := body.Mass()
	if twoHanded {
		mass *= 0.5
	}
	delta := target.Position.Sub(anchor.Position).Mul(moveSpeed / (1 + mass))

	if att.Engaged < 1 {
		att.Engaged = common.Lerp(att.Engaged, 1, rate)
	}

	angDelta := target.Rot().Mul(anchor.Rot().Inverse())
	if twoHanded {
		delta2 := secondTarget.Position.Sub(second.Position).Mul(moveSpeed / (1 + body.Mass()))
		delta = common.LerpVecUnclamped(delta, delta2, 0.5*att.Engaged)

		// Anchors or hands on one point leave no axis to align, so the
		// primary hand's rotation drives the turn instead.
		fromDir := anchor.Position.Sub(second.Position)
		toDir := target.Position.Sub(secondTarget.Position)
		if fromDir.Len() > minGripSpan && toDir.Len() > minGripSpan {
			from := common.LookRotation(fromDir, second.Up())
			toUp := common.LerpVec(target.Up(), secondTarget.Up(), 0.5)
			to := common.LookRotation(toDir, toUp)
			angDelta = to.Mul(from.Inverse())
		}
	}

	vel := body.Velocity()
	body.AddVelocityChange(common.LerpVec(vel, delta.Add(handVel), att.Engaged).Sub(vel))

	angle, axis, ok := common.ToAngleAxis(angDelta)
	if !ok {
		return
	}
	if angle > 180 {
		angle -= 360
	}
	magnitude := turnSpeed * mgl64.DegToRad(angle) / dt
	angVel := body.AngularVelocity()
	body.SetAngularVelocity(common.LerpVec(angVel, axis.Mul(magnitude), att.Engaged))
	body.AddAngularVelocityChange(handAngVel)
}

// handVelocity reads the hand's velocity from its body when it has one, else
// from the derived input velocities.
func handVelocity(w *ecs.World, hand ecs.Entity) (mgl64.Vec3, mgl64.Vec3) {
	if rb, ok := ecs.Get(w, hand, component.RigidBodyComponent.Kind()); ok && rb.Body != nil && !rb.Body.Kinematic() {
		return rb.Body.Velocity(), rb.Body.AngularVelocity()
	}
	if in, ok := ecs.Get(w, hand, component.HandInputComponent.Kind()); ok {
		return in.Velocity, in.AngularVelocity
	}
	return mgl64.Vec3{}, mgl64.Vec3{}
}

// Axis selects Euler axes for SnapOrient.
type Axis uint8

const (
	AxisX Axis = 1 << iota
	AxisY
	AxisZ

	AxisAll = AxisX | AxisY | AxisZ
)

// SnapOrient copies the chosen Euler angles of the hand target's rotation onto
// the held body in one step. It fails when the attacher holds nothing.
func SnapOrient(w *ecs.World, hand ecs.Entity, axes Axis) bool {
	att, ok := ecs.Get(w, hand, component.AttacherComponent.Kind())
	if !ok || !att.Attached() {
		common.Logger().Error("cannot snap orientation: body not attached", zap.Uint64("hand", uint64(hand)))
		return false
	}
	rb, okB := ecs.Get(w, ent(att.Grabbed), component.RigidBodyComponent.Kind())
	target, okT := worldPose(w, ent(att.Target))
	if !okB || rb.Body == nil || !okT {
		common.Logger().Error("cannot snap orientation: body not attached", zap.Uint64("hand", uint64(hand)))
		return false
	}

	want := common.QuatToEuler(target.Rot())
	rot := common.QuatToEuler(rb.Body.Rotation())
	if axes&AxisX != 0 {
		rot[0] = want[0]
	}
	if axes&AxisY != 0 {
		rot[1] = want[1]
	}
	if axes&AxisZ != 0 {
		rot[2] = want[2]
	}
	q := common.EulerToQuat(rot)
	rb.Body.MoveRotation(q)
	if t, ok := ecs.Get(w, ent(att.Grabbed), component.TransformComponent.Kind()); ok {
		t.Rotation = q
	}
	return true
}
