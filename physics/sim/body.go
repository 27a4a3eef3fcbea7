package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/physics"
)

var _ physics.Body = (*Body)(nil)

// Body is a point-mass rigid body with a free orientation.
type Body struct {
	world *World

	pos    mgl64.Vec3
	rot    mgl64.Quat
	vel    mgl64.Vec3
	angVel mgl64.Vec3
	mass   float64

	kinematic bool
	gravity   bool
	removed   bool
}

func (b *Body) Position() mgl64.Vec3        { return b.pos }
func (b *Body) Rotation() mgl64.Quat        { return b.rot }
func (b *Body) Velocity() mgl64.Vec3        { return b.vel }
func (b *Body) AngularVelocity() mgl64.Vec3 { return b.angVel }
func (b *Body) Mass() float64               { return b.mass }
func (b *Body) Kinematic() bool             { return b.kinematic }
func (b *Body) UseGravity() bool            { return b.gravity }

func (b *Body) AddVelocityChange(dv mgl64.Vec3) {
	if b.kinematic || !common.IsFiniteVec(dv) {
		return
	}
	b.vel = b.vel.Add(dv)
}

func (b *Body) AddAngularVelocityChange(dw mgl64.Vec3) {
	if b.kinematic || !common.IsFiniteVec(dw) {
		return
	}
	b.angVel = b.angVel.Add(dw)
}

func (b *Body) SetAngularVelocity(w mgl64.Vec3) {
	if b.kinematic || !common.IsFiniteVec(w) {
		return
	}
	b.angVel = w
}

// SetVelocity overrides the linear velocity.
func (b *Body) SetVelocity(v mgl64.Vec3) {
	if b.kinematic || !common.IsFiniteVec(v) {
		return
	}
	b.vel = v
}

func (b *Body) MoveTo(pos mgl64.Vec3, rot mgl64.Quat) {
	b.pos = pos
	b.rot = common.SafeQuat(rot)
}

func (b *Body) MoveRotation(rot mgl64.Quat) {
	b.rot = common.SafeQuat(rot)
}

func (b *Body) SetKinematic(kinematic bool) {
	b.kinematic = kinematic
	if kinematic {
		b.vel = mgl64.Vec3{}
		b.angVel = mgl64.Vec3{}
	}
}

func (b *Body) SetUseGravity(enabled bool) {
	b.gravity = enabled
}

func (b *Body) integrate(gravity mgl64.Vec3, dt float64) {
	if b.kinematic || b.removed {
		return
	}
	if b.gravity {
		b.vel = b.vel.Add(gravity.Mul(dt))
	}
	b.pos = b.pos.Add(b.vel.Mul(dt))

	speed := b.angVel.Len()
	if speed < 1e-12 {
		return
	}
	step := mgl64.QuatRotate(speed*dt, b.angVel.Mul(1/speed))
	b.rot = step.Mul(b.rot).Normalize()
}
