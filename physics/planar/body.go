package planar

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/physics"
)

var _ physics.Body = (*Body)(nil)

// Body adapts a Chipmunk body to the 3D contract. Motion is confined to the XY
// plane and rotation to the Z axis; out of plane components are dropped.
//
// Kinematic bodies stay dynamic inside Chipmunk so their sensors still see
// static shapes, but they ignore impulses and are re-placed by MoveTo.
type Body struct {
	world     *World
	body      *cp.Body
	kinematic bool
	gravity   bool
	removed   bool
}

func (b *Body) Position() mgl64.Vec3 {
	p := b.body.Position()
	return mgl64.Vec3{p.X, p.Y, 0}
}

func (b *Body) Rotation() mgl64.Quat {
	return mgl64.QuatRotate(b.body.Angle(), common.Forward)
}

func (b *Body) Velocity() mgl64.Vec3 {
	v := b.body.Velocity()
	return mgl64.Vec3{v.X, v.Y, 0}
}

func (b *Body) AngularVelocity() mgl64.Vec3 {
	return mgl64.Vec3{0, 0, b.body.AngularVelocity()}
}

func (b *Body) Mass() float64 {
	return b.body.Mass()
}

func (b *Body) AddVelocityChange(dv mgl64.Vec3) {
	if b.kinematic || !common.IsFiniteVec(dv) {
		return
	}
	impulse := cp.Vector{X: dv.X(), Y: dv.Y()}.Mult(b.body.Mass())
	b.body.ApplyImpulseAtWorldPoint(impulse, b.body.Position())
}

func (b *Body) AddAngularVelocityChange(dw mgl64.Vec3) {
	if b.kinematic || !common.IsFinite(dw.Z()) {
		return
	}
	b.body.SetAngularVelocity(b.body.AngularVelocity() + dw.Z())
}

func (b *Body) SetAngularVelocity(w mgl64.Vec3) {
	if b.kinematic || !common.IsFinite(w.Z()) {
		return
	}
	b.body.SetAngularVelocity(w.Z())
}

func (b *Body) MoveTo(pos mgl64.Vec3, rot mgl64.Quat) {
	b.body.SetPosition(cp.Vector{X: pos.X(), Y: pos.Y()})
	b.MoveRotation(rot)
	if b.kinematic {
		b.body.SetVelocityVector(cp.Vector{})
		b.body.SetAngularVelocity(0)
	}
}

func (b *Body) MoveRotation(rot mgl64.Quat) {
	b.body.SetAngle(planeAngle(rot))
}

func (b *Body) Kinematic() bool  { return b.kinematic }
func (b *Body) UseGravity() bool { return b.gravity }

func (b *Body) SetKinematic(kinematic bool) {
	b.kinematic = kinematic
	b.applyVelocityFunc()
	if kinematic {
		b.body.SetVelocityVector(cp.Vector{})
		b.body.SetAngularVelocity(0)
	}
}

func (b *Body) SetUseGravity(enabled bool) {
	b.gravity = enabled
	b.applyVelocityFunc()
}

func (b *Body) applyVelocityFunc() {
	if b.gravity && !b.kinematic {
		b.body.SetVelocityUpdateFunc(cp.BodyUpdateVelocity)
		return
	}
	b.body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		cp.BodyUpdateVelocity(body, cp.Vector{}, damping, dt)
	})
}

// planeAngle is the rotation of rot about Z in radians.
func planeAngle(rot mgl64.Quat) float64 {
	e := common.QuatToEuler(rot)
	a := mgl64.DegToRad(e.Z())
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
