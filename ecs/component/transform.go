package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
)

// Transform is a world space pose.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

func NewTransform(pos mgl64.Vec3, rot mgl64.Quat) Transform {
	return Transform{Position: pos, Rotation: common.SafeQuat(rot)}
}

// Rot returns the rotation, treating the zero value as identity.
func (t Transform) Rot() mgl64.Quat {
	return common.SafeQuat(t.Rotation)
}

func (t Transform) Up() mgl64.Vec3 {
	return t.Rot().Rotate(common.Up)
}

func (t Transform) Forward() mgl64.Vec3 {
	return t.Rot().Rotate(common.Forward)
}

// Apply maps a local pose into this frame.
func (t Transform) Apply(local Transform) Transform {
	rot := t.Rot()
	return Transform{
		Position: t.Position.Add(rot.Rotate(local.Position)),
		Rotation: rot.Mul(local.Rot()).Normalize(),
	}
}

// Relative expresses world in this frame; it is the inverse of Apply.
func (t Transform) Relative(world Transform) Transform {
	inv := t.Rot().Inverse()
	return Transform{
		Position: inv.Rotate(world.Position.Sub(t.Position)),
		Rotation: inv.Mul(world.Rot()).Normalize(),
	}
}

var TransformComponent = NewComponent[Transform]()

// LocalTransform is a pose relative to the Parent entity.
type LocalTransform struct {
	Transform
}

var LocalTransformComponent = NewComponent[LocalTransform]()

// Parent links an entity to the entity it is attached to.
// ecs.Entity is uint64.
type Parent struct {
	Entity uint64
}

var ParentComponent = NewComponent[Parent]()

type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
