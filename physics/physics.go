// Package physics defines the contract between the hand interaction systems
// and the rigid body engine that integrates them.
package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrUnknownBody     = errors.New("physics: unknown body")
	ErrUnknownCollider = errors.New("physics: unknown collider")
	ErrInvalidShape    = errors.New("physics: invalid collider shape")
)

// ColliderID identifies a collider inside one World. Zero is never issued.
type ColliderID uint64

// LayerMask selects collider layers. Bit 31 is reserved for trigger volumes so
// that raycasts never report them.
type LayerMask uint32

const (
	// AllLayers matches every regular layer.
	AllLayers LayerMask = 0x7FFFFFFF
	// MaxLayer is the highest usable layer index.
	MaxLayer = 30
)

// Contains reports whether layer is selected by m.
func (m LayerMask) Contains(layer uint8) bool {
	if layer > MaxLayer {
		return false
	}
	return m&(1<<layer) != 0
}

// MaskOf builds a mask selecting the given layers.
func MaskOf(layers ...uint8) LayerMask {
	var m LayerMask
	for _, l := range layers {
		if l <= MaxLayer {
			m |= 1 << l
		}
	}
	return m
}

// AABB is an axis aligned bounding box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b AABB) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

func (b AABB) Overlaps(o AABB) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] < o.Min[i] || o.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Hit is the nearest collider struck by a ray.
type Hit struct {
	Collider ColliderID
	Distance float64
	Point    mgl64.Vec3
}

// Overlap reports a trigger collider starting or stopping to intersect
// another collider.
type Overlap struct {
	Trigger ColliderID
	Other   ColliderID
	Entered bool
}

// ColliderInfo is the engine-side view of a collider.
type ColliderInfo struct {
	// Owner is the ECS entity the collider was created for.
	Owner   uint64
	Shape   Shape
	Layer   uint8
	Trigger bool
	Enabled bool
	Bounds  AABB
}

// Body is a rigid body driven by forces computed outside the engine.
type Body interface {
	Position() mgl64.Vec3
	Rotation() mgl64.Quat
	Velocity() mgl64.Vec3
	AngularVelocity() mgl64.Vec3
	Mass() float64

	// AddVelocityChange applies a mass-independent impulse.
	AddVelocityChange(dv mgl64.Vec3)
	// AddAngularVelocityChange applies a mass-independent angular impulse.
	AddAngularVelocityChange(dw mgl64.Vec3)
	SetAngularVelocity(w mgl64.Vec3)

	// MoveTo teleports the body; kinematic bodies use it every step.
	MoveTo(pos mgl64.Vec3, rot mgl64.Quat)
	// MoveRotation sets the orientation without touching position.
	MoveRotation(rot mgl64.Quat)

	Kinematic() bool
	SetKinematic(kinematic bool)
	UseGravity() bool
	SetUseGravity(enabled bool)
}

// Space is the read side every interaction system needs.
type Space interface {
	// Raycast returns the nearest non-trigger, enabled collider on a layer in
	// mask along dir within maxDist.
	Raycast(origin, dir mgl64.Vec3, maxDist float64, mask LayerMask) (Hit, bool)
	Collider(id ColliderID) (ColliderInfo, bool)
	SetColliderEnabled(id ColliderID, enabled bool)
	// DrainOverlaps returns overlap changes recorded since the last call.
	DrainOverlaps() []Overlap
}

// Shape selects the collider geometry.
type Shape uint8

const (
	ShapeSphere Shape = iota
	ShapeBox
)

// BodyDesc describes a new rigid body.
type BodyDesc struct {
	Position   mgl64.Vec3
	Rotation   mgl64.Quat
	Mass       float64
	Kinematic  bool
	UseGravity bool
}

// ColliderDesc describes a new collider. A nil Body makes it static.
type ColliderDesc struct {
	Body        Body
	Shape       Shape
	Radius      float64
	HalfExtents mgl64.Vec3
	// Offset is in the body's local frame, or world space when static.
	Offset  mgl64.Vec3
	Layer   uint8
	Trigger bool
	Owner   uint64
}

// World is a complete engine: the interaction-facing Space plus construction
// and stepping.
type World interface {
	Space
	NewBody(desc BodyDesc) Body
	NewCollider(desc ColliderDesc) (ColliderID, error)
	RemoveBody(b Body)
	Step(dt float64)
}
