package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/physics"
)

// Grabber is the per-hand grab controller state.
type Grabber struct {
	Hand Hand
	// FocusOffset is the grab focus point in the hand's local frame.
	FocusOffset mgl64.Vec3
	// Trigger is the hand's proximity volume.
	Trigger physics.ColliderID
	// MaxRadius limits verified candidate distance. Zero derives it from the
	// trigger bounds.
	MaxRadius       float64
	GrabbableLayers physics.LayerMask
	// RaycastLayers are the layers that can occlude a candidate. Zero means
	// every layer; the hand's own layer should be left out.
	RaycastLayers physics.LayerMask

	// ecs.Entity is uint64.
	Grabbed  uint64
	GrabPose PoseID

	HandCollidersDisabled bool

	ProximityPose PoseID
	// PoseSource is the pose trigger collider that set ProximityPose, zero
	// when a grabbable set it.
	PoseSource physics.ColliderID

	Proximity Proximity
}

var GrabberComponent = NewComponent[Grabber]()

func (g *Grabber) IsGrabbing() bool {
	return g.Grabbed != 0
}
