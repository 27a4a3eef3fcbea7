package component

import "github.com/go-gl/mathgl/mgl64"

// SolidHand is the rendered hand that snaps onto a held anchor while the
// ghost hand keeps following the controller.
type SolidHand struct {
	// AttachOffset is the grip point in the solid hand's local frame.
	AttachOffset mgl64.Vec3
	Anchor       AnchorRef
	Hand         Hand

	// Transition blends from the controller pose (0) to the anchor pose (1).
	Transition float64
	// Target is the last gripped pose; it is kept while the hand eases back.
	Target Transform
	Pose   Transform
}

var SolidHandComponent = NewComponent[SolidHand]()

const (
	DefaultGhostMinDistance = 0.01
	DefaultGhostMaxDistance = 0.5
)

// GhostHand fades in as the solid hand is pulled away from the controller.
type GhostHand struct {
	MinDistance float64
	MaxDistance float64
	Opacity     float64

	Stretch float64
	Alpha   float64
	Visible bool
}

var GhostHandComponent = NewComponent[GhostHand]()
