package component

import "github.com/go-gl/mathgl/mgl64"

// HandInput stores per-frame controller state for one hand.
type HandInput struct {
	Hand Hand

	Grip      ButtonState
	Trigger   ButtonState
	Primary   ButtonState
	Secondary ButtonState

	Tracked bool
	// Velocity and AngularVelocity are derived from pose changes between
	// frames.
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	PrevPosition mgl64.Vec3
	PrevRotation mgl64.Quat
	HasPrev      bool
}

var HandInputComponent = NewComponent[HandInput]()
