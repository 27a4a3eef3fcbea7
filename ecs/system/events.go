package system

import (
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
)

// Event types pushed to the world event queue.
const (
	EventGrabbableEnter = "grabbable_enter"
	EventGrabbableExit  = "grabbable_exit"
	EventGrabBegin      = "grab_begin"
	EventGrabEnd        = "grab_end"
	EventReleased       = "released"
)

// GrabEvent is the payload of every grab related event.
type GrabEvent struct {
	Grabber   ecs.Entity
	Grabbable ecs.Entity
	Anchor    component.AnchorRef
	Hand      component.Hand
}
