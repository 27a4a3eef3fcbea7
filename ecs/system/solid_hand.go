package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
)

const (
	solidHandEngage  = 0.125
	solidHandRelease = 0.875
	solidHandSnap    = 0.01
)

// SolidHandSystem blends the rendered hand from the controller pose onto the
// held anchor and back. It runs on the fixed step so it stays in phase with
// the attacher.
type SolidHandSystem struct{}

func NewSolidHandSystem() *SolidHandSystem {
	return &SolidHandSystem{}
}

func (s *SolidHandSystem) FixedUpdate(w *ecs.World, dt float64) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.SolidHandComponent.Kind(), func(e ecs.Entity, sh *component.SolidHand) {
		controller, ok := worldPose(w, e)
		if !ok {
			return
		}
		anchor, held := anchorPose(w, sh.Anchor, sh.Hand)
		if held {
			sh.Transition = common.Lerp(sh.Transition, 1, solidHandEngage)
			rot := anchor.Rot()
			sh.Target = component.Transform{
				Position: anchor.Position.Sub(rot.Rotate(sh.AttachOffset)),
				Rotation: rot,
			}
		} else {
			sh.Transition *= solidHandRelease
			if sh.Transition <= solidHandSnap {
				sh.Transition = 0
			}
		}

		if !held && sh.Transition == 0 {
			sh.Pose = controller
			return
		}
		sh.Pose = component.Transform{
			Position: common.LerpVec(controller.Position, sh.Target.Position, sh.Transition),
			Rotation: mgl64.QuatNlerp(controller.Rot(), sh.Target.Rot(), sh.Transition),
		}
	})
}
