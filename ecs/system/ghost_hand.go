package system

import (
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
)

const ghostVisibleAlpha = 0.0001

// GhostHandSystem fades the ghost hand in as the solid hand separates from the
// controller.
type GhostHandSystem struct{}

func NewGhostHandSystem() *GhostHandSystem {
	return &GhostHandSystem{}
}

func (s *GhostHandSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.GhostHandComponent.Kind(), component.SolidHandComponent.Kind(), func(e ecs.Entity, gh *component.GhostHand, sh *component.SolidHand) {
		controller, ok := worldPose(w, e)
		if !ok {
			return
		}
		dist := controller.Position.Sub(sh.Pose.Position).Len()
		gh.Stretch = common.InverseLerp(gh.MinDistance, gh.MaxDistance, dist)
		gh.Alpha = gh.Opacity * gh.Stretch
		gh.Visible = gh.Alpha > ghostVisibleAlpha
	})
}
