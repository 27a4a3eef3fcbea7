package system

import (
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"go.uber.org/zap"
)

// AnchorSystem resolves which anchors belong to each grabbable and keeps the
// cached anchor poses of LiveUpdate anchors current.
type AnchorSystem struct{}

func NewAnchorSystem() *AnchorSystem {
	return &AnchorSystem{}
}

func (s *AnchorSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach(w, component.GrabbableComponent.Kind(), func(e ecs.Entity, g *component.Grabbable) {
		resolveAnchors(w, e, g)
	})
	ecs.ForEach(w, component.AnchorComponent.Kind(), func(e ecs.Entity, a *component.Anchor) {
		if a.LiveUpdate && a.Owner != 0 {
			cacheAnchor(w, ent(a.Owner), e, a)
		}
	})
}

// resolveAnchors fills g.Anchors on first use with every anchor whose nearest
// grabbable ancestor is e, in entity enumeration order.
func resolveAnchors(w *ecs.World, e ecs.Entity, g *component.Grabbable) {
	if g == nil || g.AnchorsResolved {
		return
	}
	g.AnchorsResolved = true
	if !g.IsGrabbed() {
		g.CurrentAnchor = -1
	}
	if len(g.Anchors) == 0 {
		ecs.ForEach(w, component.AnchorComponent.Kind(), func(ae ecs.Entity, a *component.Anchor) {
			parent, ok := parentOf(w, ae)
			if !ok {
				return
			}
			if owner, ok := owningGrabbable(w, parent); ok && owner == e {
				g.Anchors = append(g.Anchors, uint64(ae))
			}
		})
	}
	for _, id := range g.Anchors {
		if a, ok := ecs.Get(w, ent(id), component.AnchorComponent.Kind()); ok && !a.Cached() {
			cacheAnchor(w, e, ent(id), a)
		}
	}
	common.Logger().Debug("anchors resolved",
		zap.Uint64("grabbable", uint64(e)),
		zap.Int("count", len(g.Anchors)),
	)
}

// cacheAnchor stores the anchor pose relative to owner. Anchors parented into
// the owner use their LocalTransform chain; free-standing anchors use their
// world Transform against the owner's current pose.
func cacheAnchor(w *ecs.World, owner, e ecs.Entity, a *component.Anchor) bool {
	if local, ok := poseIn(w, e, owner); ok {
		a.CacheLocal(uint64(owner), local)
		return true
	}
	anchorPose, okA := worldPose(w, e)
	ownerPose, okO := worldPose(w, owner)
	if !okA || !okO {
		return false
	}
	a.Cache(uint64(owner), ownerPose, anchorPose)
	return true
}

// anchorPose evaluates ref for hand against the grabbable's current pose. A
// self anchor is the grabbable's own pose.
func anchorPose(w *ecs.World, ref component.AnchorRef, hand component.Hand) (component.Transform, bool) {
	if !ref.Valid() {
		return component.Transform{}, false
	}
	owner := ent(ref.Grabbable)
	ownerPose, ok := worldPose(w, owner)
	if !ok {
		return component.Transform{}, false
	}
	if ref.IsSelf() {
		return ownerPose, true
	}
	a, ok := ecs.Get(w, ent(ref.Anchor), component.AnchorComponent.Kind())
	if !ok {
		return component.Transform{}, false
	}
	if !a.Cached() && !cacheAnchor(w, owner, ent(ref.Anchor), a) {
		return component.Transform{}, false
	}
	return a.Pose(hand, ownerPose), true
}

// currentAnchor returns the anchor g.CurrentAnchor points at while g is held.
func currentAnchor(w *ecs.World, g *component.Grabbable) (*component.Anchor, bool) {
	if g == nil || !g.IsGrabbed() || g.CurrentAnchor < 0 || g.CurrentAnchor >= len(g.Anchors) {
		return nil, false
	}
	return ecs.Get(w, ent(g.Anchors[g.CurrentAnchor]), component.AnchorComponent.Kind())
}

// GrabPoseFor is the pose a hand takes while holding e, honoring the current
// anchor's override.
func GrabPoseFor(w *ecs.World, e ecs.Entity) component.PoseID {
	g, ok := ecs.Get(w, e, component.GrabbableComponent.Kind())
	if !ok {
		return 0
	}
	if a, ok := currentAnchor(w, g); ok && a.OverrideGrabPose {
		return a.GrabPose
	}
	return g.GrabPose
}

// ProximityPoseFor is the pose an empty hand takes near e.
func ProximityPoseFor(w *ecs.World, e ecs.Entity) component.PoseID {
	g, ok := ecs.Get(w, e, component.GrabbableComponent.Kind())
	if !ok {
		return 0
	}
	if a, ok := currentAnchor(w, g); ok && a.OverrideProximityPose {
		return a.ProximityPose
	}
	return g.ProximityPose
}

func orientToHand(g *component.Grabbable, a *component.Anchor) bool {
	if a != nil && a.OverrideOrientToHand {
		return a.OrientToHand
	}
	return g != nil && g.OrientToHand
}

func anchorIndex(g *component.Grabbable, ref component.AnchorRef) int {
	if ref.IsSelf() {
		return -1
	}
	for i, id := range g.Anchors {
		if id == ref.Anchor {
			return i
		}
	}
	return -1
}
