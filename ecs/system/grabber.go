package system

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"github.com/milk9111/vrhands/physics"
	"go.uber.org/zap"
)

// GrabberSystem turns trigger overlaps and grip edges into grabs and releases.
type GrabberSystem struct {
	space physics.Space
	rules *GrabRules
}

func NewGrabberSystem(space physics.Space, rules *GrabRules) *GrabberSystem {
	return &GrabberSystem{space: space, rules: rules}
}

func (s *GrabberSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	s.routeOverlaps(w)

	ecs.ForEach(w, component.GrabberComponent.Kind(), func(e ecs.Entity, gb *component.Grabber) {
		if gb.IsGrabbing() && !w.IsAlive(ent(gb.Grabbed)) {
			s.Release(w, e)
		}

		if in, ok := ecs.Get(w, e, component.HandInputComponent.Kind()); ok {
			if in.Grip.Began() && !gb.IsGrabbing() && !gb.Proximity.Empty() {
				s.BeginGrab(w, e)
			} else if gb.IsGrabbing() && in.Grip.Ended() {
				s.Release(w, e)
			}
		}

		if gb.HandCollidersDisabled && !gb.IsGrabbing() && gb.Proximity.Empty() {
			s.setHandColliders(w, e, gb, true)
		}
	})
}

// routeOverlaps feeds trigger changes to the grabber owning the trigger.
func (s *GrabberSystem) routeOverlaps(w *ecs.World) {
	if s.space == nil {
		return
	}
	overlaps := s.space.DrainOverlaps()
	if len(overlaps) == 0 {
		return
	}

	byTrigger := make(map[physics.ColliderID]ecs.Entity)
	ecs.ForEach(w, component.GrabberComponent.Kind(), func(e ecs.Entity, gb *component.Grabber) {
		if gb.Trigger != 0 {
			byTrigger[gb.Trigger] = e
		}
	})

	for _, ov := range overlaps {
		e, ok := byTrigger[ov.Trigger]
		if !ok {
			continue
		}
		gb, ok := ecs.Get(w, e, component.GrabberComponent.Kind())
		if !ok {
			continue
		}
		if ov.Entered {
			s.colliderEntered(w, e, gb, ov.Other)
		} else {
			s.colliderExited(w, e, gb, ov.Other)
		}
	}
}

func (s *GrabberSystem) colliderEntered(w *ecs.World, e ecs.Entity, gb *component.Grabber, id physics.ColliderID) {
	info, ok := s.space.Collider(id)
	if !ok {
		return
	}
	if !gb.GrabbableLayers.Contains(info.Layer) {
		return
	}
	owner := ent(info.Owner)

	if pt, ok := ecs.Get(w, owner, component.PoseTriggerComponent.Kind()); ok && info.Trigger {
		if !gb.IsGrabbing() && gb.ProximityPose == 0 && pt.SupportsHand(gb.Hand) {
			s.setProximityPose(w, e, gb, pt.ProximityPose, id)
		}
		return
	}

	g, ok := owningGrabbable(w, owner)
	if !ok {
		return
	}
	if !gb.Proximity.Enter(id, uint64(g)) {
		return
	}

	if gr, ok := ecs.Get(w, g, component.GrabbableComponent.Kind()); ok {
		gr.NotifyApproach(uint64(g), uint64(e))
	}
	w.Events().Push(ecs.Event{Type: EventGrabbableEnter, Data: GrabEvent{Grabber: e, Grabbable: g, Hand: gb.Hand}})
	if !gb.IsGrabbing() && gb.ProximityPose == 0 {
		s.setProximityPose(w, e, gb, ProximityPoseFor(w, g), 0)
	}
}

func (s *GrabberSystem) colliderExited(w *ecs.World, e ecs.Entity, gb *component.Grabber, id physics.ColliderID) {
	if gb.PoseSource != 0 && gb.PoseSource == id {
		s.clearProximityPose(w, e, gb)
		return
	}

	gid, left := gb.Proximity.Exit(id)
	if !left {
		return
	}
	g := ent(gid)
	if gr, ok := ecs.Get(w, g, component.GrabbableComponent.Kind()); ok {
		gr.NotifyDepart(gid, uint64(e))
	}
	w.Events().Push(ecs.Event{Type: EventGrabbableExit, Data: GrabEvent{Grabber: e, Grabbable: g, Hand: gb.Hand}})

	if gb.PoseSource == 0 && gb.ProximityPose != 0 &&
		(gb.Proximity.Empty() || gb.ProximityPose == ProximityPoseFor(w, g)) {
		s.clearProximityPose(w, e, gb)
	}
}

// rankCandidates returns the proximity entries ordered by verified distance.
// A candidate's distance is the ray distance from the focus point to its
// nearest collider whose bounds center is reachable without another collider
// in the way; unreachable candidates sort last at +Inf.
func (s *GrabberSystem) rankCandidates(w *ecs.World, e ecs.Entity, gb *component.Grabber) []*component.ProximityEntry {
	entries := slices.Clone(gb.Proximity.Entries())
	hand, ok := worldPose(w, e)
	if !ok || s.space == nil {
		return entries
	}
	focus := hand.Position.Add(hand.Rot().Rotate(gb.FocusOffset))
	mask := gb.RaycastLayers
	if mask == 0 {
		mask = physics.AllLayers
	}

	for i := range entries {
		best := math.Inf(1)
		for _, id := range gb.Proximity.Colliders(entries[i].Grabbable) {
			if d := s.verifiedDistance(focus, id, mask); d < best {
				best = d
			}
		}
		entries[i].Distance = best
	}
	slices.SortStableFunc(entries, func(a, b *component.ProximityEntry) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return entries
}

func (s *GrabberSystem) verifiedDistance(focus mgl64.Vec3, id physics.ColliderID, mask physics.LayerMask) float64 {
	info, ok := s.space.Collider(id)
	if !ok || !info.Enabled {
		return math.Inf(1)
	}
	dir := info.Bounds.Center().Sub(focus)
	length := dir.Len()
	if length < 1e-9 {
		return 0
	}
	hit, ok := s.space.Raycast(focus, dir, length, mask)
	if !ok || hit.Collider != id {
		return math.Inf(1)
	}
	return hit.Distance
}

// maxRadius is the reach limit for verified candidates.
func (s *GrabberSystem) maxRadius(gb *component.Grabber) float64 {
	if gb.MaxRadius > 0 {
		return gb.MaxRadius
	}
	if s.space != nil && gb.Trigger != 0 {
		if info, ok := s.space.Collider(gb.Trigger); ok {
			return info.Bounds.Size().Len()
		}
	}
	return math.Inf(1)
}

// BeginGrab tries each candidate in verified-distance order and keeps the
// first that commits. Candidates beyond reach end the search.
func (s *GrabberSystem) BeginGrab(w *ecs.World, e ecs.Entity) bool {
	gb, ok := ecs.Get(w, e, component.GrabberComponent.Kind())
	if !ok || gb.IsGrabbing() || gb.Proximity.Empty() {
		return false
	}
	reach := s.maxRadius(gb)
	log := common.Logger()

	for _, c := range s.rankCandidates(w, e, gb) {
		g := ent(c.Grabbable)
		if c.Distance > reach {
			log.Debug("grab candidate skipped",
				zap.Uint64("grabber", uint64(e)),
				zap.Uint64("grabbable", c.Grabbable),
				zap.Float64("distance", c.Distance),
				zap.Float64("reach", reach),
				zap.Error(ErrOutOfReach),
			)
			break
		}
		ref, err := s.commitGrab(w, g, e, component.AnchorRef{})
		if err != nil {
			log.Debug("grab candidate rejected",
				zap.Uint64("grabber", uint64(e)),
				zap.Uint64("grabbable", c.Grabbable),
				zap.Error(err),
			)
			continue
		}
		s.attach(w, e, gb, g, ref)
		return true
	}
	return false
}

// TryGrab commits grabber onto g without the hand side effects. It is the
// grabbable half of a grab, exposed for callers that drive their own hands.
func (s *GrabberSystem) TryGrab(w *ecs.World, g, grabber ecs.Entity) (component.AnchorRef, bool) {
	ref, err := s.commitGrab(w, g, grabber, component.AnchorRef{})
	if err != nil {
		common.Logger().Debug("try grab rejected",
			zap.Uint64("grabber", uint64(grabber)),
			zap.Uint64("grabbable", uint64(g)),
			zap.Error(err),
		)
		return component.AnchorRef{}, false
	}
	return ref, true
}

// Grab makes the hand take target directly, bypassing proximity and reach.
// target is either a grabbable or one of its anchors.
func (s *GrabberSystem) Grab(w *ecs.World, e, target ecs.Entity) bool {
	if ecs.Has(w, target, component.GrabbableComponent.Kind()) {
		return s.GrabAt(w, e, target, 0)
	}
	a, ok := ecs.Get(w, target, component.AnchorComponent.Kind())
	if !ok {
		common.Logger().Error("grab target is neither grabbable nor anchor", zap.Uint64("target", uint64(target)))
		return false
	}
	owner := ent(a.Owner)
	if owner == 0 {
		if parent, ok := parentOf(w, target); ok {
			owner, _ = owningGrabbable(w, parent)
		}
	}
	if owner == 0 {
		common.Logger().Error("anchor has no grabbable", zap.Uint64("anchor", uint64(target)))
		return false
	}
	return s.GrabAt(w, e, owner, target)
}

// GrabAt grabs g at the given anchor entity, or scores g's anchors when anchor
// is zero. An anchor that g does not own fails the grab.
func (s *GrabberSystem) GrabAt(w *ecs.World, e, g, anchor ecs.Entity) bool {
	gb, ok := ecs.Get(w, e, component.GrabberComponent.Kind())
	if !ok {
		return false
	}
	fail := func(err error) bool {
		log := common.Logger()
		fields := []zap.Field{
			zap.Uint64("grabber", uint64(e)),
			zap.Uint64("grabbable", uint64(g)),
			zap.Uint64("anchor", uint64(anchor)),
			zap.Error(err),
		}
		if errors.Is(err, ErrAnchorNotOwned) || errors.Is(err, ErrNotGrabbable) {
			log.Error("forced grab failed", fields...)
		} else {
			log.Debug("forced grab rejected", fields...)
		}
		return false
	}

	// A bad target must fail before either hand lets go of anything.
	gr, ok := ecs.Get(w, g, component.GrabbableComponent.Kind())
	if !ok {
		return fail(fmt.Errorf("grabbable %v: %w", g, ErrNotGrabbable))
	}
	var forced component.AnchorRef
	if anchor != 0 {
		forced = component.AnchorAt(uint64(g), uint64(anchor))
		resolveAnchors(w, g, gr)
		if err := checkForcedAnchor(g, gr, forced); err != nil {
			return fail(err)
		}
	}

	if gb.IsGrabbing() {
		if gb.Grabbed == uint64(g) && anchor == 0 {
			return true
		}
		s.Release(w, e)
	}

	ref, err := s.commitGrab(w, g, e, forced)
	if err != nil {
		return fail(err)
	}
	s.attach(w, e, gb, g, ref)
	return true
}

// attach applies the hand side of a committed grab.
func (s *GrabberSystem) attach(w *ecs.World, e ecs.Entity, gb *component.Grabber, g ecs.Entity, ref component.AnchorRef) {
	gr, _ := ecs.Get(w, g, component.GrabbableComponent.Kind())
	gb.Grabbed = uint64(g)

	if gr != nil && gr.GrabbedBySecond == uint64(e) {
		if att, ok := ecs.Get(w, ent(gr.GrabbedBy), component.AttacherComponent.Kind()); ok {
			att.SetSecondGrab(ref, uint64(e))
		}
	} else if att, ok := ecs.Get(w, e, component.AttacherComponent.Kind()); ok {
		att.SetGrab(uint64(g), ref, gb.Hand, uint64(e))
	}
	if sh, ok := ecs.Get(w, e, component.SolidHandComponent.Kind()); ok {
		sh.Anchor = ref
	}

	s.setHandColliders(w, e, gb, false)
	s.clearProximityPose(w, e, gb)
	gb.GrabPose = GrabPoseFor(w, g)
	handPose(w, e).Set(gb.GrabPose, true)

	w.Events().Push(ecs.Event{Type: EventGrabBegin, Data: GrabEvent{Grabber: e, Grabbable: g, Anchor: ref, Hand: gb.Hand}})
	common.Logger().Debug("grab begin",
		zap.Uint64("grabber", uint64(e)),
		zap.Stringer("hand", gb.Hand),
		zap.Uint64("grabbable", uint64(g)),
		zap.Uint64("anchor", ref.Anchor),
	)
}

// Release ends the hand's grab. When the primary hand lets go of an object the
// second hand also holds, the second hand's attacher takes over within this
// call.
func (s *GrabberSystem) Release(w *ecs.World, e ecs.Entity) bool {
	gb, ok := ecs.Get(w, e, component.GrabberComponent.Kind())
	if !ok || !gb.IsGrabbing() {
		return false
	}
	g := ent(gb.Grabbed)
	att, _ := ecs.Get(w, e, component.AttacherComponent.Kind())

	handPose(w, e).Set(gb.GrabPose, false)
	gb.GrabPose = 0

	var ref component.AnchorRef
	if gr, ok := ecs.Get(w, g, component.GrabbableComponent.Kind()); ok {
		switch uint64(e) {
		case gr.GrabbedBySecond:
			ref = gr.SecondAnchor
			if primary, ok := ecs.Get(w, ent(gr.GrabbedBy), component.AttacherComponent.Kind()); ok {
				primary.SetSecondGrab(component.AnchorRef{}, 0)
			}
		case gr.GrabbedBy:
			ref = gr.PrimaryAnchor
			if gr.GrabbedBySecond != 0 {
				s.handOff(w, g, gr)
			}
		}
		ReleaseGrabbable(w, g, e)
	}

	gb.Grabbed = 0
	if att != nil {
		att.Clear()
	}
	if sh, ok := ecs.Get(w, e, component.SolidHandComponent.Kind()); ok {
		sh.Anchor = component.AnchorRef{}
	}

	w.Events().Push(ecs.Event{Type: EventGrabEnd, Data: GrabEvent{Grabber: e, Grabbable: g, Anchor: ref, Hand: gb.Hand}})
	common.Logger().Debug("grab end",
		zap.Uint64("grabber", uint64(e)),
		zap.Stringer("hand", gb.Hand),
		zap.Uint64("grabbable", uint64(g)),
	)
	return true
}

// handOff points the second hand's attacher at its own anchor so it carries
// the object alone once the primary lets go.
func (s *GrabberSystem) handOff(w *ecs.World, g ecs.Entity, gr *component.Grabbable) {
	second := ent(gr.GrabbedBySecond)
	att, ok := ecs.Get(w, second, component.AttacherComponent.Kind())
	if !ok {
		return
	}
	hand := component.Hand(0)
	if sgb, ok := ecs.Get(w, second, component.GrabberComponent.Kind()); ok {
		hand = sgb.Hand
	}
	att.SetGrab(uint64(g), gr.SecondAnchor, hand, uint64(second))
}

// releaseHolder releases a current holder through its grabber when it has
// one, so its hand side effects are undone too.
func (s *GrabberSystem) releaseHolder(w *ecs.World, g, holder ecs.Entity) {
	if gb, ok := ecs.Get(w, holder, component.GrabberComponent.Kind()); ok && gb.Grabbed == uint64(g) {
		s.Release(w, holder)
		return
	}
	ReleaseGrabbable(w, g, holder)
}

func (s *GrabberSystem) setHandColliders(w *ecs.World, e ecs.Entity, gb *component.Grabber, enabled bool) {
	gb.HandCollidersDisabled = !enabled
	if s.space == nil {
		return
	}
	hc, ok := ecs.Get(w, e, component.HandCollidersComponent.Kind())
	if !ok {
		return
	}
	for _, id := range hc.IDs {
		s.space.SetColliderEnabled(id, enabled)
	}
}

func (s *GrabberSystem) setProximityPose(w *ecs.World, e ecs.Entity, gb *component.Grabber, id component.PoseID, source physics.ColliderID) {
	if id == 0 {
		return
	}
	handPose(w, e).Set(id, true)
	gb.ProximityPose = id
	gb.PoseSource = source
}

func (s *GrabberSystem) clearProximityPose(w *ecs.World, e ecs.Entity, gb *component.Grabber) {
	handPose(w, e).Set(gb.ProximityPose, false)
	gb.ProximityPose = 0
	gb.PoseSource = 0
}
