package system

import (
	"errors"
	"fmt"

	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
)

var (
	ErrNotGrabbable     = errors.New("entity is not grabbable")
	ErrNotGrabber       = errors.New("entity is not a grabber")
	ErrAlreadyHolding   = errors.New("grabber already holds the object")
	ErrGrabPolicy       = errors.New("second grab not allowed")
	ErrGrabVetoed       = errors.New("grab vetoed")
	ErrNoEligibleAnchor = errors.New("no eligible anchor")
	ErrAnchorNotOwned   = errors.New("anchor does not belong to grabbable")
	ErrOutOfReach       = errors.New("candidate out of reach")
)

// commitGrab runs the grabbable side of a grab: the second-grab policy, the
// veto hooks and rule script, holder assignment and anchor selection. forced,
// when valid, names the exact anchor to take. On error no holder field set by
// this call survives.
func (s *GrabberSystem) commitGrab(w *ecs.World, g, grabber ecs.Entity, forced component.AnchorRef) (component.AnchorRef, error) {
	gr, ok := ecs.Get(w, g, component.GrabbableComponent.Kind())
	if !ok {
		return component.AnchorRef{}, fmt.Errorf("grabbable %v: %w", g, ErrNotGrabbable)
	}
	gb, ok := ecs.Get(w, grabber, component.GrabberComponent.Kind())
	if !ok {
		return component.AnchorRef{}, fmt.Errorf("grabber %v: %w", grabber, ErrNotGrabber)
	}
	if gr.IsHeldBy(uint64(grabber)) {
		return component.AnchorRef{}, ErrAlreadyHolding
	}
	resolveAnchors(w, g, gr)
	if err := checkForcedAnchor(g, gr, forced); err != nil {
		return component.AnchorRef{}, err
	}

	second := false
	if gr.GrabbedBy != 0 {
		switch gr.SecondGrab {
		case component.NoSecondGrab:
			return component.AnchorRef{}, fmt.Errorf("%s: %w", gr.SecondGrab, ErrGrabPolicy)
		case component.TransferToSecondGrab:
			if gr.GrabbedBySecond != 0 {
				s.releaseHolder(w, g, ent(gr.GrabbedBySecond))
			}
			s.releaseHolder(w, g, ent(gr.GrabbedBy))
		case component.AllowBothHands:
			if gr.GrabbedBySecond != 0 {
				return component.AnchorRef{}, fmt.Errorf("both hands taken: %w", ErrGrabPolicy)
			}
			second = true
		}
	}

	req := component.GrabRequest{Grabbable: uint64(g), Grabber: uint64(grabber), Hand: gb.Hand, Second: second}
	if gr.Decide(req) == component.GrabDeny {
		return component.AnchorRef{}, ErrGrabVetoed
	}
	if s.rules != nil && gr.RuleScript != "" {
		if s.rules.Decide(gr.RuleScript, req, nameOf(w, g)) == component.GrabDeny {
			return component.AnchorRef{}, fmt.Errorf("rule %q: %w", gr.RuleScript, ErrGrabVetoed)
		}
	}

	if second {
		gr.GrabbedBySecond = uint64(grabber)
	} else {
		gr.GrabbedBy = uint64(grabber)
	}

	ref, idx, err := s.pickAnchor(w, g, gr, grabber, gb.Hand, second, forced)
	if err != nil {
		if second {
			gr.GrabbedBySecond = 0
		} else {
			gr.GrabbedBy = 0
		}
		return component.AnchorRef{}, err
	}

	if second {
		gr.SecondAnchor = ref
	} else {
		gr.PrimaryAnchor = ref
	}
	gr.CurrentAnchor = idx
	return ref, nil
}

func (s *GrabberSystem) pickAnchor(w *ecs.World, g ecs.Entity, gr *component.Grabbable, grabber ecs.Entity, hand component.Hand, second bool, forced component.AnchorRef) (component.AnchorRef, int, error) {
	held := gr.PrimaryAnchor
	if !second {
		held = gr.SecondAnchor
	}

	if forced.Valid() && !forced.IsSelf() {
		idx := anchorIndex(gr, forced)
		if held == forced {
			return component.AnchorRef{}, -1, fmt.Errorf("anchor %d held by the other hand: %w", forced.Anchor, ErrNoEligibleAnchor)
		}
		return forced, idx, nil
	}

	if len(gr.Anchors) == 0 {
		return component.SelfAnchor(uint64(g)), -1, nil
	}

	handT, ok := worldPose(w, grabber)
	if !ok {
		return component.AnchorRef{}, -1, fmt.Errorf("grabber %v has no pose: %w", grabber, ErrNoEligibleAnchor)
	}

	cands := make([]AnchorCandidate, 0, len(gr.Anchors))
	for i, id := range gr.Anchors {
		a, ok := ecs.Get(w, ent(id), component.AnchorComponent.Kind())
		if !ok {
			continue
		}
		ref := component.AnchorAt(uint64(g), id)
		if ineligible(a, ref, held, hand, second) != "" {
			continue
		}
		pose, ok := anchorPose(w, ref, hand)
		if !ok {
			continue
		}
		cands = append(cands, AnchorCandidate{Ref: ref, Index: i, Pose: pose, OrientToHand: orientToHand(gr, a)})
	}

	best, _ := SelectAnchor(cands, handT)
	if best < 0 {
		return component.AnchorRef{}, -1, ErrNoEligibleAnchor
	}
	return cands[best].Ref, cands[best].Index, nil
}

// checkForcedAnchor fails when forced names an anchor g does not own. It runs
// before anything changes hands.
func checkForcedAnchor(g ecs.Entity, gr *component.Grabbable, forced component.AnchorRef) error {
	if !forced.Valid() || forced.IsSelf() {
		return nil
	}
	if forced.Grabbable != uint64(g) || anchorIndex(gr, forced) < 0 {
		return fmt.Errorf("anchor %d: %w", forced.Anchor, ErrAnchorNotOwned)
	}
	return nil
}

// ReleaseGrabbable removes grabber from g's holders. Releasing the primary
// while a second hand holds promotes the second hand without a released
// notification. It reports whether grabber was a holder.
func ReleaseGrabbable(w *ecs.World, g, grabber ecs.Entity) bool {
	gr, ok := ecs.Get(w, g, component.GrabbableComponent.Kind())
	if !ok || grabber == 0 {
		return false
	}

	switch uint64(grabber) {
	case gr.GrabbedBySecond:
		gr.GrabbedBySecond = 0
		gr.SecondAnchor = component.AnchorRef{}
		gr.CurrentAnchor = anchorIndex(gr, gr.PrimaryAnchor)
	case gr.GrabbedBy:
		if gr.GrabbedBySecond != 0 {
			gr.GrabbedBy = gr.GrabbedBySecond
			gr.PrimaryAnchor = gr.SecondAnchor
			gr.GrabbedBySecond = 0
			gr.SecondAnchor = component.AnchorRef{}
			gr.CurrentAnchor = anchorIndex(gr, gr.PrimaryAnchor)
			return true
		}
		gr.GrabbedBy = 0
		gr.PrimaryAnchor = component.AnchorRef{}
		gr.CurrentAnchor = -1
		gr.NotifyReleased(uint64(g), uint64(grabber))
		w.Events().Push(ecs.Event{Type: EventReleased, Data: GrabEvent{Grabbable: g, Grabber: grabber}})
	default:
		return false
	}
	return true
}
