package system

import (
	"math"

	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
)

// MaxAnchorDistance is the hand-to-anchor distance at which the distance score
// reaches zero. Anchors further away remain selectable; they only lose the
// distance term.
const MaxAnchorDistance = 0.25

// DistanceScore is 1 at the anchor and falls linearly to 0 at MaxAnchorDistance.
func DistanceScore(anchor, hand component.Transform) float64 {
	d := anchor.Position.Sub(hand.Position).Len()
	return 1 - common.Clamp01(d/MaxAnchorDistance)
}

// OrientationScore is 1 for matching rotations and 0 for opposite ones. When
// orient is false rotation is ignored.
func OrientationScore(anchor, hand component.Transform, orient bool) float64 {
	if !orient {
		return 1
	}
	return 1 - common.AngleBetween(anchor.Rot(), hand.Rot())/180
}

func AnchorScore(anchor, hand component.Transform, orient bool) float64 {
	return DistanceScore(anchor, hand) * OrientationScore(anchor, hand, orient)
}

// AnchorCandidate is an eligible anchor evaluated for one hand.
type AnchorCandidate struct {
	Ref          component.AnchorRef
	Index        int
	Pose         component.Transform
	OrientToHand bool
}

// SelectAnchor returns the index into cands of the best scoring candidate and
// its score, or -1 when cands is empty. Equal scores keep the earlier
// candidate.
func SelectAnchor(cands []AnchorCandidate, hand component.Transform) (int, float64) {
	best, bestScore := -1, math.Inf(-1)
	for i, c := range cands {
		score := AnchorScore(c.Pose, hand, c.OrientToHand)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}

// ineligible names why a may not be taken by hand in the given slot, or
// returns "" when it may. held is the anchor the other slot holds.
func ineligible(a *component.Anchor, ref, held component.AnchorRef, hand component.Hand, second bool) string {
	switch {
	case a.Disabled:
		return "disabled"
	case !a.Order.Allows(second):
		return "order"
	case !a.SupportsHand(hand):
		return "hand"
	case held == ref:
		return "held"
	}
	return ""
}

// AnchorScoreRow is one anchor of a grabbable scored against a hand pose.
type AnchorScoreRow struct {
	Ref         component.AnchorRef
	Name        string
	Pose        component.Transform
	Distance    float64
	Orientation float64
	Score       float64
	// Reason is empty for eligible anchors.
	Reason string
}

// ScoreAnchors scores every anchor of g for hand at handPose the way a grab
// would, and returns the index of the row a grab would pick, or -1.
func ScoreAnchors(w *ecs.World, g ecs.Entity, hand component.Hand, handPose component.Transform, second bool) ([]AnchorScoreRow, int) {
	gr, ok := ecs.Get(w, g, component.GrabbableComponent.Kind())
	if !ok {
		return nil, -1
	}
	resolveAnchors(w, g, gr)
	held := gr.PrimaryAnchor
	if !second {
		held = gr.SecondAnchor
	}

	rows := make([]AnchorScoreRow, 0, len(gr.Anchors))
	best, bestScore := -1, math.Inf(-1)
	for _, id := range gr.Anchors {
		a, ok := ecs.Get(w, ent(id), component.AnchorComponent.Kind())
		if !ok {
			continue
		}
		ref := component.AnchorAt(uint64(g), id)
		row := AnchorScoreRow{Ref: ref, Name: nameOf(w, ent(id)), Reason: ineligible(a, ref, held, hand, second)}
		pose, ok := anchorPose(w, ref, hand)
		if !ok {
			row.Reason = "no pose"
			rows = append(rows, row)
			continue
		}
		orient := orientToHand(gr, a)
		row.Pose = pose
		row.Distance = DistanceScore(pose, handPose)
		row.Orientation = OrientationScore(pose, handPose, orient)
		row.Score = AnchorScore(pose, handPose, orient)
		if row.Reason == "" && row.Score > bestScore {
			best, bestScore = len(rows), row.Score
		}
		rows = append(rows, row)
	}
	return rows, best
}
