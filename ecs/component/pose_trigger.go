package component

// PoseTrigger is a trigger volume that shapes an empty hand while it is
// inside.
type PoseTrigger struct {
	ProximityPose PoseID
	Hands         Hand
}

var PoseTriggerComponent = NewComponent[PoseTrigger]()

func (p *PoseTrigger) SupportsHand(hand Hand) bool {
	return p.Hands.Has(hand)
}
