package component

const (
	DefaultMoveSpeed  = 60.0
	DefaultTurnSpeed  = 0.9
	DefaultEngageRate = 0.125
)

// Attacher drives a grabbed body toward the hand. Anchor is evaluated for
// Hand; SecondAnchor, when set, is evaluated for the other hand and pulled
// toward SecondTarget.
type Attacher struct {
	MoveSpeed    float64
	TurnSpeed    float64
	EngageRate   float64
	DisableForce bool

	// ecs.Entity is uint64.
	Grabbed uint64
	Anchor  AnchorRef
	Hand    Hand
	Target  uint64

	SecondAnchor AnchorRef
	SecondTarget uint64

	// Engaged ramps from 0 toward 1 after each new grab.
	Engaged float64
}

var AttacherComponent = NewComponent[Attacher]()

func NewAttacher() Attacher {
	return Attacher{MoveSpeed: DefaultMoveSpeed, TurnSpeed: DefaultTurnSpeed, EngageRate: DefaultEngageRate}
}

// SetGrab starts a new attachment and resets engagement.
func (a *Attacher) SetGrab(grabbed uint64, anchor AnchorRef, hand Hand, target uint64) {
	a.Grabbed = grabbed
	a.Anchor = anchor
	a.Hand = hand
	a.Target = target
	a.SecondAnchor = AnchorRef{}
	a.SecondTarget = 0
	a.Engaged = 0
}

// SetSecondGrab adds or, with a zero anchor, removes the second hand.
func (a *Attacher) SetSecondGrab(anchor AnchorRef, target uint64) {
	if !anchor.Valid() || target == 0 {
		a.SecondAnchor = AnchorRef{}
		a.SecondTarget = 0
		return
	}
	a.SecondAnchor = anchor
	a.SecondTarget = target
}

func (a *Attacher) Clear() {
	a.SetGrab(0, AnchorRef{}, 0, 0)
}

func (a *Attacher) Attached() bool {
	return a.Grabbed != 0 && a.Anchor.Valid()
}

func (a *Attacher) TwoHanded() bool {
	return a.Attached() && a.SecondAnchor.Valid() && a.SecondTarget != 0
}
