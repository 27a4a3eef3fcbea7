package component

// SecondGrabPolicy decides what happens when a second hand grabs an object
// that is already held.
type SecondGrabPolicy uint8

const (
	NoSecondGrab SecondGrabPolicy = iota
	TransferToSecondGrab
	AllowBothHands
)

func (p SecondGrabPolicy) String() string {
	switch p {
	case NoSecondGrab:
		return "no_second_grab"
	case TransferToSecondGrab:
		return "transfer"
	case AllowBothHands:
		return "allow_both_hands"
	}
	return "unknown"
}

// ParseSecondGrabPolicy accepts the names produced by String. The empty
// string selects TransferToSecondGrab.
func ParseSecondGrabPolicy(s string) (SecondGrabPolicy, bool) {
	switch s {
	case "", "transfer", "transfer_to_second_grab":
		return TransferToSecondGrab, true
	case "none", "no_second_grab":
		return NoSecondGrab, true
	case "both", "allow_both_hands":
		return AllowBothHands, true
	}
	return 0, false
}

// GrabDecision is the answer of a pre-grab hook.
type GrabDecision uint8

const (
	GrabAllow GrabDecision = iota
	GrabDeny
)

// GrabRequest describes a pending grab passed to pre-grab hooks.
type GrabRequest struct {
	Grabbable uint64
	Grabber   uint64
	Hand      Hand
	Second    bool
}

type BeforeGrabHook func(req GrabRequest) GrabDecision

// GrabbableHook receives the grabbable and the grabber involved.
type GrabbableHook func(grabbable, grabber uint64)

// Grabbable marks an entity that hands can pick up.
type Grabbable struct {
	GrabPose      PoseID
	ProximityPose PoseID
	OrientToHand  bool
	SecondGrab    SecondGrabPolicy
	// RuleScript names a tengo script consulted before every grab.
	RuleScript string

	// Anchors lists anchor entities in enumeration order. It is filled the
	// first time the grabbable is evaluated.
	Anchors         []uint64
	AnchorsResolved bool

	// Holders. ecs.Entity is uint64.
	GrabbedBy       uint64
	GrabbedBySecond uint64
	PrimaryAnchor   AnchorRef
	SecondAnchor    AnchorRef
	// CurrentAnchor indexes Anchors for pose lookups, -1 when none applies.
	// It is only consulted while the grabbable is held.
	CurrentAnchor int

	BeforeGrab []BeforeGrabHook
	Released   []GrabbableHook
	Approached []GrabbableHook
	Departed   []GrabbableHook
}

var GrabbableComponent = NewComponent[Grabbable]()

func (g *Grabbable) IsGrabbed() bool {
	return g.GrabbedBy != 0
}

// IsHeldBy reports whether grabber holds g in either slot.
func (g *Grabbable) IsHeldBy(grabber uint64) bool {
	return grabber != 0 && (g.GrabbedBy == grabber || g.GrabbedBySecond == grabber)
}

// Decide runs every pre-grab hook; a single deny wins.
func (g *Grabbable) Decide(req GrabRequest) GrabDecision {
	decision := GrabAllow
	for _, hook := range g.BeforeGrab {
		if hook != nil && hook(req) == GrabDeny {
			decision = GrabDeny
		}
	}
	return decision
}

func (g *Grabbable) OnBeforeGrab(hook BeforeGrabHook) {
	g.BeforeGrab = append(g.BeforeGrab, hook)
}

func (g *Grabbable) OnReleased(hook GrabbableHook) {
	g.Released = append(g.Released, hook)
}

func (g *Grabbable) OnApproach(hook GrabbableHook) {
	g.Approached = append(g.Approached, hook)
}

func (g *Grabbable) OnDepart(hook GrabbableHook) {
	g.Departed = append(g.Departed, hook)
}

func notify(hooks []GrabbableHook, grabbable, grabber uint64) {
	for _, hook := range hooks {
		if hook != nil {
			hook(grabbable, grabber)
		}
	}
}

func (g *Grabbable) NotifyReleased(self, grabber uint64) { notify(g.Released, self, grabber) }
func (g *Grabbable) NotifyApproach(self, grabber uint64) { notify(g.Approached, self, grabber) }
func (g *Grabbable) NotifyDepart(self, grabber uint64)   { notify(g.Departed, self, grabber) }
