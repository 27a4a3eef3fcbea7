package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
)

// GrabOrder restricts whether an anchor serves the first hand, the second
// hand, or both.
type GrabOrder uint8

const (
	GrabOrderFirstOrSecond GrabOrder = iota
	GrabOrderFirstOnly
	GrabOrderSecondOnly
)

// Allows reports whether a grab in the given slot may use the anchor.
func (o GrabOrder) Allows(second bool) bool {
	switch o {
	case GrabOrderFirstOnly:
		return !second
	case GrabOrderSecondOnly:
		return second
	}
	return true
}

// MirrorAction selects which axes flip when an anchor is mirrored onto the
// non-primary hand.
type MirrorAction uint8

const (
	InvertOffsetX MirrorAction = 1 << iota
	InvertOffsetY
	InvertOffsetZ
	InvertRotationX
	InvertRotationY
	InvertRotationZ

	invertRotationAny = InvertRotationX | InvertRotationY | InvertRotationZ
)

func (m MirrorAction) Has(flag MirrorAction) bool {
	return m&flag == flag
}

// Anchor is an attachment pose on a grabbable. Its pose is cached per hand in
// the owner's local frame and re-evaluated against the owner on every query.
type Anchor struct {
	PrimaryHand        Hand
	MirrorForOtherHand bool
	MirrorActions      MirrorAction
	Order              GrabOrder
	Disabled           bool
	// LiveUpdate re-derives the cached pose every frame.
	LiveUpdate bool

	OverrideGrabPose      bool
	GrabPose              PoseID
	OverrideProximityPose bool
	ProximityPose         PoseID
	OverrideOrientToHand  bool
	OrientToHand          bool

	// Owner is the grabbable entity the pose is cached against.
	// ecs.Entity is uint64.
	Owner uint64

	offsets [2]mgl64.Vec3
	orients [2]mgl64.Quat
	cached  bool
}

var AnchorComponent = NewComponent[Anchor]()

// SupportsHand reports whether hand may hold the anchor.
func (a *Anchor) SupportsHand(hand Hand) bool {
	return a.MirrorForOtherHand || a.PrimaryHand == hand
}

// Cached reports whether the anchor has an owner and a cached pose.
func (a *Anchor) Cached() bool {
	return a.cached && a.Owner != 0
}

// Cache stores the anchor's world pose relative to the owner's world pose.
func (a *Anchor) Cache(owner uint64, ownerPose, anchorPose Transform) {
	a.CacheLocal(owner, ownerPose.Relative(anchorPose))
}

// CacheLocal stores a pose already expressed in the owner's frame and derives
// the mirrored pose for the other hand.
func (a *Anchor) CacheLocal(owner uint64, local Transform) {
	a.Owner = owner
	primary := a.PrimaryHand.index()
	offset, orient := local.Position, local.Rot()
	a.offsets[primary] = offset
	a.orients[primary] = orient
	a.offsets[1-primary] = a.mirrorOffset(offset)
	a.orients[1-primary] = a.mirrorOrientation(orient)
	a.cached = true
}

// Offset is the cached local offset for hand.
func (a *Anchor) Offset(hand Hand) mgl64.Vec3 {
	return a.offsets[hand.index()]
}

// Orientation is the cached local orientation for hand.
func (a *Anchor) Orientation(hand Hand) mgl64.Quat {
	return common.SafeQuat(a.orients[hand.index()])
}

// Position returns the world position for hand given the owner's pose.
func (a *Anchor) Position(hand Hand, owner Transform) mgl64.Vec3 {
	return owner.Position.Add(owner.Rot().Rotate(a.Offset(hand)))
}

// Rotation returns the world rotation for hand given the owner's pose.
func (a *Anchor) Rotation(hand Hand, owner Transform) mgl64.Quat {
	return owner.Rot().Mul(a.Orientation(hand)).Normalize()
}

// Up returns the world up axis for hand given the owner's pose.
func (a *Anchor) Up(hand Hand, owner Transform) mgl64.Vec3 {
	return a.Rotation(hand, owner).Rotate(common.Up)
}

// Pose returns Position and Rotation together.
func (a *Anchor) Pose(hand Hand, owner Transform) Transform {
	return Transform{Position: a.Position(hand, owner), Rotation: a.Rotation(hand, owner)}
}

func (a *Anchor) mirrorOffset(v mgl64.Vec3) mgl64.Vec3 {
	if a.MirrorActions.Has(InvertOffsetX) {
		v[0] = -v[0]
	}
	if a.MirrorActions.Has(InvertOffsetY) {
		v[1] = -v[1]
	}
	if a.MirrorActions.Has(InvertOffsetZ) {
		v[2] = -v[2]
	}
	return v
}

func (a *Anchor) mirrorOrientation(q mgl64.Quat) mgl64.Quat {
	if a.MirrorActions&invertRotationAny == 0 {
		return q
	}
	e := common.QuatToEuler(q)
	if a.MirrorActions.Has(InvertRotationX) {
		e[0] = -e[0]
	}
	if a.MirrorActions.Has(InvertRotationY) {
		e[1] = -e[1]
	}
	if a.MirrorActions.Has(InvertRotationZ) {
		e[2] = -e[2]
	}
	return common.EulerToQuat(e)
}

// AnchorRef names what a hand holds: a specific anchor entity or the
// grabbable itself when it has no anchors.
type AnchorRef struct {
	// ecs.Entity is uint64.
	Grabbable uint64
	Anchor    uint64
}

// SelfAnchor refers to a grabbable acting as its own anchor.
func SelfAnchor(grabbable uint64) AnchorRef {
	return AnchorRef{Grabbable: grabbable}
}

// AnchorAt refers to an explicit anchor entity on grabbable.
func AnchorAt(grabbable, anchor uint64) AnchorRef {
	return AnchorRef{Grabbable: grabbable, Anchor: anchor}
}

func (r AnchorRef) Valid() bool {
	return r.Grabbable != 0
}

func (r AnchorRef) IsSelf() bool {
	return r.Valid() && r.Anchor == 0
}
