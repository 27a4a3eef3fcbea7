package component

import "github.com/cespare/xxhash/v2"

// PoseID names a hand animation pose. Zero means "no pose".
type PoseID uint64

// PoseIDFor hashes a pose name. The empty name maps to zero.
func PoseIDFor(name string) PoseID {
	if name == "" {
		return 0
	}
	return PoseID(xxhash.Sum64String(name))
}

// PoseSink receives pose toggles for one rendered hand.
type PoseSink interface {
	SetPose(id PoseID, active bool)
}

// PoseBools is a PoseSink that records the boolean state of each pose.
type PoseBools map[PoseID]bool

func (p PoseBools) SetPose(id PoseID, active bool) {
	if id == 0 || p == nil {
		return
	}
	p[id] = active
}

func (p PoseBools) Active(id PoseID) bool {
	return p[id]
}

// HandPose forwards pose toggles to the solid and ghost hands.
type HandPose struct {
	Solid PoseSink
	Ghost PoseSink
}

var HandPoseComponent = NewComponent[HandPose]()

// Set toggles id on both hands. A zero id is ignored.
func (h *HandPose) Set(id PoseID, active bool) {
	if h == nil || id == 0 {
		return
	}
	if h.Solid != nil {
		h.Solid.SetPose(id, active)
	}
	if h.Ghost != nil {
		h.Ghost.SetPose(id, active)
	}
}
