package component

import (
	"math"
	"slices"

	"github.com/milk9111/vrhands/physics"
)

// ProximityEntry aggregates every collider of one grabbable inside a hand's
// trigger volume.
type ProximityEntry struct {
	// ecs.Entity is uint64.
	Grabbable uint64
	Colliders int
	// Distance is the verified focus distance from the last ranking.
	Distance float64
}

// Proximity maps colliders inside the trigger volume to their grabbables.
// Entries keep first-entered order.
type Proximity struct {
	colliders map[physics.ColliderID]uint64
	entries   []*ProximityEntry
}

// Enter records collider for grabbable. It reports true when grabbable was
// not present before. A collider already tracked is ignored.
func (p *Proximity) Enter(collider physics.ColliderID, grabbable uint64) bool {
	if collider == 0 || grabbable == 0 {
		return false
	}
	if p.colliders == nil {
		p.colliders = make(map[physics.ColliderID]uint64)
	}
	if _, ok := p.colliders[collider]; ok {
		return false
	}
	p.colliders[collider] = grabbable
	if e := p.Entry(grabbable); e != nil {
		e.Colliders++
		return false
	}
	p.entries = append(p.entries, &ProximityEntry{Grabbable: grabbable, Colliders: 1, Distance: math.Inf(1)})
	return true
}

// Exit forgets collider. It returns the owning grabbable and whether that
// grabbable has no colliders left inside.
func (p *Proximity) Exit(collider physics.ColliderID) (uint64, bool) {
	grabbable, ok := p.colliders[collider]
	if !ok {
		return 0, false
	}
	delete(p.colliders, collider)
	for i, e := range p.entries {
		if e.Grabbable != grabbable {
			continue
		}
		e.Colliders--
		if e.Colliders > 0 {
			return grabbable, false
		}
		p.entries = append(p.entries[:i], p.entries[i+1:]...)
		return grabbable, true
	}
	return grabbable, false
}

// Forget drops grabbable and all of its colliders.
func (p *Proximity) Forget(grabbable uint64) bool {
	found := false
	for id, g := range p.colliders {
		if g == grabbable {
			delete(p.colliders, id)
		}
	}
	for i, e := range p.entries {
		if e.Grabbable == grabbable {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			found = true
			break
		}
	}
	return found
}

func (p *Proximity) Entry(grabbable uint64) *ProximityEntry {
	for _, e := range p.entries {
		if e.Grabbable == grabbable {
			return e
		}
	}
	return nil
}

func (p *Proximity) Contains(grabbable uint64) bool {
	return p.Entry(grabbable) != nil
}

// Grabbable returns the grabbable tracked for collider.
func (p *Proximity) Grabbable(collider physics.ColliderID) (uint64, bool) {
	g, ok := p.colliders[collider]
	return g, ok
}

// Colliders returns the colliders tracked for grabbable in id order.
func (p *Proximity) Colliders(grabbable uint64) []physics.ColliderID {
	var out []physics.ColliderID
	for id, g := range p.colliders {
		if g == grabbable {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Entries returns the live entries in first-entered order.
func (p *Proximity) Entries() []*ProximityEntry {
	return p.entries
}

func (p *Proximity) Len() int {
	return len(p.entries)
}

func (p *Proximity) Empty() bool {
	return len(p.entries) == 0
}
