package component

import (
	"testing"

	"github.com/milk9111/vrhands/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProximityAggregates(t *testing.T) {
	var p Proximity
	const mug, plate = uint64(10), uint64(20)

	steps := []struct {
		name    string
		enter   bool
		id      physics.ColliderID
		owner   uint64
		changed bool
		count   map[uint64]int
	}{
		{"mug_handle_enters", true, 1, mug, true, map[uint64]int{mug: 1}},
		{"mug_body_enters", true, 2, mug, false, map[uint64]int{mug: 2}},
		{"duplicate_ignored", true, 2, mug, false, map[uint64]int{mug: 2}},
		{"plate_enters", true, 3, plate, true, map[uint64]int{mug: 2, plate: 1}},
		{"mug_handle_leaves", false, 1, mug, false, map[uint64]int{mug: 1, plate: 1}},
		{"unknown_collider_leaves", false, 99, 0, false, map[uint64]int{mug: 1, plate: 1}},
		{"mug_body_leaves", false, 2, mug, true, map[uint64]int{plate: 1}},
	}

	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			if s.enter {
				assert.Equal(t, s.changed, p.Enter(s.id, s.owner))
			} else {
				owner, left := p.Exit(s.id)
				assert.Equal(t, s.owner, owner)
				assert.Equal(t, s.changed, left)
			}
			require.Equal(t, len(s.count), p.Len())
			for g, n := range s.count {
				e := p.Entry(g)
				require.NotNil(t, e)
				assert.Equal(t, n, e.Colliders)
				assert.Len(t, p.Colliders(g), n)
			}
		})
	}
}

func TestProximityOrderAndForget(t *testing.T) {
	var p Proximity
	p.Enter(5, 3)
	p.Enter(6, 1)
	p.Enter(7, 2)
	p.Enter(8, 1)

	var order []uint64
	for _, e := range p.Entries() {
		order = append(order, e.Grabbable)
	}
	assert.Equal(t, []uint64{3, 1, 2}, order)

	assert.True(t, p.Forget(1))
	assert.False(t, p.Contains(1))
	_, ok := p.Grabbable(8)
	assert.False(t, ok)
	assert.False(t, p.Forget(1))
	assert.Equal(t, 2, p.Len())
}
