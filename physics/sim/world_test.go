package sim

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphereAt(t *testing.T, w *World, pos mgl64.Vec3, r float64, layer uint8, trigger bool) (physics.Body, physics.ColliderID) {
	t.Helper()
	b := w.NewBody(physics.BodyDesc{Position: pos, Rotation: mgl64.QuatIdent(), Mass: 1})
	id, err := w.NewCollider(physics.ColliderDesc{Body: b, Shape: physics.ShapeSphere, Radius: r, Layer: layer, Trigger: trigger})
	require.NoError(t, err)
	return b, id
}

func TestRaycast(t *testing.T) {
	w := NewWorld(mgl64.Vec3{})
	_, near := sphereAt(t, w, mgl64.Vec3{0, 0, 2}, 0.5, 0, false)
	_, far := sphereAt(t, w, mgl64.Vec3{0, 0, 5}, 0.5, 1, false)
	_, trig := sphereAt(t, w, mgl64.Vec3{0, 0, 1}, 0.5, 0, true)
	box, err := w.NewCollider(physics.ColliderDesc{Shape: physics.ShapeBox, HalfExtents: mgl64.Vec3{1, 1, 0.1}, Offset: mgl64.Vec3{0, 0, 8}, Layer: 0})
	require.NoError(t, err)

	tests := []struct {
		name   string
		mask   physics.LayerMask
		max    float64
		hit    bool
		expect physics.ColliderID
		dist   float64
	}{
		{"nearest_wins_and_triggers_ignored", physics.AllLayers, 100, true, near, 1.5},
		{"mask_filters_layer0", physics.MaskOf(1), 100, true, far, 4.5},
		{"max_distance", physics.AllLayers, 1, false, 0, 0},
		{"static_box", physics.MaskOf(0), 100, true, near, 1.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hit, ok := w.Raycast(mgl64.Vec3{}, common.Forward, tc.max, tc.mask)
			require.Equal(t, tc.hit, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.expect, hit.Collider)
			assert.InDelta(t, tc.dist, hit.Distance, 1e-9)
		})
	}
	_ = trig

	w.SetColliderEnabled(near, false)
	hit, ok := w.Raycast(mgl64.Vec3{}, common.Forward, 100, physics.MaskOf(0))
	require.True(t, ok)
	assert.Equal(t, box, hit.Collider)
	assert.InDelta(t, 7.9, hit.Distance, 1e-9)
}

func TestRaycastFromInside(t *testing.T) {
	w := NewWorld(mgl64.Vec3{})
	_, id := sphereAt(t, w, mgl64.Vec3{}, 1, 0, false)
	hit, ok := w.Raycast(mgl64.Vec3{0.1, 0, 0}, common.Right, 1, physics.AllLayers)
	require.True(t, ok)
	assert.Equal(t, id, hit.Collider)
	assert.Zero(t, hit.Distance)
}

func TestOverlapEvents(t *testing.T) {
	w := NewWorld(mgl64.Vec3{})
	hand, sensor := sphereAt(t, w, mgl64.Vec3{}, 0.2, 0, true)
	hand.SetKinematic(true)
	_, target := sphereAt(t, w, mgl64.Vec3{0, 0, 1}, 0.1, 0, false)
	// same-body colliders never report
	_, err := w.NewCollider(physics.ColliderDesc{Body: hand, Shape: physics.ShapeSphere, Radius: 0.05})
	require.NoError(t, err)

	w.Step(0.01)
	assert.Empty(t, w.DrainOverlaps())

	hand.MoveTo(mgl64.Vec3{0, 0, 0.8}, mgl64.QuatIdent())
	w.Step(0.01)
	assert.Equal(t, []physics.Overlap{{Trigger: sensor, Other: target, Entered: true}}, w.DrainOverlaps())

	w.Step(0.01)
	assert.Empty(t, w.DrainOverlaps(), "no repeat while staying inside")

	hand.MoveTo(mgl64.Vec3{}, mgl64.QuatIdent())
	w.Step(0.01)
	assert.Equal(t, []physics.Overlap{{Trigger: sensor, Other: target}}, w.DrainOverlaps())
}

func TestIntegration(t *testing.T) {
	w := NewWorld(mgl64.Vec3{0, -10, 0})
	b := w.NewBody(physics.BodyDesc{Rotation: mgl64.QuatIdent(), Mass: 2, UseGravity: true})

	b.AddVelocityChange(mgl64.Vec3{1, 0, 0})
	b.SetAngularVelocity(mgl64.Vec3{0, math.Pi, 0})
	for i := 0; i < 10; i++ {
		w.Step(0.05)
	}
	assert.InDelta(t, 0.5, b.Position().X(), 1e-9)
	assert.InDelta(t, -5, b.Velocity().Y(), 1e-9)
	assert.InDelta(t, 90, common.AngleBetween(mgl64.QuatIdent(), b.Rotation()), 1e-6)

	b.SetKinematic(true)
	b.AddVelocityChange(mgl64.Vec3{5, 0, 0})
	assert.Equal(t, mgl64.Vec3{}, b.Velocity())

	b.SetKinematic(false)
	b.AddVelocityChange(mgl64.Vec3{math.Inf(1), 0, 0})
	assert.True(t, common.IsFiniteVec(b.Velocity()), "non-finite impulses are dropped")
}

func TestColliderValidation(t *testing.T) {
	w := NewWorld(mgl64.Vec3{})
	_, err := w.NewCollider(physics.ColliderDesc{Shape: physics.ShapeSphere})
	assert.ErrorIs(t, err, physics.ErrInvalidShape)

	other := NewWorld(mgl64.Vec3{})
	foreign := other.NewBody(physics.BodyDesc{Mass: 1})
	_, err = w.NewCollider(physics.ColliderDesc{Body: foreign, Shape: physics.ShapeSphere, Radius: 1})
	assert.ErrorIs(t, err, physics.ErrUnknownBody)

	b, id := sphereAt(t, w, mgl64.Vec3{}, 1, 3, false)
	info, ok := w.Collider(id)
	require.True(t, ok)
	assert.Equal(t, uint8(3), info.Layer)
	assert.Equal(t, mgl64.Vec3{2, 2, 2}, info.Bounds.Size())

	w.RemoveBody(b)
	_, ok = w.Collider(id)
	assert.False(t, ok)
}
