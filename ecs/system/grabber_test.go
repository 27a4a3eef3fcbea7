package system

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"github.com/milk9111/vrhands/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProximityEnterExit(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{1, 0, 0}, component.TransferToSecondGrab)
	_, err := r.phys.NewCollider(physics.ColliderDesc{Body: r.body(prop), Shape: physics.ShapeSphere, Radius: 0.05, Offset: mgl64.Vec3{0, 0.02, 0}, Layer: layerProp, Owner: uint64(prop)})
	require.NoError(t, err)
	approached := 0
	r.grabbable(prop).OnApproach(func(grabbable, grabber uint64) { approached++ })

	r.frame(hand, 0)
	assert.True(t, r.grabber(hand).Proximity.Empty())

	r.moveHand(hand, mgl64.Vec3{0.8, 0, 0})
	r.frame(hand, 0)
	gb := r.grabber(hand)
	assert.True(t, gb.Proximity.Contains(uint64(prop)))
	assert.Equal(t, 2, gb.Proximity.Entry(uint64(prop)).Colliders)
	assert.Len(t, r.events(EventGrabbableEnter), 1)
	assert.Equal(t, 1, approached)

	r.moveHand(hand, mgl64.Vec3{-1, 0, 0})
	r.frame(hand, 0)
	assert.True(t, gb.Proximity.Empty())
	require.Len(t, r.events(EventGrabbableExit), 1)
	assert.Equal(t, prop, r.events(EventGrabbableExit)[0].Grabbable)
}

func TestProximityIgnoresOtherLayers(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	other := r.hand(component.HandRight, mgl64.Vec3{0.1, 0, 0}, 0.3)
	_, err := r.phys.NewCollider(physics.ColliderDesc{Shape: physics.ShapeBox, HalfExtents: mgl64.Vec3{0.1, 0.1, 0.1}, Offset: mgl64.Vec3{0, 0.1, 0}, Layer: layerWall})
	require.NoError(t, err)

	r.frame(0, 0)
	assert.True(t, r.grabber(hand).Proximity.Empty())
	assert.True(t, r.grabber(other).Proximity.Empty())
	assert.Empty(t, r.events(EventGrabbableEnter))
}

func TestGripEdgeGrabsAndReleases(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{0.1, 0, 0}, component.TransferToSecondGrab)

	r.frame(hand, 1)
	gb := r.grabber(hand)
	require.Equal(t, uint64(prop), gb.Grabbed)
	assert.Len(t, r.events(EventGrabBegin), 1)

	// holding the grip does not re-grab
	r.frame(hand, 1)
	assert.Len(t, r.events(EventGrabBegin), 1)

	r.frame(hand, 0)
	assert.False(t, gb.IsGrabbing())
	assert.Len(t, r.events(EventGrabEnd), 1)
	assert.Len(t, r.events(EventReleased), 1)
}

func TestGrabFallsBackToNextCandidate(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.5)
	near := r.prop(mgl64.Vec3{0.1, 0, 0}, component.TransferToSecondGrab)
	far := r.prop(mgl64.Vec3{-0.3, 0, 0}, component.TransferToSecondGrab)
	r.grabbable(near).OnBeforeGrab(func(component.GrabRequest) component.GrabDecision { return component.GrabDeny })

	r.frame(hand, 1)
	assert.Equal(t, uint64(far), r.grabber(hand).Grabbed)
	assert.False(t, r.grabbable(near).IsGrabbed())
}

func TestOccludedCandidateSortsLast(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.5)
	hidden := r.prop(mgl64.Vec3{0.2, 0, 0}, component.TransferToSecondGrab)
	_, err := r.phys.NewCollider(physics.ColliderDesc{Shape: physics.ShapeBox, HalfExtents: mgl64.Vec3{0.01, 0.2, 0.2}, Offset: mgl64.Vec3{0.1, 0, 0}, Layer: layerWall})
	require.NoError(t, err)
	visible := r.prop(mgl64.Vec3{0, 0.3, 0}, component.TransferToSecondGrab)

	r.phys.SyncOverlaps()
	r.grabs.Update(r.w)
	gb := r.grabber(hand)
	ranked := r.grabs.rankCandidates(r.w, hand, gb)
	require.Len(t, ranked, 2)
	assert.Equal(t, uint64(visible), ranked[0].Grabbable)
	assert.InDelta(t, 0.25, ranked[0].Distance, 1e-9)
	assert.True(t, math.IsInf(ranked[1].Distance, 1))
	// ranking does not reorder the proximity set itself
	assert.Equal(t, uint64(hidden), gb.Proximity.Entries()[0].Grabbable)

	r.frame(hand, 1)
	assert.Equal(t, uint64(visible), gb.Grabbed)
}

func TestReachCutoff(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{0.2, 0, 0}, component.TransferToSecondGrab)
	gb := r.grabber(hand)
	gb.MaxRadius = 0.1

	r.frame(hand, 1)
	assert.True(t, gb.Proximity.Contains(uint64(prop)))
	assert.False(t, gb.IsGrabbing())
	assert.False(t, r.grabbable(prop).IsGrabbed())

	r.frame(hand, 0)
	r.moveHand(hand, mgl64.Vec3{0.1, 0, 0})
	r.frame(hand, 1)
	assert.Equal(t, uint64(prop), gb.Grabbed)
}

func TestReachFromTriggerBounds(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	assert.InDelta(t, 0.6*math.Sqrt(3), r.grabs.maxRadius(r.grabber(hand)), 1e-9)
}

func TestHandCollidersReenableWhenClear(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	r.prop(mgl64.Vec3{0.1, 0, 0}, component.TransferToSecondGrab)
	solid := mustGet(t, r, hand, component.HandCollidersComponent.Kind()).IDs[0]

	enabled := func() bool {
		info, ok := r.phys.Collider(solid)
		require.True(t, ok)
		return info.Enabled
	}

	r.frame(hand, 1)
	gb := r.grabber(hand)
	require.True(t, gb.IsGrabbing())
	assert.True(t, gb.HandCollidersDisabled)
	assert.False(t, enabled())

	r.frame(hand, 0)
	assert.False(t, gb.IsGrabbing())
	assert.False(t, enabled(), "still inside the object's proximity")

	r.moveHand(hand, mgl64.Vec3{5, 0, 0})
	r.frame(hand, 0)
	assert.True(t, enabled())
	assert.False(t, gb.HandCollidersDisabled)
}

func TestPoseTrigger(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.1)
	point := component.PoseIDFor("point")
	zone := r.w.CreateEntity()
	add(r, zone, component.PoseTriggerComponent.Kind(), component.PoseTrigger{ProximityPose: point, Hands: component.HandEither})
	_, err := r.phys.NewCollider(physics.ColliderDesc{Shape: physics.ShapeSphere, Radius: 0.2, Offset: mgl64.Vec3{1, 0, 0}, Layer: layerProp, Trigger: true, Owner: uint64(zone)})
	require.NoError(t, err)
	poses := handPose(r.w, hand).Solid.(component.PoseBools)

	r.moveHand(hand, mgl64.Vec3{0.9, 0, 0})
	r.frame(hand, 0)
	gb := r.grabber(hand)
	assert.True(t, poses.Active(point))
	assert.Equal(t, point, gb.ProximityPose)
	assert.True(t, gb.Proximity.Empty())

	r.moveHand(hand, mgl64.Vec3{})
	r.frame(hand, 0)
	assert.False(t, poses.Active(point))
	assert.Zero(t, gb.ProximityPose)
	assert.Zero(t, gb.PoseSource)
}

func TestPoseTriggerHandFilter(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{1, 0, 0}, 0.1)
	zone := r.w.CreateEntity()
	add(r, zone, component.PoseTriggerComponent.Kind(), component.PoseTrigger{ProximityPose: component.PoseIDFor("point"), Hands: component.HandRight})
	_, err := r.phys.NewCollider(physics.ColliderDesc{Shape: physics.ShapeSphere, Radius: 0.2, Offset: mgl64.Vec3{1, 0, 0}, Layer: layerProp, Trigger: true, Owner: uint64(zone)})
	require.NoError(t, err)

	r.frame(hand, 0)
	assert.Zero(t, r.grabber(hand).ProximityPose)
}

func TestPoseTriggerLayerFilter(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{1, 0, 0}, 0.1)
	zone := r.w.CreateEntity()
	add(r, zone, component.PoseTriggerComponent.Kind(), component.PoseTrigger{ProximityPose: component.PoseIDFor("point"), Hands: component.HandEither})
	_, err := r.phys.NewCollider(physics.ColliderDesc{Shape: physics.ShapeSphere, Radius: 0.2, Offset: mgl64.Vec3{1, 0, 0}, Layer: layerWall, Trigger: true, Owner: uint64(zone)})
	require.NoError(t, err)

	r.frame(hand, 0)
	gb := r.grabber(hand)
	assert.Zero(t, gb.ProximityPose)
	assert.Zero(t, gb.PoseSource)
}

func TestGrabbableProximityPose(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{1, 0, 0}, 0.3)
	prop := r.prop(mgl64.Vec3{0.1, 0, 0}, component.TransferToSecondGrab)
	open := component.PoseIDFor("open")
	fist := component.PoseIDFor("fist")
	g := r.grabbable(prop)
	g.ProximityPose = open
	g.GrabPose = fist
	poses := handPose(r.w, hand).Solid.(component.PoseBools)

	r.moveHand(hand, mgl64.Vec3{})
	r.frame(hand, 0)
	assert.True(t, poses.Active(open))

	r.frame(hand, 1)
	assert.False(t, poses.Active(open))
	assert.True(t, poses.Active(fist))
	assert.Zero(t, r.grabber(hand).ProximityPose)

	r.frame(hand, 0)
	assert.False(t, poses.Active(fist))
}

func TestGrabbedEntityDestroyedReleases(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{0.1, 0, 0}, component.TransferToSecondGrab)

	r.frame(hand, 1)
	require.True(t, r.grabber(hand).IsGrabbing())

	NewPhysicsSystem(r.phys).Despawn(r.w, prop)
	r.frame(hand, 1)
	assert.False(t, r.grabber(hand).IsGrabbing())
	assert.False(t, r.attacher(hand).Attached())
}

func mustGet[T any](t *testing.T, r *rig, e ecs.Entity, kind component.ComponentKind[T]) *T {
	t.Helper()
	v, ok := ecs.Get(r.w, e, kind)
	require.True(t, ok)
	return v
}
