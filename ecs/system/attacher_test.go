package system

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func (r *rig) poseHand(e ecs.Entity, pos mgl64.Vec3, rot mgl64.Quat) {
	r.t.Helper()
	r.body(e).MoveTo(pos, rot)
	tr, ok := ecs.Get(r.w, e, component.TransformComponent.Kind())
	require.True(r.t, ok)
	tr.Position = pos
	tr.Rotation = rot
}

func TestAttacherFollowsHand(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{}, component.TransferToSecondGrab)
	require.True(t, r.grabs.Grab(r.w, hand, prop))
	sys := NewAttacherSystem()
	body := r.body(prop)
	att := r.attacher(hand)

	prev := 0.0
	for i := 1; i <= 10; i++ {
		r.moveHand(hand, mgl64.Vec3{0.1 * float64(i), 0, 0})
		sys.FixedUpdate(r.w, step)
		r.phys.Step(step)

		v := body.Velocity()
		require.True(t, common.IsFiniteVec(v))
		assert.LessOrEqual(t, v.Len(), component.DefaultMoveSpeed)
		assert.Greater(t, att.Engaged, prev)
		prev = att.Engaged
	}

	for range 80 {
		sys.FixedUpdate(r.w, step)
		r.phys.Step(step)
	}
	sys.FixedUpdate(r.w, step)
	gap := 1 - body.Position().X()
	assert.InDelta(t, 0, gap, 0.01)
	// mass 1 pulls at moveSpeed / 2 per unit of separation
	assert.InDelta(t, 30*gap, body.Velocity().X(), 1e-3)
}

func TestAttacherEngagementRamp(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{}, component.TransferToSecondGrab)
	sys := NewAttacherSystem()
	att := r.attacher(hand)

	sys.FixedUpdate(r.w, step)
	assert.Zero(t, att.Engaged)

	require.True(t, r.grabs.Grab(r.w, hand, prop))
	assert.Zero(t, att.Engaged)
	sys.FixedUpdate(r.w, step)
	assert.InDelta(t, 0.125, att.Engaged, 1e-12)
	sys.FixedUpdate(r.w, step)
	assert.InDelta(t, 0.234375, att.Engaged, 1e-12)

	require.True(t, r.grabs.Release(r.w, hand))
	sys.FixedUpdate(r.w, step)
	assert.Zero(t, att.Engaged)
}

func TestAttacherDisableForce(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{}, component.TransferToSecondGrab)
	require.True(t, r.grabs.Grab(r.w, hand, prop))
	r.attacher(hand).DisableForce = true
	r.moveHand(hand, mgl64.Vec3{1, 0, 0})

	NewAttacherSystem().FixedUpdate(r.w, step)
	assert.Equal(t, mgl64.Vec3{}, r.body(prop).Velocity())
}

func TestAttacherAlignedSkipsAngular(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{}, component.TransferToSecondGrab)
	require.True(t, r.grabs.Grab(r.w, hand, prop))
	body := r.body(prop)
	spin := mgl64.Vec3{0, 1, 0}
	body.SetAngularVelocity(spin)

	NewAttacherSystem().FixedUpdate(r.w, step)
	assert.Equal(t, spin, body.AngularVelocity())
	assert.True(t, common.IsFiniteVec(body.Velocity()))
}

func TestAttacherTurnsTowardHand(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{}, component.TransferToSecondGrab)
	require.True(t, r.grabs.Grab(r.w, hand, prop))
	r.poseHand(hand, mgl64.Vec3{}, mgl64.QuatRotate(mgl64.DegToRad(90), common.Up))

	NewAttacherSystem().FixedUpdate(r.w, step)
	want := 0.125 * component.DefaultTurnSpeed * (math.Pi / 2) / step
	w := r.body(prop).AngularVelocity()
	assert.InDelta(t, want, w.Y(), 1e-6)
	assert.InDelta(t, 0, w.X(), 1e-9)
	assert.InDelta(t, 0, w.Z(), 1e-9)
}

func TestAttacherTwoHanded(t *testing.T) {
	r := newRig(t)
	a := r.hand(component.HandLeft, mgl64.Vec3{-0.1, 0, 0}, 0.3)
	b := r.hand(component.HandRight, mgl64.Vec3{0.1, 0, 0}, 0.3)
	prop := r.prop(mgl64.Vec3{}, component.AllowBothHands)
	r.anchor(prop, local(-0.1, 0, 0), component.Anchor{})
	r.anchor(prop, local(0.1, 0, 0), component.Anchor{})
	require.True(t, r.grabs.Grab(r.w, a, prop))
	require.True(t, r.grabs.Grab(r.w, b, prop))
	require.True(t, r.attacher(a).TwoHanded())

	r.moveHand(b, mgl64.Vec3{0.1, 0.2, 0})
	sys := NewAttacherSystem()
	sys.FixedUpdate(r.w, step)

	body := r.body(prop)
	v, w := body.Velocity(), body.AngularVelocity()
	require.True(t, common.IsFiniteVec(v))
	require.True(t, common.IsFiniteVec(w))
	assert.Greater(t, v.Y(), 0.0)
	// lifting the right hand rolls the object about +Z
	assert.Greater(t, w.Z(), 0.0)
	assert.Greater(t, w.Z(), math.Abs(w.X()))
	assert.Greater(t, w.Z(), math.Abs(w.Y()))

	// the second hand's attacher stays idle while the primary blends both
	sys.FixedUpdate(r.w, step)
	assert.Zero(t, r.attacher(b).Engaged)
}

func TestAttacherTwoHandedWithoutAnchors(t *testing.T) {
	r := newRig(t)
	a := r.hand(component.HandLeft, mgl64.Vec3{-0.1, 0, 0}, 0.3)
	b := r.hand(component.HandRight, mgl64.Vec3{0.1, 0, 0}, 0.3)
	prop := r.prop(mgl64.Vec3{}, component.AllowBothHands)
	require.True(t, r.grabs.Grab(r.w, a, prop))
	require.True(t, r.grabs.Grab(r.w, b, prop))
	require.True(t, r.attacher(a).TwoHanded())

	// both holds sit on the object's origin, so still hands must not spin it
	sys := NewAttacherSystem()
	for range 3 {
		sys.FixedUpdate(r.w, step)
		r.phys.Step(step)
	}
	w := r.body(prop).AngularVelocity()
	assert.InDelta(t, 0, w.X(), 1e-9)
	assert.InDelta(t, 0, w.Y(), 1e-9)
	assert.InDelta(t, 0, w.Z(), 1e-9)
	assert.True(t, common.IsFiniteVec(r.body(prop).Velocity()))
}

func TestSnapOrient(t *testing.T) {
	logs := observeLogs(t)
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{}, component.TransferToSecondGrab)

	assert.False(t, SnapOrient(r.w, hand, AxisAll))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	require.True(t, r.grabs.Grab(r.w, hand, prop))
	r.poseHand(hand, mgl64.Vec3{}, common.EulerToQuat(mgl64.Vec3{10, 30, 0}))
	require.True(t, SnapOrient(r.w, hand, AxisY))

	e := common.QuatToEuler(r.body(prop).Rotation())
	assert.InDelta(t, 0, common.WrapAngle(e.X()), 1e-6)
	assert.InDelta(t, 30, e.Y(), 1e-6)
	assert.InDelta(t, 0, common.WrapAngle(e.Z()), 1e-6)

	tr, ok := ecs.Get(r.w, prop, component.TransformComponent.Kind())
	require.True(t, ok)
	assert.InDelta(t, 0, common.AngleBetween(tr.Rot(), r.body(prop).Rotation()), 1e-6)
}
