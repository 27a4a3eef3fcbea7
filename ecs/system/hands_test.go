package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/ecs/component"
	"github.com/stretchr/testify/assert"
)

func TestSolidHandBlend(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{1, 0, 0}, component.TransferToSecondGrab)
	sh := mustGet(t, r, hand, component.SolidHandComponent.Kind())
	sys := NewSolidHandSystem()

	sys.FixedUpdate(r.w, step)
	assert.Zero(t, sh.Transition)
	assert.Equal(t, mgl64.Vec3{}, sh.Pose.Position)

	sh.Anchor = component.SelfAnchor(uint64(prop))
	sys.FixedUpdate(r.w, step)
	assert.InDelta(t, 0.125, sh.Transition, 1e-12)
	assert.InDelta(t, 0.125, sh.Pose.Position.X(), 1e-12)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, sh.Target.Position)

	sh.Anchor = component.AnchorRef{}
	sys.FixedUpdate(r.w, step)
	assert.InDelta(t, 0.109375, sh.Transition, 1e-12)
	assert.InDelta(t, 0.109375, sh.Pose.Position.X(), 1e-12, "eases back from the last target")

	for range 40 {
		sys.FixedUpdate(r.w, step)
	}
	assert.Zero(t, sh.Transition)
	assert.Equal(t, mgl64.Vec3{}, sh.Pose.Position)
}

func TestSolidHandAttachOffset(t *testing.T) {
	r := newRig(t)
	hand := r.hand(component.HandLeft, mgl64.Vec3{}, 0.3)
	prop := r.prop(mgl64.Vec3{1, 0, 0}, component.TransferToSecondGrab)
	sh := mustGet(t, r, hand, component.SolidHandComponent.Kind())
	sh.AttachOffset = mgl64.Vec3{0, 0.1, 0}
	sh.Anchor = component.SelfAnchor(uint64(prop))

	NewSolidHandSystem().FixedUpdate(r.w, step)
	assert.InDelta(t, -0.1, sh.Target.Position.Y(), 1e-12)
}

func TestGhostHandFade(t *testing.T) {
	r := newRig(t)
	e := r.w.CreateEntity()
	add(r, e, component.TransformComponent.Kind(), component.NewTransform(mgl64.Vec3{}, mgl64.QuatIdent()))
	sh := add(r, e, component.SolidHandComponent.Kind(), component.SolidHand{})
	gh := add(r, e, component.GhostHandComponent.Kind(), component.GhostHand{
		MinDistance: component.DefaultGhostMinDistance,
		MaxDistance: component.DefaultGhostMaxDistance,
		Opacity:     0.8,
	})
	sys := NewGhostHandSystem()

	tests := []struct {
		name    string
		pos     mgl64.Vec3
		stretch float64
		visible bool
	}{
		{name: "together", pos: mgl64.Vec3{}, stretch: 0, visible: false},
		{name: "halfway", pos: mgl64.Vec3{0.255, 0, 0}, stretch: 0.5, visible: true},
		{name: "beyond max", pos: mgl64.Vec3{0, 2, 0}, stretch: 1, visible: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sh.Pose.Position = tc.pos
			sys.Update(r.w)
			assert.InDelta(t, tc.stretch, gh.Stretch, 1e-9)
			assert.InDelta(t, 0.8*tc.stretch, gh.Alpha, 1e-9)
			assert.Equal(t, tc.visible, gh.Visible)
		})
	}
}
