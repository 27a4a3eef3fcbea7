package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttacherLifecycle(t *testing.T) {
	a := NewAttacher()
	assert.False(t, a.Attached())

	a.SetGrab(4, SelfAnchor(4), HandLeft, 9)
	a.Engaged = 0.7
	assert.True(t, a.Attached())
	assert.False(t, a.TwoHanded())

	a.SetSecondGrab(AnchorAt(4, 5), 11)
	assert.True(t, a.TwoHanded())

	a.SetSecondGrab(AnchorRef{}, 11)
	assert.False(t, a.TwoHanded())

	a.SetSecondGrab(AnchorAt(4, 5), 11)
	a.SetGrab(4, AnchorAt(4, 5), HandRight, 11)
	assert.Zero(t, a.Engaged, "new grab resets engagement")
	assert.False(t, a.TwoHanded(), "new grab drops the second hand")

	a.Clear()
	assert.False(t, a.Attached())
	assert.Equal(t, DefaultMoveSpeed, a.MoveSpeed, "tuning survives clear")
}

func TestPoseSinks(t *testing.T) {
	solid, ghost := PoseBools{}, PoseBools{}
	hp := HandPose{Solid: solid, Ghost: ghost}
	fist := PoseIDFor("fist")

	hp.Set(0, true)
	assert.Empty(t, solid)

	hp.Set(fist, true)
	assert.True(t, solid.Active(fist))
	assert.True(t, ghost.Active(fist))

	hp.Set(fist, false)
	assert.False(t, solid.Active(fist))
	assert.Zero(t, PoseIDFor(""))
	assert.Equal(t, PoseIDFor("fist"), fist)
}

func TestHandHelpers(t *testing.T) {
	assert.Equal(t, HandRight, HandLeft.Other())
	assert.True(t, HandEither.Has(HandLeft))
	assert.False(t, HandLeft.Has(HandRight))
	h, ok := ParseHand("right")
	assert.True(t, ok)
	assert.Equal(t, HandRight, h)
}
