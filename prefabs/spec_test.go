package prefabs

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHandsSpec(t *testing.T) {
	spec, err := LoadHandsSpec()
	require.NoError(t, err)

	assert.Equal(t, 60.0, spec.MoveSpeed)
	assert.Equal(t, 0.9, spec.TurnSpeed)
	assert.Equal(t, []uint8{1}, spec.GrabbableLayers)
	require.Len(t, spec.Hands, 2)
	assert.Equal(t, "left", spec.Hands[0].Hand)
	assert.Equal(t, mgl64.Vec3{-0.3, 1, 0}, spec.Hands[0].Transform.Position.Vec())
}

func TestLoadSceneSpec(t *testing.T) {
	spec, err := LoadSceneSpec("")
	require.NoError(t, err)

	names := map[string]EntityBuildSpec{}
	for _, e := range spec.Entities {
		names[e.Name] = e
	}
	require.Contains(t, names, "hammer_grip")
	assert.Equal(t, "hammer", names["hammer_grip"].Parent)

	anchor, err := DecodeComponentSpec[AnchorComponentSpec](names["hammer_neck"].Components["anchor"])
	require.NoError(t, err)
	assert.Equal(t, "second_only", anchor.Order)
	require.NotNil(t, anchor.OrientToHand)
	assert.True(t, *anchor.OrientToHand)
	require.NotNil(t, anchor.GrabPose)
	assert.Equal(t, "pinch", *anchor.GrabPose)
	assert.Nil(t, anchor.ProximityPose)

	colliders, err := DecodeComponentSpec[[]ColliderComponentSpec](names["hammer"].Components["colliders"])
	require.NoError(t, err)
	require.Len(t, colliders, 2)
	assert.Equal(t, Vec3Spec{0.2, 0, 0}, colliders[1].Offset)
}

func TestLoadSpecMissing(t *testing.T) {
	_, err := LoadSceneSpec("nope.yaml")
	assert.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	for _, name := range []string{"hammer", "hammer.tengo", "scripts/hammer.tengo", "prefabs/scripts/hammer"} {
		src, err := LoadScript(name)
		require.NoError(t, err, name)
		assert.Contains(t, string(src), "allow")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Change
		ok   bool
	}{
		{path: "prefabs/scene.yaml", want: Change{Kind: SpecChanged, Name: "scene.yaml", Path: "prefabs/scene.yaml"}, ok: true},
		{path: "prefabs/scripts/hammer.tengo", want: Change{Kind: ScriptChanged, Name: "hammer", Path: "prefabs/scripts/hammer.tengo"}, ok: true},
		{path: "prefabs/scene.yaml~", ok: false},
		{path: "README.md", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, ok := classify(tc.path)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
