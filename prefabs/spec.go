package prefabs

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// Vec3Spec is written as a flow sequence: [x, y, z].
type Vec3Spec [3]float64

func (v Vec3Spec) Vec() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

// TransformSpec is a position plus Euler angles in degrees.
type TransformSpec struct {
	Position Vec3Spec `yaml:"position"`
	Rotation Vec3Spec `yaml:"rotation"`
}

type HandsSpec struct {
	FixedDT       float64 `yaml:"fixed_dt"`
	GripThreshold float64 `yaml:"grip_threshold"`

	MoveSpeed  float64 `yaml:"move_speed"`
	TurnSpeed  float64 `yaml:"turn_speed"`
	EngageRate float64 `yaml:"engage_rate"`

	TriggerRadius   float64  `yaml:"trigger_radius"`
	SolidRadius     float64  `yaml:"solid_radius"`
	MaxRadius       float64  `yaml:"max_radius"`
	FocusOffset     Vec3Spec `yaml:"focus_offset"`
	HandLayer       uint8    `yaml:"hand_layer"`
	GrabbableLayers []uint8  `yaml:"grabbable_layers"`
	RaycastLayers   []uint8  `yaml:"raycast_layers"`

	SolidHand SolidHandSpec `yaml:"solid_hand"`
	GhostHand GhostHandSpec `yaml:"ghost_hand"`

	Hands []HandSpec `yaml:"hands"`
}

type SolidHandSpec struct {
	AttachOffset Vec3Spec `yaml:"attach_offset"`
}

type GhostHandSpec struct {
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
	Opacity     float64 `yaml:"opacity"`
}

type HandSpec struct {
	Name      string        `yaml:"name"`
	Hand      string        `yaml:"hand"`
	Transform TransformSpec `yaml:"transform"`
}

func LoadHandsSpec() (*HandsSpec, error) {
	spec, err := LoadSpec[HandsSpec]("hands.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type SceneSpec struct {
	Name     string            `yaml:"name"`
	Gravity  Vec3Spec          `yaml:"gravity"`
	Entities []EntityBuildSpec `yaml:"entities"`
}

func LoadSceneSpec(filename string) (*SceneSpec, error) {
	if filename == "" {
		filename = "scene.yaml"
	}
	spec, err := LoadSpec[SceneSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}
