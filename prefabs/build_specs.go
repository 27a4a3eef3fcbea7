package prefabs

import "gopkg.in/yaml.v3"

// EntityBuildSpec is one scene entity. Parent names an entity declared
// earlier in the same scene.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Parent     string         `yaml:"parent"`
	Components map[string]any `yaml:"components"`
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type RigidBodyComponentSpec struct {
	Mass       float64 `yaml:"mass"`
	Kinematic  bool    `yaml:"kinematic"`
	UseGravity bool    `yaml:"use_gravity"`
}

type ColliderComponentSpec struct {
	Shape       string   `yaml:"shape"`
	Radius      float64  `yaml:"radius"`
	HalfExtents Vec3Spec `yaml:"half_extents"`
	Offset      Vec3Spec `yaml:"offset"`
	Layer       uint8    `yaml:"layer"`
	Trigger     bool     `yaml:"trigger"`
}

type GrabbableComponentSpec struct {
	GrabPose      string `yaml:"grab_pose"`
	ProximityPose string `yaml:"proximity_pose"`
	OrientToHand  bool   `yaml:"orient_to_hand"`
	SecondGrab    string `yaml:"second_grab"`
	RuleScript    string `yaml:"rule_script"`
}

// AnchorComponentSpec leaves pose and orientation overrides unset when the
// pointer fields are absent.
type AnchorComponentSpec struct {
	Hand          string   `yaml:"hand"`
	Mirror        bool     `yaml:"mirror"`
	MirrorActions []string `yaml:"mirror_actions"`
	Order         string   `yaml:"order"`
	Disabled      bool     `yaml:"disabled"`
	LiveUpdate    bool     `yaml:"live_update"`
	GrabPose      *string  `yaml:"grab_pose"`
	ProximityPose *string  `yaml:"proximity_pose"`
	OrientToHand  *bool    `yaml:"orient_to_hand"`
}

type PoseTriggerComponentSpec struct {
	Pose  string `yaml:"pose"`
	Hands string `yaml:"hands"`
}
