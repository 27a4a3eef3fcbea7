package entity

import (
	"fmt"

	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/physics"
	"github.com/milk9111/vrhands/prefabs"
)

// Scene maps entity names to the entities built for them.
type Scene struct {
	Name     string
	Entities map[string]ecs.Entity
}

// BuildScene creates every scene entity in declaration order. On error the
// entities built so far are left in the world.
func BuildScene(w *ecs.World, phys physics.World, spec *prefabs.SceneSpec) (*Scene, error) {
	if spec == nil {
		return nil, fmt.Errorf("build scene: spec is nil")
	}
	ctx := &buildContext{Physics: phys, Names: make(map[string]ecs.Entity, len(spec.Entities))}
	for i, es := range spec.Entities {
		if _, err := BuildEntity(w, es, ctx); err != nil {
			return nil, fmt.Errorf("build scene %q: entity %d: %w", spec.Name, i, err)
		}
	}
	return &Scene{Name: spec.Name, Entities: ctx.Names}, nil
}

// LoadScene reads filename from prefabs and builds it.
func LoadScene(w *ecs.World, phys physics.World, filename string) (*Scene, error) {
	spec, err := prefabs.LoadSceneSpec(filename)
	if err != nil {
		return nil, err
	}
	return BuildScene(w, phys, spec)
}
