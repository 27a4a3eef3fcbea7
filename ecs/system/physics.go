package system

import (
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"github.com/milk9111/vrhands/physics"
)

// PhysicsSystem steps the physics world and mirrors body poses into
// Transforms.
type PhysicsSystem struct {
	world physics.World
}

func NewPhysicsSystem(world physics.World) *PhysicsSystem {
	return &PhysicsSystem{world: world}
}

func (ps *PhysicsSystem) World() physics.World {
	if ps == nil {
		return nil
	}
	return ps.world
}

func (ps *PhysicsSystem) FixedUpdate(w *ecs.World, dt float64) {
	if ps == nil || ps.world == nil || w == nil {
		return
	}
	ps.world.Step(dt)
	ecs.ForEach2(w, component.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, rb *component.RigidBody, t *component.Transform) {
		if rb.Body == nil {
			return
		}
		t.Position = rb.Body.Position()
		t.Rotation = rb.Body.Rotation()
	})
}

// Despawn removes e's body from the physics world and destroys the entity.
func (ps *PhysicsSystem) Despawn(w *ecs.World, e ecs.Entity) {
	if ps == nil || w == nil {
		return
	}
	if rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind()); ok && rb.Body != nil && ps.world != nil {
		ps.world.RemoveBody(rb.Body)
	}
	w.DestroyEntity(e)
}
