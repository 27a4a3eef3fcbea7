package system

import (
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
)

// maxParentDepth bounds parent chain walks so a malformed cycle cannot hang a
// frame.
const maxParentDepth = 32

func ent(id uint64) ecs.Entity {
	return ecs.Entity(id)
}

// worldPose returns the live pose of e, preferring its rigid body.
func worldPose(w *ecs.World, e ecs.Entity) (component.Transform, bool) {
	if rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind()); ok && rb.Body != nil {
		return component.NewTransform(rb.Body.Position(), rb.Body.Rotation()), true
	}
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		return *t, true
	}
	return component.Transform{}, false
}

func parentOf(w *ecs.World, e ecs.Entity) (ecs.Entity, bool) {
	p, ok := ecs.Get(w, e, component.ParentComponent.Kind())
	if !ok || p.Entity == 0 {
		return 0, false
	}
	return ent(p.Entity), true
}

// owningGrabbable walks from e (inclusive) up the parent chain and returns the
// nearest entity carrying a Grabbable.
func owningGrabbable(w *ecs.World, e ecs.Entity) (ecs.Entity, bool) {
	cur := e
	for range maxParentDepth {
		if !w.IsAlive(cur) {
			return 0, false
		}
		if ecs.Has(w, cur, component.GrabbableComponent.Kind()) {
			return cur, true
		}
		next, ok := parentOf(w, cur)
		if !ok {
			return 0, false
		}
		cur = next
	}
	return 0, false
}

// poseIn composes LocalTransforms from e up to root and returns e's pose in
// root's frame. ok is false when root is not an ancestor of e.
func poseIn(w *ecs.World, e, root ecs.Entity) (component.Transform, bool) {
	acc := localOf(w, e)
	cur, ok := parentOf(w, e)
	for range maxParentDepth {
		if !ok {
			return component.Transform{}, false
		}
		if cur == root {
			return acc, true
		}
		acc = localOf(w, cur).Apply(acc)
		cur, ok = parentOf(w, cur)
	}
	return component.Transform{}, false
}

func localOf(w *ecs.World, e ecs.Entity) component.Transform {
	if lt, ok := ecs.Get(w, e, component.LocalTransformComponent.Kind()); ok {
		return lt.Transform
	}
	return component.Transform{}
}

func nameOf(w *ecs.World, e ecs.Entity) string {
	if n, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok {
		return n.Value
	}
	return ""
}

func handPose(w *ecs.World, e ecs.Entity) *component.HandPose {
	hp, _ := ecs.Get(w, e, component.HandPoseComponent.Kind())
	return hp
}
