package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"github.com/milk9111/vrhands/physics"
	"github.com/milk9111/vrhands/prefabs"
)

var ErrUnknownParent = errors.New("entity: unknown parent")

type buildContext struct {
	Physics physics.World
	Names   map[string]ecs.Entity
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":       addTransform,
	"local_transform": addLocalTransform,
	"rigid_body":      addRigidBody,
	"colliders":       addColliders,
	"grabbable":       addGrabbable,
	"anchor":          addAnchor,
	"pose_trigger":    addPoseTrigger,
}

// Bodies need a pose and colliders need the body, so order matters.
var componentBuildOrder = []string{
	"transform",
	"local_transform",
	"rigid_body",
	"colliders",
	"grabbable",
	"anchor",
	"pose_trigger",
}

// BuildEntity creates one scene entity from spec. A named parent must already
// be registered in ctx.
func BuildEntity(w *ecs.World, spec prefabs.EntityBuildSpec, ctx *buildContext) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: %q does not define components", spec.Name)
	}

	e := ecs.CreateEntity(w)
	fail := func(err error) (ecs.Entity, error) {
		ecs.DestroyEntity(w, e)
		return 0, err
	}

	if spec.Name != "" {
		if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: spec.Name}); err != nil {
			return fail(err)
		}
	}
	if spec.Parent != "" {
		parent, ok := ctx.Names[spec.Parent]
		if !ok {
			return fail(fmt.Errorf("build entity: %q: %w %q", spec.Name, ErrUnknownParent, spec.Parent))
		}
		if err := ecs.Add(w, e, component.ParentComponent.Kind(), &component.Parent{Entity: uint64(parent)}); err != nil {
			return fail(err)
		}
	}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	build := func(name string, raw any) error {
		builder, ok := componentRegistry[name]
		if !ok {
			return fmt.Errorf("build entity: %q: no builder for component %q", spec.Name, name)
		}
		if err := builder(w, e, raw, ctx); err != nil {
			return fmt.Errorf("build entity: %q: add %q: %w", spec.Name, name, err)
		}
		return nil
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := build(name, raw); err != nil {
			return fail(err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := build(name, remaining[name]); err != nil {
				return fail(err)
			}
		}
	}

	if spec.Name != "" {
		ctx.Names[spec.Name] = e
	}
	return e, nil
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	t := transformFromSpec(spec)
	return ecs.Add(w, e, component.TransformComponent.Kind(), &t)
}

// addLocalTransform also derives the world Transform from the parent so the
// entity can carry a body of its own.
func addLocalTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode local_transform spec: %w", err)
	}
	local := transformFromSpec(spec)
	if err := ecs.Add(w, e, component.LocalTransformComponent.Kind(), &component.LocalTransform{Transform: local}); err != nil {
		return err
	}

	world := local
	if p, ok := ecs.Get(w, e, component.ParentComponent.Kind()); ok {
		if pt, ok := ecs.Get(w, ecs.Entity(p.Entity), component.TransformComponent.Kind()); ok {
			world = pt.Apply(local)
		}
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &world)
}

func addRigidBody(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	if ctx == nil || ctx.Physics == nil {
		return fmt.Errorf("rigid_body requires a physics world")
	}
	spec, err := prefabs.DecodeComponentSpec[prefabs.RigidBodyComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode rigid_body spec: %w", err)
	}
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("rigid_body requires transform on the same entity")
	}
	mass := spec.Mass
	if mass <= 0 {
		mass = 1
	}
	body := ctx.Physics.NewBody(physics.BodyDesc{
		Position:   t.Position,
		Rotation:   t.Rot(),
		Mass:       mass,
		Kinematic:  spec.Kinematic,
		UseGravity: spec.UseGravity,
	})
	return ecs.Add(w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{Body: body})
}

// addColliders attaches to the entity's body, or places static colliders at
// the entity's transform when it has none.
func addColliders(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	if ctx == nil || ctx.Physics == nil {
		return fmt.Errorf("colliders requires a physics world")
	}
	specs, err := prefabs.DecodeComponentSpec[[]prefabs.ColliderComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode colliders spec: %w", err)
	}

	var (
		body   physics.Body
		origin component.Transform
	)
	if rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind()); ok {
		body = rb.Body
	} else if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		origin = *t
	}

	ids := make([]physics.ColliderID, 0, len(specs))
	for i, spec := range specs {
		shape, err := parseShape(spec.Shape)
		if err != nil {
			return fmt.Errorf("collider %d: %w", i, err)
		}
		offset := spec.Offset.Vec()
		if body == nil {
			offset = origin.Position.Add(origin.Rot().Rotate(offset))
		}
		id, err := ctx.Physics.NewCollider(physics.ColliderDesc{
			Body:        body,
			Shape:       shape,
			Radius:      spec.Radius,
			HalfExtents: spec.HalfExtents.Vec(),
			Offset:      offset,
			Layer:       spec.Layer,
			Trigger:     spec.Trigger,
			Owner:       uint64(e),
		})
		if err != nil {
			return fmt.Errorf("collider %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ecs.Add(w, e, component.CollidersComponent.Kind(), &component.Colliders{IDs: ids})
}

func addGrabbable(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.GrabbableComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode grabbable spec: %w", err)
	}
	policy, ok := component.ParseSecondGrabPolicy(spec.SecondGrab)
	if !ok {
		return fmt.Errorf("unknown second_grab %q", spec.SecondGrab)
	}
	return ecs.Add(w, e, component.GrabbableComponent.Kind(), &component.Grabbable{
		GrabPose:      component.PoseIDFor(spec.GrabPose),
		ProximityPose: component.PoseIDFor(spec.ProximityPose),
		OrientToHand:  spec.OrientToHand,
		SecondGrab:    policy,
		RuleScript:    spec.RuleScript,
		CurrentAnchor: -1,
	})
}

func addAnchor(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.AnchorComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode anchor spec: %w", err)
	}
	hand, ok := component.ParseHand(spec.Hand)
	if !ok || hand == component.HandEither {
		return fmt.Errorf("anchor hand must be left or right, got %q", spec.Hand)
	}
	order, err := parseGrabOrder(spec.Order)
	if err != nil {
		return err
	}
	mirror, err := parseMirrorActions(spec.MirrorActions)
	if err != nil {
		return err
	}

	a := &component.Anchor{
		PrimaryHand:        hand,
		MirrorForOtherHand: spec.Mirror,
		MirrorActions:      mirror,
		Order:              order,
		Disabled:           spec.Disabled,
		LiveUpdate:         spec.LiveUpdate,
	}
	if spec.GrabPose != nil {
		a.OverrideGrabPose = true
		a.GrabPose = component.PoseIDFor(*spec.GrabPose)
	}
	if spec.ProximityPose != nil {
		a.OverrideProximityPose = true
		a.ProximityPose = component.PoseIDFor(*spec.ProximityPose)
	}
	if spec.OrientToHand != nil {
		a.OverrideOrientToHand = true
		a.OrientToHand = *spec.OrientToHand
	}
	return ecs.Add(w, e, component.AnchorComponent.Kind(), a)
}

func addPoseTrigger(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PoseTriggerComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode pose_trigger spec: %w", err)
	}
	hands := component.HandEither
	if spec.Hands != "" {
		h, ok := component.ParseHand(spec.Hands)
		if !ok {
			return fmt.Errorf("unknown pose_trigger hands %q", spec.Hands)
		}
		hands = h
	}
	return ecs.Add(w, e, component.PoseTriggerComponent.Kind(), &component.PoseTrigger{
		ProximityPose: component.PoseIDFor(spec.Pose),
		Hands:         hands,
	})
}

func transformFromSpec(spec prefabs.TransformSpec) component.Transform {
	return component.NewTransform(spec.Position.Vec(), common.EulerToQuat(mgl64.Vec3(spec.Rotation)))
}

func parseShape(s string) (physics.Shape, error) {
	switch s {
	case "", "sphere", "circle":
		return physics.ShapeSphere, nil
	case "box":
		return physics.ShapeBox, nil
	}
	return 0, fmt.Errorf("unknown shape %q", s)
}

func parseGrabOrder(s string) (component.GrabOrder, error) {
	switch s {
	case "", "first_or_second", "any":
		return component.GrabOrderFirstOrSecond, nil
	case "first_only":
		return component.GrabOrderFirstOnly, nil
	case "second_only":
		return component.GrabOrderSecondOnly, nil
	}
	return 0, fmt.Errorf("unknown anchor order %q", s)
}

var mirrorActionNames = map[string]component.MirrorAction{
	"invert_offset_x":   component.InvertOffsetX,
	"invert_offset_y":   component.InvertOffsetY,
	"invert_offset_z":   component.InvertOffsetZ,
	"invert_rotation_x": component.InvertRotationX,
	"invert_rotation_y": component.InvertRotationY,
	"invert_rotation_z": component.InvertRotationZ,
}

func parseMirrorActions(names []string) (component.MirrorAction, error) {
	var out component.MirrorAction
	for _, name := range names {
		flag, ok := mirrorActionNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown mirror action %q", name)
		}
		out |= flag
	}
	return out, nil
}
