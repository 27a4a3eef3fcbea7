package entity

import (
	"fmt"

	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"github.com/milk9111/vrhands/physics"
	"github.com/milk9111/vrhands/prefabs"
)

// HandRig is one built hand with the colliders the grab systems need.
type HandRig struct {
	Entity  ecs.Entity
	Hand    component.Hand
	Trigger physics.ColliderID
	Solid   physics.ColliderID
	Solids  component.PoseBools
	Ghosts  component.PoseBools
}

// BuildHands creates a tracked, kinematic hand for every entry in spec.
func BuildHands(w *ecs.World, phys physics.World, spec *prefabs.HandsSpec) ([]HandRig, error) {
	if w == nil || phys == nil || spec == nil {
		return nil, fmt.Errorf("build hands: world, physics and spec are required")
	}
	rigs := make([]HandRig, 0, len(spec.Hands))
	for _, hs := range spec.Hands {
		rig, err := buildHand(w, phys, spec, hs)
		if err != nil {
			return nil, fmt.Errorf("build hands: %q: %w", hs.Name, err)
		}
		rigs = append(rigs, rig)
	}
	return rigs, nil
}

func buildHand(w *ecs.World, phys physics.World, spec *prefabs.HandsSpec, hs prefabs.HandSpec) (HandRig, error) {
	hand, ok := component.ParseHand(hs.Hand)
	if !ok || hand == component.HandEither {
		return HandRig{}, fmt.Errorf("hand must be left or right, got %q", hs.Hand)
	}

	pose := transformFromSpec(hs.Transform)
	e := ecs.CreateEntity(w)
	body := phys.NewBody(physics.BodyDesc{
		Position:  pose.Position,
		Rotation:  pose.Rot(),
		Mass:      1,
		Kinematic: true,
	})
	trigger, err := phys.NewCollider(physics.ColliderDesc{
		Body:    body,
		Shape:   physics.ShapeSphere,
		Radius:  spec.TriggerRadius,
		Layer:   spec.HandLayer,
		Trigger: true,
		Owner:   uint64(e),
	})
	if err != nil {
		ecs.DestroyEntity(w, e)
		return HandRig{}, fmt.Errorf("trigger: %w", err)
	}
	solid, err := phys.NewCollider(physics.ColliderDesc{
		Body:   body,
		Shape:  physics.ShapeSphere,
		Radius: spec.SolidRadius,
		Layer:  spec.HandLayer,
		Owner:  uint64(e),
	})
	if err != nil {
		ecs.DestroyEntity(w, e)
		return HandRig{}, fmt.Errorf("solid collider: %w", err)
	}

	rig := HandRig{
		Entity:  e,
		Hand:    hand,
		Trigger: trigger,
		Solid:   solid,
		Solids:  component.PoseBools{},
		Ghosts:  component.PoseBools{},
	}

	att := component.NewAttacher()
	if spec.MoveSpeed > 0 {
		att.MoveSpeed = spec.MoveSpeed
	}
	if spec.TurnSpeed > 0 {
		att.TurnSpeed = spec.TurnSpeed
	}
	if spec.EngageRate > 0 {
		att.EngageRate = spec.EngageRate
	}

	ghost := component.GhostHand{
		MinDistance: spec.GhostHand.MinDistance,
		MaxDistance: spec.GhostHand.MaxDistance,
		Opacity:     spec.GhostHand.Opacity,
	}
	if ghost.MaxDistance <= ghost.MinDistance {
		ghost.MinDistance = component.DefaultGhostMinDistance
		ghost.MaxDistance = component.DefaultGhostMaxDistance
	}

	adds := []func() error{
		func() error {
			return ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: hs.Name})
		},
		func() error { return ecs.Add(w, e, component.TransformComponent.Kind(), &pose) },
		func() error {
			return ecs.Add(w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{Body: body})
		},
		func() error {
			return ecs.Add(w, e, component.GrabberComponent.Kind(), &component.Grabber{
				Hand:            hand,
				FocusOffset:     spec.FocusOffset.Vec(),
				Trigger:         trigger,
				MaxRadius:       spec.MaxRadius,
				GrabbableLayers: physics.MaskOf(spec.GrabbableLayers...),
				RaycastLayers:   physics.MaskOf(spec.RaycastLayers...),
			})
		},
		func() error {
			return ecs.Add(w, e, component.HandCollidersComponent.Kind(), &component.HandColliders{IDs: []physics.ColliderID{solid}})
		},
		func() error {
			return ecs.Add(w, e, component.HandInputComponent.Kind(), &component.HandInput{
				Hand:      hand,
				Grip:      component.NewButtonState(spec.GripThreshold),
				Trigger:   component.NewButtonState(spec.GripThreshold),
				Primary:   component.NewButtonState(spec.GripThreshold),
				Secondary: component.NewButtonState(spec.GripThreshold),
			})
		},
		func() error { return ecs.Add(w, e, component.AttacherComponent.Kind(), &att) },
		func() error {
			return ecs.Add(w, e, component.HandPoseComponent.Kind(), &component.HandPose{Solid: rig.Solids, Ghost: rig.Ghosts})
		},
		func() error {
			return ecs.Add(w, e, component.SolidHandComponent.Kind(), &component.SolidHand{
				Hand:         hand,
				AttachOffset: spec.SolidHand.AttachOffset.Vec(),
				Pose:         pose,
			})
		},
		func() error { return ecs.Add(w, e, component.GhostHandComponent.Kind(), &ghost) },
	}
	for _, add := range adds {
		if err := add(); err != nil {
			phys.RemoveBody(body)
			ecs.DestroyEntity(w, e)
			return HandRig{}, err
		}
	}
	return rig, nil
}
