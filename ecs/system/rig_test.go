package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"github.com/milk9111/vrhands/physics"
	"github.com/milk9111/vrhands/physics/sim"
	"github.com/stretchr/testify/require"
)

const (
	layerProp uint8 = 1
	layerHand uint8 = 2
	layerWall uint8 = 3

	step = 1.0 / 60
)

type rig struct {
	t     *testing.T
	w     *ecs.World
	phys  *sim.World
	grabs *GrabberSystem
}

func newRig(t *testing.T) *rig {
	t.Helper()
	phys := sim.NewWorld(mgl64.Vec3{})
	return &rig{
		t:     t,
		w:     ecs.NewWorld(),
		phys:  phys,
		grabs: NewGrabberSystem(phys, nil),
	}
}

func add[T any](r *rig, e ecs.Entity, kind component.ComponentKind[T], value T) *T {
	r.t.Helper()
	require.NoError(r.t, ecs.Add(r.w, e, kind, &value))
	v, ok := ecs.Get(r.w, e, kind)
	require.True(r.t, ok)
	return v
}

// hand builds a tracked hand with a proximity trigger of the given radius and
// a small solid collider of its own.
func (r *rig) hand(hand component.Hand, pos mgl64.Vec3, reach float64) ecs.Entity {
	r.t.Helper()
	e := r.w.CreateEntity()
	body := r.phys.NewBody(physics.BodyDesc{Position: pos, Rotation: mgl64.QuatIdent(), Mass: 1, Kinematic: true})
	trigger, err := r.phys.NewCollider(physics.ColliderDesc{Body: body, Shape: physics.ShapeSphere, Radius: reach, Layer: layerHand, Trigger: true, Owner: uint64(e)})
	require.NoError(r.t, err)
	solid, err := r.phys.NewCollider(physics.ColliderDesc{Body: body, Shape: physics.ShapeSphere, Radius: 0.04, Layer: layerHand, Owner: uint64(e)})
	require.NoError(r.t, err)

	add(r, e, component.TransformComponent.Kind(), component.NewTransform(pos, mgl64.QuatIdent()))
	add(r, e, component.RigidBodyComponent.Kind(), component.RigidBody{Body: body})
	add(r, e, component.GrabberComponent.Kind(), component.Grabber{
		Hand:            hand,
		Trigger:         trigger,
		GrabbableLayers: physics.MaskOf(layerProp),
		RaycastLayers:   physics.MaskOf(layerProp, layerWall),
	})
	add(r, e, component.HandCollidersComponent.Kind(), component.HandColliders{IDs: []physics.ColliderID{solid}})
	add(r, e, component.HandInputComponent.Kind(), component.HandInput{Hand: hand})
	add(r, e, component.AttacherComponent.Kind(), component.NewAttacher())
	add(r, e, component.HandPoseComponent.Kind(), component.HandPose{Solid: component.PoseBools{}, Ghost: component.PoseBools{}})
	add(r, e, component.SolidHandComponent.Kind(), component.SolidHand{Hand: hand})
	return e
}

// prop builds a dynamic grabbable sphere.
func (r *rig) prop(pos mgl64.Vec3, policy component.SecondGrabPolicy) ecs.Entity {
	r.t.Helper()
	e := r.w.CreateEntity()
	body := r.phys.NewBody(physics.BodyDesc{Position: pos, Rotation: mgl64.QuatIdent(), Mass: 1})
	id, err := r.phys.NewCollider(physics.ColliderDesc{Body: body, Shape: physics.ShapeSphere, Radius: 0.05, Layer: layerProp, Owner: uint64(e)})
	require.NoError(r.t, err)

	add(r, e, component.TransformComponent.Kind(), component.NewTransform(pos, mgl64.QuatIdent()))
	add(r, e, component.RigidBodyComponent.Kind(), component.RigidBody{Body: body})
	add(r, e, component.CollidersComponent.Kind(), component.Colliders{IDs: []physics.ColliderID{id}})
	add(r, e, component.GrabbableComponent.Kind(), component.Grabbable{SecondGrab: policy, CurrentAnchor: -1})
	return e
}

// anchor parents a new anchor under g at the given local pose.
func (r *rig) anchor(g ecs.Entity, local component.Transform, a component.Anchor) ecs.Entity {
	r.t.Helper()
	e := r.w.CreateEntity()
	if a.PrimaryHand == 0 {
		a.PrimaryHand = component.HandLeft
		a.MirrorForOtherHand = true
	}
	add(r, e, component.AnchorComponent.Kind(), a)
	add(r, e, component.ParentComponent.Kind(), component.Parent{Entity: uint64(g)})
	add(r, e, component.LocalTransformComponent.Kind(), component.LocalTransform{Transform: local})
	return e
}

func (r *rig) grabbable(e ecs.Entity) *component.Grabbable {
	r.t.Helper()
	g, ok := ecs.Get(r.w, e, component.GrabbableComponent.Kind())
	require.True(r.t, ok)
	return g
}

func (r *rig) grabber(e ecs.Entity) *component.Grabber {
	r.t.Helper()
	g, ok := ecs.Get(r.w, e, component.GrabberComponent.Kind())
	require.True(r.t, ok)
	return g
}

func (r *rig) attacher(e ecs.Entity) *component.Attacher {
	r.t.Helper()
	a, ok := ecs.Get(r.w, e, component.AttacherComponent.Kind())
	require.True(r.t, ok)
	return a
}

func (r *rig) body(e ecs.Entity) physics.Body {
	r.t.Helper()
	rb, ok := ecs.Get(r.w, e, component.RigidBodyComponent.Kind())
	require.True(r.t, ok)
	return rb.Body
}

// moveHand teleports a hand and its body.
func (r *rig) moveHand(e ecs.Entity, pos mgl64.Vec3) {
	r.t.Helper()
	r.body(e).MoveTo(pos, mgl64.QuatIdent())
	tr, ok := ecs.Get(r.w, e, component.TransformComponent.Kind())
	require.True(r.t, ok)
	tr.Position = pos
}

// frame refreshes overlaps, applies a grip value to hand and runs the grabber.
func (r *rig) frame(hand ecs.Entity, grip float64) {
	r.t.Helper()
	r.phys.SyncOverlaps()
	if hand != 0 {
		in, ok := ecs.Get(r.w, hand, component.HandInputComponent.Kind())
		require.True(r.t, ok)
		in.Grip.Update(grip, step)
	}
	r.grabs.Update(r.w)
}

func (r *rig) events(kind string) []GrabEvent {
	var out []GrabEvent
	for _, evt := range r.w.Events().Peek() {
		if evt.Type == kind {
			out = append(out, evt.Data.(GrabEvent))
		}
	}
	return out
}
