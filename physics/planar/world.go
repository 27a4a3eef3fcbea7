// Package planar runs the hand interaction systems on Chipmunk2D. The world
// lives in the XY plane; Z is ignored on input and zero on output.
package planar

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/vrhands/physics"
)

var _ physics.World = (*World)(nil)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeTrigger
)

// triggerCategory keeps trigger shapes out of every layer mask.
const triggerCategory uint = 1 << 31

type shapeInfo struct {
	id      physics.ColliderID
	shape   *cp.Shape
	kind    physics.Shape
	body    *Body
	layer   uint8
	trigger bool
	enabled bool
	owner   uint64
	depth   float64
}

// World wraps a cp.Space.
type World struct {
	space *cp.Space

	shapes  map[physics.ColliderID]*shapeInfo
	byShape map[*cp.Shape]*shapeInfo
	nextID  physics.ColliderID

	pending []physics.Overlap
}

func NewWorld(gravity mgl64.Vec3) *World {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: gravity.X(), Y: gravity.Y()})

	w := &World{
		space:   space,
		shapes:  make(map[physics.ColliderID]*shapeInfo),
		byShape: make(map[*cp.Shape]*shapeInfo),
	}
	w.setupHandlers()
	return w
}

// Space exposes the underlying Chipmunk space for debug drawing.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

func (w *World) setupHandlers() {
	solid := w.space.NewCollisionHandler(collisionTypeTrigger, collisionTypeSolid)
	solid.UserData = w
	solid.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		a, b := arb.Shapes()
		w.record(a, b, true)
		return true
	}
	solid.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		a, b := arb.Shapes()
		w.record(a, b, false)
	}

	triggers := w.space.NewCollisionHandler(collisionTypeTrigger, collisionTypeTrigger)
	triggers.UserData = w
	triggers.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		a, b := arb.Shapes()
		w.record(a, b, true)
		w.record(b, a, true)
		return true
	}
	triggers.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		a, b := arb.Shapes()
		w.record(a, b, false)
		w.record(b, a, false)
	}
}

func (w *World) record(trigger, other *cp.Shape, entered bool) {
	t, okT := w.byShape[trigger]
	o, okO := w.byShape[other]
	if !okT || !okO || !t.trigger {
		return
	}
	if t.body != nil && t.body == o.body {
		return
	}
	w.pending = append(w.pending, physics.Overlap{Trigger: t.id, Other: o.id, Entered: entered})
}

func (w *World) NewBody(desc physics.BodyDesc) physics.Body {
	mass := desc.Mass
	if mass <= 0 {
		mass = 1
	}
	// moment is set by the first shape
	body := cp.NewBody(mass, math.Inf(1))
	body.SetPosition(cp.Vector{X: desc.Position.X(), Y: desc.Position.Y()})
	b := &Body{world: w, body: body, kinematic: desc.Kinematic, gravity: desc.UseGravity}
	body.SetAngle(planeAngle(desc.Rotation))
	b.applyVelocityFunc()
	w.space.AddBody(body)
	return b
}

func (w *World) NewCollider(desc physics.ColliderDesc) (physics.ColliderID, error) {
	var owner *Body
	cpBody := w.space.StaticBody
	if desc.Body != nil {
		b, ok := desc.Body.(*Body)
		if !ok || b.world != w || b.removed {
			return 0, physics.ErrUnknownBody
		}
		owner = b
		cpBody = b.body
	}

	var shape *cp.Shape
	var depth float64
	offset := cp.Vector{X: desc.Offset.X(), Y: desc.Offset.Y()}
	switch desc.Shape {
	case physics.ShapeSphere:
		if desc.Radius <= 0 {
			return 0, fmt.Errorf("circle radius %v: %w", desc.Radius, physics.ErrInvalidShape)
		}
		shape = cp.NewCircle(cpBody, desc.Radius, offset)
		depth = desc.Radius
		if owner != nil && math.IsInf(owner.body.Moment(), 1) {
			owner.body.SetMoment(cp.MomentForCircle(owner.body.Mass(), 0, desc.Radius, offset))
		}
	case physics.ShapeBox:
		hx, hy := desc.HalfExtents.X(), desc.HalfExtents.Y()
		if hx <= 0 || hy <= 0 {
			return 0, fmt.Errorf("box extents %v: %w", desc.HalfExtents, physics.ErrInvalidShape)
		}
		bb := cp.BB{L: offset.X - hx, B: offset.Y - hy, R: offset.X + hx, T: offset.Y + hy}
		shape = cp.NewBox2(cpBody, bb, 0)
		depth = math.Min(hx, hy)
		if owner != nil && math.IsInf(owner.body.Moment(), 1) {
			owner.body.SetMoment(cp.MomentForBox(owner.body.Mass(), 2*hx, 2*hy))
		}
	default:
		return 0, fmt.Errorf("shape %d: %w", desc.Shape, physics.ErrInvalidShape)
	}

	w.nextID++
	info := &shapeInfo{
		id:      w.nextID,
		shape:   shape,
		kind:    desc.Shape,
		body:    owner,
		layer:   desc.Layer,
		trigger: desc.Trigger,
		enabled: true,
		owner:   desc.Owner,
		depth:   depth,
	}
	shape.UserData = info.id
	shape.SetSensor(desc.Trigger)
	if desc.Trigger {
		shape.SetCollisionType(collisionTypeTrigger)
	} else {
		shape.SetCollisionType(collisionTypeSolid)
	}
	shape.SetFilter(info.filter())
	w.space.AddShape(shape)

	w.shapes[info.id] = info
	w.byShape[shape] = info
	return info.id, nil
}

func (w *World) RemoveBody(pb physics.Body) {
	b, ok := pb.(*Body)
	if !ok || b.world != w || b.removed {
		return
	}
	for id, info := range w.shapes {
		if info.body != b {
			continue
		}
		w.space.RemoveShape(info.shape)
		delete(w.byShape, info.shape)
		delete(w.shapes, id)
	}
	w.space.RemoveBody(b.body)
	b.removed = true
}

func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.space.Step(dt)
}

func (w *World) Collider(id physics.ColliderID) (physics.ColliderInfo, bool) {
	info, ok := w.shapes[id]
	if !ok {
		return physics.ColliderInfo{}, false
	}
	bb := info.shape.BB()
	return physics.ColliderInfo{
		Owner:   info.owner,
		Shape:   info.kind,
		Layer:   info.layer,
		Trigger: info.trigger,
		Enabled: info.enabled,
		Bounds: physics.AABB{
			Min: mgl64.Vec3{bb.L, bb.B, -info.depth},
			Max: mgl64.Vec3{bb.R, bb.T, info.depth},
		},
	}, true
}

func (w *World) SetColliderEnabled(id physics.ColliderID, enabled bool) {
	info, ok := w.shapes[id]
	if !ok || info.enabled == enabled {
		return
	}
	info.enabled = enabled
	info.shape.SetFilter(info.filter())
}

func (w *World) DrainOverlaps() []physics.Overlap {
	out := w.pending
	w.pending = nil
	return out
}

func (w *World) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask physics.LayerMask) (physics.Hit, bool) {
	flat := mgl64.Vec3{dir.X(), dir.Y(), 0}
	if flat.Len() < 1e-12 || maxDist <= 0 {
		return physics.Hit{}, false
	}
	flat = flat.Normalize()
	start := cp.Vector{X: origin.X(), Y: origin.Y()}
	end := start.Add(cp.Vector{X: flat.X(), Y: flat.Y()}.Mult(maxDist))

	filter := cp.ShapeFilter{Group: cp.NO_GROUP, Categories: cp.ALL_CATEGORIES, Mask: uint(mask) &^ triggerCategory}
	q := w.space.SegmentQueryFirst(start, end, 0, filter)
	if q.Shape == nil {
		return physics.Hit{}, false
	}
	info, ok := w.byShape[q.Shape]
	if !ok {
		return physics.Hit{}, false
	}
	return physics.Hit{
		Collider: info.id,
		Distance: q.Alpha * maxDist,
		Point:    mgl64.Vec3{q.Point.X, q.Point.Y, 0},
	}, true
}

func (s *shapeInfo) filter() cp.ShapeFilter {
	if !s.enabled {
		return cp.ShapeFilter{Group: cp.NO_GROUP}
	}
	categories := uint(1) << s.layer
	if s.trigger {
		categories = triggerCategory
	}
	return cp.ShapeFilter{Group: cp.NO_GROUP, Categories: categories, Mask: cp.ALL_CATEGORIES}
}
