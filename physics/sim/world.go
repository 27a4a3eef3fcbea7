// Package sim is a small deterministic physics.World. It integrates velocity
// and angular velocity, tracks trigger overlaps and answers raycasts. There is
// no contact response; solid colliders exist for queries only.
package sim

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/physics"
)

var _ physics.World = (*World)(nil)

type collider struct {
	id      physics.ColliderID
	body    *Body
	shape   physics.Shape
	radius  float64
	half    mgl64.Vec3
	offset  mgl64.Vec3
	layer   uint8
	trigger bool
	enabled bool
	owner   uint64
}

type pairKey struct {
	trigger physics.ColliderID
	other   physics.ColliderID
}

// World owns bodies and colliders.
type World struct {
	Gravity mgl64.Vec3

	bodies    []*Body
	colliders []*collider
	byID      map[physics.ColliderID]*collider
	nextID    physics.ColliderID

	overlapping map[pairKey]struct{}
	pending     []physics.Overlap
}

func NewWorld(gravity mgl64.Vec3) *World {
	return &World{
		Gravity:     gravity,
		byID:        make(map[physics.ColliderID]*collider),
		overlapping: make(map[pairKey]struct{}),
	}
}

func (w *World) NewBody(desc physics.BodyDesc) physics.Body {
	b := &Body{
		world:     w,
		pos:       desc.Position,
		rot:       common.SafeQuat(desc.Rotation),
		mass:      desc.Mass,
		kinematic: desc.Kinematic,
		gravity:   desc.UseGravity,
	}
	w.bodies = append(w.bodies, b)
	return b
}

func (w *World) NewCollider(desc physics.ColliderDesc) (physics.ColliderID, error) {
	var body *Body
	if desc.Body != nil {
		b, ok := desc.Body.(*Body)
		if !ok || b.world != w || b.removed {
			return 0, physics.ErrUnknownBody
		}
		body = b
	}
	switch desc.Shape {
	case physics.ShapeSphere:
		if desc.Radius <= 0 {
			return 0, fmt.Errorf("sphere radius %v: %w", desc.Radius, physics.ErrInvalidShape)
		}
	case physics.ShapeBox:
		if desc.HalfExtents.X() <= 0 || desc.HalfExtents.Y() <= 0 || desc.HalfExtents.Z() <= 0 {
			return 0, fmt.Errorf("box extents %v: %w", desc.HalfExtents, physics.ErrInvalidShape)
		}
	default:
		return 0, fmt.Errorf("shape %d: %w", desc.Shape, physics.ErrInvalidShape)
	}

	w.nextID++
	c := &collider{
		id:      w.nextID,
		body:    body,
		shape:   desc.Shape,
		radius:  desc.Radius,
		half:    desc.HalfExtents,
		offset:  desc.Offset,
		layer:   desc.Layer,
		trigger: desc.Trigger,
		enabled: true,
		owner:   desc.Owner,
	}
	w.colliders = append(w.colliders, c)
	w.byID[c.id] = c
	return c.id, nil
}

func (w *World) RemoveBody(pb physics.Body) {
	b, ok := pb.(*Body)
	if !ok || b.world != w || b.removed {
		return
	}
	b.removed = true
	w.bodies = slices.DeleteFunc(w.bodies, func(o *Body) bool { return o == b })
	w.colliders = slices.DeleteFunc(w.colliders, func(c *collider) bool {
		if c.body == b {
			delete(w.byID, c.id)
			return true
		}
		return false
	})
	w.SyncOverlaps()
}

// Step integrates every dynamic body and refreshes overlaps.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	for _, b := range w.bodies {
		b.integrate(w.Gravity, dt)
	}
	w.SyncOverlaps()
}

func (w *World) Collider(id physics.ColliderID) (physics.ColliderInfo, bool) {
	c, ok := w.byID[id]
	if !ok {
		return physics.ColliderInfo{}, false
	}
	return physics.ColliderInfo{
		Owner:   c.owner,
		Shape:   c.shape,
		Layer:   c.layer,
		Trigger: c.trigger,
		Enabled: c.enabled,
		Bounds:  c.bounds(),
	}, true
}

func (w *World) SetColliderEnabled(id physics.ColliderID, enabled bool) {
	if c, ok := w.byID[id]; ok {
		c.enabled = enabled
	}
}

func (w *World) DrainOverlaps() []physics.Overlap {
	out := w.pending
	w.pending = nil
	return out
}

func (w *World) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask physics.LayerMask) (physics.Hit, bool) {
	if dir.Len() < 1e-12 || maxDist < 0 || !common.IsFiniteVec(origin) || !common.IsFiniteVec(dir) {
		return physics.Hit{}, false
	}
	dir = dir.Normalize()

	best := physics.Hit{Distance: math.Inf(1)}
	found := false
	for _, c := range w.colliders {
		if !c.enabled || c.trigger || !mask.Contains(c.layer) {
			continue
		}
		t, ok := c.intersectRay(origin, dir)
		if !ok || t > maxDist || t >= best.Distance {
			continue
		}
		best = physics.Hit{Collider: c.id, Distance: t, Point: origin.Add(dir.Mul(t))}
		found = true
	}
	return best, found
}

// SyncOverlaps recomputes trigger overlaps and queues enter/exit changes.
func (w *World) SyncOverlaps() {
	current := make(map[pairKey]struct{}, len(w.overlapping))
	for _, t := range w.colliders {
		if !t.trigger || !t.enabled {
			continue
		}
		for _, o := range w.colliders {
			if o == t || !o.enabled || (o.body != nil && o.body == t.body) {
				continue
			}
			if !overlaps(t, o) {
				continue
			}
			key := pairKey{trigger: t.id, other: o.id}
			current[key] = struct{}{}
			if _, was := w.overlapping[key]; !was {
				w.pending = append(w.pending, physics.Overlap{Trigger: t.id, Other: o.id, Entered: true})
			}
		}
	}

	var exits []pairKey
	for key := range w.overlapping {
		if _, still := current[key]; !still {
			exits = append(exits, key)
		}
	}
	slices.SortFunc(exits, func(a, b pairKey) int {
		if c := cmp.Compare(a.trigger, b.trigger); c != 0 {
			return c
		}
		return cmp.Compare(a.other, b.other)
	})
	for _, key := range exits {
		w.pending = append(w.pending, physics.Overlap{Trigger: key.trigger, Other: key.other})
	}
	w.overlapping = current
}

func (c *collider) center() mgl64.Vec3 {
	if c.body == nil {
		return c.offset
	}
	return c.body.pos.Add(c.body.rot.Rotate(c.offset))
}

// bounds treats boxes as world aligned.
func (c *collider) bounds() physics.AABB {
	center := c.center()
	ext := c.half
	if c.shape == physics.ShapeSphere {
		ext = mgl64.Vec3{c.radius, c.radius, c.radius}
	}
	return physics.AABB{Min: center.Sub(ext), Max: center.Add(ext)}
}

func (c *collider) intersectRay(origin, dir mgl64.Vec3) (float64, bool) {
	if c.shape == physics.ShapeSphere {
		return raySphere(origin, dir, c.center(), c.radius)
	}
	return rayBox(origin, dir, c.bounds())
}

func raySphere(origin, dir, center mgl64.Vec3, r float64) (float64, bool) {
	m := origin.Sub(center)
	c := m.Dot(m) - r*r
	if c <= 0 {
		return 0, true
	}
	b := m.Dot(dir)
	if b > 0 {
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	return -b - math.Sqrt(disc), true
}

func rayBox(origin, dir mgl64.Vec3, box physics.AABB) (float64, bool) {
	if box.Contains(origin) {
		return 0, true
	}
	tmin, tmax := 0.0, math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if origin[i] < box.Min[i] || origin[i] > box.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (box.Min[i] - origin[i]) * inv
		t2 := (box.Max[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

func overlaps(a, b *collider) bool {
	switch {
	case a.shape == physics.ShapeSphere && b.shape == physics.ShapeSphere:
		r := a.radius + b.radius
		return a.center().Sub(b.center()).LenSqr() <= r*r
	case a.shape == physics.ShapeSphere:
		return sphereBox(a.center(), a.radius, b.bounds())
	case b.shape == physics.ShapeSphere:
		return sphereBox(b.center(), b.radius, a.bounds())
	default:
		return a.bounds().Overlaps(b.bounds())
	}
}

func sphereBox(center mgl64.Vec3, r float64, box physics.AABB) bool {
	var closest mgl64.Vec3
	for i := 0; i < 3; i++ {
		closest[i] = mgl64.Clamp(center[i], box.Min[i], box.Max[i])
	}
	return closest.Sub(center).LenSqr() <= r*r
}
