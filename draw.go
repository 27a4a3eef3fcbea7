package main

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"github.com/milk9111/vrhands/physics"
	"golang.org/x/image/colornames"
)

// The view looks at the XY plane with the origin at the bottom centre.
const (
	pixelsPerMeter = 400.0
	originY        = baseHeight - 40
)

var (
	paletteBackground = colornames.Darkslategray
	paletteStatic     = colornames.Lightgrey
	paletteGrabbable  = colornames.Steelblue
	paletteHeld       = colornames.Orange
	paletteTrigger    = colornames.Limegreen
	paletteAnchor     = colornames.Gold
	paletteSolidHand  = colornames.Crimson
	paletteGhostHand  = colornames.White
	paletteDisabled   = colornames.Dimgray
)

func worldToScreen(p mgl64.Vec3) (float32, float32) {
	return float32(baseWidth/2 + p.X()*pixelsPerMeter), float32(originY - p.Y()*pixelsPerMeter)
}

func screenToWorld(x, y float64) mgl64.Vec3 {
	return mgl64.Vec3{(x - baseWidth/2) / pixelsPerMeter, (originY - y) / pixelsPerMeter, 0}
}

func withAlpha(c color.RGBA, a float64) color.RGBA {
	a = common.Clamp01(a)
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(255 * a),
	}
}

func (g *Game) drawCollider(screen *ebiten.Image, id physics.ColliderID, clr color.RGBA) {
	info, ok := g.phys.Collider(id)
	if !ok {
		return
	}
	if !info.Enabled {
		clr = paletteDisabled
	}
	if info.Trigger {
		clr = withAlpha(clr, 0.5)
	}
	cx, cy := worldToScreen(info.Bounds.Center())
	size := info.Bounds.Size().Mul(pixelsPerMeter)
	switch info.Shape {
	case physics.ShapeSphere:
		vector.StrokeCircle(screen, cx, cy, float32(size.X()/2), 1.5, clr, true)
	default:
		vector.StrokeRect(screen, cx-float32(size.X()/2), cy-float32(size.Y()/2), float32(size.X()), float32(size.Y()), 1.5, clr, true)
	}
}

func (g *Game) drawColliders(screen *ebiten.Image) {
	ecs.ForEach(g.world, component.CollidersComponent.Kind(), func(e ecs.Entity, cols *component.Colliders) {
		clr := paletteStatic
		if gr, ok := ecs.Get(g.world, e, component.GrabbableComponent.Kind()); ok {
			clr = paletteGrabbable
			if gr.IsGrabbed() {
				clr = paletteHeld
			}
		} else if ecs.Has(g.world, e, component.PoseTriggerComponent.Kind()) {
			clr = paletteTrigger
		}
		for _, id := range cols.IDs {
			g.drawCollider(screen, id, clr)
		}
	})
	if !g.cfg.Debug {
		return
	}
	ecs.ForEach(g.world, component.GrabberComponent.Kind(), func(e ecs.Entity, gb *component.Grabber) {
		g.drawCollider(screen, gb.Trigger, paletteTrigger)
	})
}

// drawAnchors marks each cached anchor with a short line along its up axis.
func (g *Game) drawAnchors(screen *ebiten.Image) {
	ecs.ForEach(g.world, component.AnchorComponent.Kind(), func(e ecs.Entity, a *component.Anchor) {
		if !a.Cached() {
			return
		}
		owner, ok := ecs.Get(g.world, ecs.Entity(a.Owner), component.TransformComponent.Kind())
		if !ok {
			return
		}
		pose := a.Pose(a.PrimaryHand, *owner)
		x, y := worldToScreen(pose.Position)
		ux, uy := worldToScreen(pose.Position.Add(pose.Up().Mul(0.05)))
		clr := paletteAnchor
		if a.Disabled {
			clr = paletteDisabled
		}
		vector.FillCircle(screen, x, y, 3, clr, true)
		vector.StrokeLine(screen, x, y, ux, uy, 1.5, clr, true)
	})
}

func (g *Game) drawHands(screen *ebiten.Image) {
	ecs.ForEach2(g.world, component.SolidHandComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, sh *component.SolidHand, t *component.Transform) {
		if gh, ok := ecs.Get(g.world, e, component.GhostHandComponent.Kind()); ok && gh.Visible {
			x, y := worldToScreen(t.Position)
			vector.StrokeCircle(screen, x, y, 14, 2, withAlpha(paletteGhostHand, gh.Alpha), true)
		}

		x, y := worldToScreen(sh.Pose.Position)
		clr := paletteSolidHand
		if e != g.input.ActiveEntity() {
			clr = withAlpha(clr, 0.6)
		}
		vector.FillCircle(screen, x, y, 12, clr, true)
		// finger direction
		angle := mgl64.DegToRad(common.QuatToEuler(sh.Pose.Rot()).Z())
		fx := x + float32(18*math.Cos(angle+math.Pi/2))
		fy := y - float32(18*math.Sin(angle+math.Pi/2))
		vector.StrokeLine(screen, x, y, fx, fy, 3, clr, true)
	})
}

func (g *Game) drawHUD(screen *ebiten.Image, status string) {
	ebitenutil.DebugPrint(screen, status)
	for i, line := range g.events.Lines() {
		ebitenutil.DebugPrintAt(screen, line, 8, 24+14*i)
	}
}
