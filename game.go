package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/entity"
	"github.com/milk9111/vrhands/ecs/system"
	"github.com/milk9111/vrhands/physics/planar"
	"github.com/milk9111/vrhands/prefabs"
	"go.uber.org/zap"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// maxFixedSteps bounds catch-up after a stall.
	maxFixedSteps = 4
)

type Config struct {
	Scene string
	Debug bool
	Watch bool
}

type Game struct {
	cfg    Config
	frames int

	world  *ecs.World
	phys   *planar.World
	sched  *ecs.Scheduler
	grabs  *system.GrabberSystem
	events *system.EventLogSystem
	rules  *system.GrabRules

	input *Input
	hands []entity.HandRig
	scene *entity.Scene

	fixedDT float64
	acc     float64

	watcher *prefabs.Watcher
}

func NewGame(cfg Config) (*Game, error) {
	g := &Game{
		cfg:    cfg,
		rules:  system.NewGrabRules(prefabs.LoadScript),
		events: system.NewEventLogSystem(0),
	}
	if err := g.reset(); err != nil {
		return nil, err
	}
	if cfg.Watch {
		w, err := prefabs.NewWatcher("prefabs", "prefabs/scripts")
		if err != nil {
			common.Logger().Warn("hot reload disabled", zap.Error(err))
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// reset rebuilds the world from hands.yaml and the scene spec.
func (g *Game) reset() error {
	handsSpec, err := prefabs.LoadHandsSpec()
	if err != nil {
		return err
	}
	sceneSpec, err := prefabs.LoadSceneSpec(g.cfg.Scene)
	if err != nil {
		return err
	}

	world := ecs.NewWorld()
	phys := planar.NewWorld(sceneSpec.Gravity.Vec())
	hands, err := entity.BuildHands(world, phys, handsSpec)
	if err != nil {
		return err
	}
	scene, err := entity.BuildScene(world, phys, sceneSpec)
	if err != nil {
		return err
	}

	dt := handsSpec.FixedDT
	if dt <= 0 {
		dt = 1.0 / float64(ebiten.DefaultTPS)
	}
	grabs := system.NewGrabberSystem(phys, g.rules)
	input := NewInput(hands)
	for i, hs := range handsSpec.Hands {
		input.Place(hands[i].Hand, hs.Transform.Position.Vec())
	}

	sched := ecs.NewScheduler(
		system.NewHandInputSystem(input, 1.0/float64(ebiten.DefaultTPS)),
		system.NewAnchorSystem(),
		grabs,
		system.NewGhostHandSystem(),
		g.events,
	)
	sched.AddFixed(system.NewAttacherSystem())
	sched.AddFixed(system.NewPhysicsSystem(phys))
	sched.AddFixed(system.NewSolidHandSystem())

	g.world, g.phys, g.sched, g.grabs = world, phys, sched, grabs
	g.input, g.hands, g.scene = input, hands, scene
	g.fixedDT, g.acc = dt, 0

	common.Logger().Info("scene loaded",
		zap.String("scene", scene.Name),
		zap.Int("entities", len(scene.Entities)),
		zap.Int("hands", len(hands)),
	)
	return nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	g.frames++
	g.pollReload()

	g.input.Update()
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.reset(); err != nil {
			common.Logger().Error("reset failed", zap.Error(err))
		}
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		system.SnapOrient(g.world, g.input.ActiveEntity(), system.AxisAll)
	}

	g.sched.Update(g.world)

	g.acc += 1.0 / float64(ebiten.DefaultTPS)
	for steps := 0; g.acc >= g.fixedDT && steps < maxFixedSteps; steps++ {
		g.sched.FixedUpdate(g.world, g.fixedDT)
		g.acc -= g.fixedDT
	}
	if g.acc > g.fixedDT {
		g.acc = 0
	}
	return nil
}

func (g *Game) pollReload() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change := <-g.watcher.Changes:
			switch change.Kind {
			case prefabs.ScriptChanged:
				g.rules.Invalidate(change.Name)
				common.Logger().Info("rule script reloaded", zap.String("script", change.Name))
			case prefabs.SpecChanged:
				if err := g.reset(); err != nil {
					common.Logger().Error("reload failed", zap.String("file", change.Name), zap.Error(err))
				}
			}
		case err := <-g.watcher.Errors:
			common.Logger().Warn("watch", zap.Error(err))
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(paletteBackground)
	g.drawColliders(screen)
	g.drawAnchors(screen)
	g.drawHands(screen)
	g.drawHUD(screen, fmt.Sprintf("FPS: %.1f  active: %s  [Tab] switch hand  [LMB/G] grip  [Q/E] turn  [O] snap  [R] reset",
		ebiten.ActualFPS(), g.input.Active()))
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
