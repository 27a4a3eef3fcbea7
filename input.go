package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs"
	"github.com/milk9111/vrhands/ecs/component"
	"github.com/milk9111/vrhands/ecs/entity"
	"github.com/milk9111/vrhands/ecs/system"
)

const (
	turnStepDegrees = 3.0
	stickDeadzone   = 0.2
	stickSpeed      = 0.02
)

var _ system.InputProvider = (*Input)(nil)

// Input drives two virtual controllers from the desktop. The mouse moves the
// active hand; the other hand stays where it was left. A gamepad, when
// present, drives both hands with its sticks and triggers.
type Input struct {
	active  component.Hand
	samples map[component.Hand]*system.HandSample
	angles  map[component.Hand]float64
	handles map[component.Hand]ecs.Entity
	lastX   int
	lastY   int
}

func NewInput(hands []entity.HandRig) *Input {
	in := &Input{
		active:  component.HandRight,
		samples: make(map[component.Hand]*system.HandSample, len(hands)),
		angles:  make(map[component.Hand]float64, len(hands)),
		handles: make(map[component.Hand]ecs.Entity, len(hands)),
	}
	for _, h := range hands {
		in.samples[h.Hand] = &system.HandSample{Rotation: mgl64.QuatIdent(), Tracked: true}
		in.handles[h.Hand] = h.Entity
	}
	in.lastX, in.lastY = ebiten.CursorPosition()
	return in
}

func (in *Input) Active() component.Hand { return in.active }

func (in *Input) ActiveEntity() ecs.Entity { return in.handles[in.active] }

// Place seeds a hand's position, used when a scene is loaded.
func (in *Input) Place(hand component.Hand, pos mgl64.Vec3) {
	if s, ok := in.samples[hand]; ok {
		s.Position = pos
	}
}

func (in *Input) Sample(hand component.Hand) system.HandSample {
	s, ok := in.samples[hand]
	if !ok {
		return system.HandSample{}
	}
	return *s
}

// Update polls the devices once per frame.
func (in *Input) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		in.active = in.active.Other()
	}

	x, y := ebiten.CursorPosition()
	moved := x != in.lastX || y != in.lastY
	in.lastX, in.lastY = x, y

	for hand, s := range in.samples {
		s.Grip, s.Trigger, s.Primary, s.Secondary = 0, 0, 0, 0
		if hand != in.active {
			continue
		}
		if moved {
			s.Position = screenToWorld(float64(x), float64(y))
		}
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || ebiten.IsKeyPressed(ebiten.KeyG) {
			s.Grip = 1
		}
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
			s.Trigger = 1
		}
		if ebiten.IsKeyPressed(ebiten.KeyQ) {
			in.angles[hand] += turnStepDegrees
		}
		if ebiten.IsKeyPressed(ebiten.KeyE) {
			in.angles[hand] -= turnStepDegrees
		}
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		in.pollGamepad(gamepads[0])
	}

	for hand, s := range in.samples {
		s.Rotation = common.EulerToQuat(mgl64.Vec3{0, 0, in.angles[hand]})
	}
}

func (in *Input) pollGamepad(id ebiten.GamepadID) {
	if !ebiten.IsStandardGamepadLayoutAvailable(id) {
		return
	}
	type binding struct {
		hand    component.Hand
		h, v    ebiten.StandardGamepadAxis
		trigger ebiten.StandardGamepadButton
		bumper  ebiten.StandardGamepadButton
	}
	bindings := []binding{
		{component.HandLeft, ebiten.StandardGamepadAxisLeftStickHorizontal, ebiten.StandardGamepadAxisLeftStickVertical, ebiten.StandardGamepadButtonFrontBottomLeft, ebiten.StandardGamepadButtonFrontTopLeft},
		{component.HandRight, ebiten.StandardGamepadAxisRightStickHorizontal, ebiten.StandardGamepadAxisRightStickVertical, ebiten.StandardGamepadButtonFrontBottomRight, ebiten.StandardGamepadButtonFrontTopRight},
	}
	for _, b := range bindings {
		s, ok := in.samples[b.hand]
		if !ok {
			continue
		}
		sx := ebiten.StandardGamepadAxisValue(id, b.h)
		sy := ebiten.StandardGamepadAxisValue(id, b.v)
		if math.Hypot(sx, sy) > stickDeadzone {
			s.Position = s.Position.Add(mgl64.Vec3{sx * stickSpeed, -sy * stickSpeed, 0})
		}
		s.Grip = math.Max(s.Grip, ebiten.StandardGamepadButtonValue(id, b.trigger))
		if ebiten.IsStandardGamepadButtonPressed(id, b.bumper) {
			s.Trigger = 1
		}
	}
}
