package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/portals/pkg/scene"
)

const (
	turnStep    = 0.15 // radians per arrow key press
	mouseYaw    = 0.02 // radians per cell of mouse travel
	mousePitch  = 0.05
	moveDecay   = 0.85 // key release events are unreliable, so held keys fade
	pitchLimit  = math.Pi/2 - 0.01
	lookFreq    = 8.0
	lookDamping = 1.0
)

// LookAxis eases one look angle toward its target with a critically damped
// spring.
type LookAxis struct {
	Position float64
	Target   float64
	velocity float64
	spring   harmonica.Spring
}

// NewLookAxis creates an axis resting at 0.
func NewLookAxis(fps int) LookAxis {
	return LookAxis{spring: harmonica.NewSpring(harmonica.FPS(fps), lookFreq, lookDamping)}
}

// Update moves Position one frame toward Target and returns how far it
// moved.
func (a *LookAxis) Update() float64 {
	before := a.Position
	a.Position, a.velocity = a.spring.Update(a.Position, a.velocity, a.Target)
	return a.Position - before
}

// Snap stops the axis at v.
func (a *LookAxis) Snap(v float64) {
	a.Position, a.Target, a.velocity = v, v, 0
}

// Controls turns terminal key and mouse events into per-frame player input.
type Controls struct {
	Yaw, Pitch LookAxis

	forward, strafe float64
	jump            bool

	dragging     bool
	lastX, lastY int
}

// NewControls creates controls smoothed for the given frame rate.
func NewControls(fps int) *Controls {
	return &Controls{Yaw: NewLookAxis(fps), Pitch: NewLookAxis(fps)}
}

// Turn adds to the look targets. Pitch stays short of straight up or down.
func (c *Controls) Turn(yaw, pitch float64) {
	c.Yaw.Target += yaw
	c.Pitch.Target = math.Max(-pitchLimit, math.Min(pitchLimit, c.Pitch.Target+pitch))
}

// Move holds a walk direction until it fades or is released.
func (c *Controls) Move(forward, strafe float64) {
	if forward != 0 {
		c.forward = forward
	}
	if strafe != 0 {
		c.strafe = strafe
	}
}

// Stop releases the walk axes.
func (c *Controls) Stop(forward, strafe bool) {
	if forward {
		c.forward = 0
	}
	if strafe {
		c.strafe = 0
	}
}

// Jump requests a jump on the next frame.
func (c *Controls) Jump() { c.jump = true }

// Press starts a mouse drag at cell (x, y).
func (c *Controls) Press(x, y int) {
	c.dragging = true
	c.lastX, c.lastY = x, y
}

// Release ends a mouse drag.
func (c *Controls) Release() { c.dragging = false }

// Drag turns by the mouse travel since the last event. Dragging right turns
// right, dragging up looks up.
func (c *Controls) Drag(x, y int) {
	if !c.dragging {
		return
	}
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y
	c.Turn(-float64(dx)*mouseYaw, -float64(dy)*mousePitch)
}

// Input returns this frame's player input and advances the look springs.
// While the player is not in control, pending look input is dropped and the
// springs follow the player's pitch.
func (c *Controls) Input(p *scene.Player) scene.Input {
	if !p.InControl() {
		c.Yaw.Snap(c.Yaw.Position)
		c.Pitch.Snap(p.Pitch)
		c.forward, c.strafe, c.jump = 0, 0, false
		return scene.Input{}
	}

	// The player clamps pitch and resets it at the end of a transition.
	if math.Abs(c.Pitch.Position-p.Pitch) > 1e-6 {
		c.Pitch.Target += p.Pitch - c.Pitch.Position
		c.Pitch.Position = p.Pitch
	}

	in := scene.Input{
		Forward: c.forward,
		Strafe:  c.strafe,
		Yaw:     c.Yaw.Update(),
		Pitch:   c.Pitch.Update(),
		Jump:    c.jump,
	}
	c.jump = false
	c.forward *= moveDecay
	c.strafe *= moveDecay
	if math.Abs(c.forward) < 0.05 {
		c.forward = 0
	}
	if math.Abs(c.strafe) < 0.05 {
		c.strafe = 0
	}
	return in
}
