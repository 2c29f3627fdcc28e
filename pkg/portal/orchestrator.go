package portal

import (
	"errors"

	"github.com/taigrr/portals/pkg/render"
)

// Orchestrator drives every portal and painting through a frame. Each phase
// completes on all surfaces before the next begins, because one surface's
// hiding and masking of its partner's screen must hold while any other
// surface renders.
type Orchestrator struct {
	player    *render.Camera
	portals   []*Portal
	paintings []*Painting
}

// NewOrchestrator creates an orchestrator rendering for player.
func NewOrchestrator(player *render.Camera) *Orchestrator {
	return &Orchestrator{player: player}
}

// Player returns the player camera.
func (o *Orchestrator) Player() *render.Camera {
	return o.player
}

// AddPortal registers portals in drawing order.
func (o *Orchestrator) AddPortal(p ...*Portal) {
	o.portals = append(o.portals, p...)
}

// AddPainting registers paintings in drawing order.
func (o *Orchestrator) AddPainting(p ...*Painting) {
	o.paintings = append(o.paintings, p...)
}

// Portals returns the registered portals.
func (o *Orchestrator) Portals() []*Portal {
	return o.portals
}

// Paintings returns the registered paintings.
func (o *Orchestrator) Paintings() []*Painting {
	return o.paintings
}

// Init initializes every surface against r. Misconfigured surfaces are left
// inert; their errors are joined in the result.
func (o *Orchestrator) Init(r Renderer) error {
	var errs []error
	for _, p := range o.portals {
		if err := p.Init(o.player, r); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range o.paintings {
		if err := p.Init(o.player, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Update runs after movement: portals teleport travellers that crossed,
// then paintings follow the player with their cameras.
func (o *Orchestrator) Update() {
	for _, p := range o.portals {
		p.HandleTravellers()
	}
	for _, p := range o.paintings {
		p.UpdateCamera()
	}
}

// Render fills every view surface for the player's next frame.
func (o *Orchestrator) Render() {
	for _, p := range o.portals {
		p.PreRender()
	}
	for _, p := range o.portals {
		p.Render(o.player)
	}
	for _, p := range o.portals {
		p.PostRender()
	}

	for _, p := range o.paintings {
		p.PreRender()
	}
	for _, p := range o.paintings {
		p.Render()
	}
	for _, p := range o.paintings {
		p.PostRender()
	}
}

// Frame is Update followed by Render.
func (o *Orchestrator) Frame() {
	o.Update()
	o.Render()
}

// Stats sums the counters of every surface.
func (o *Orchestrator) Stats() Stats {
	var s Stats
	for _, p := range o.portals {
		s = s.add(p.stats)
	}
	for _, p := range o.paintings {
		s = s.add(p.stats)
	}
	return s
}

func (s Stats) add(o Stats) Stats {
	return Stats{
		Draws:           s.Draws + o.Draws,
		VisibilitySkips: s.VisibilitySkips + o.VisibilitySkips,
		Truncations:     s.Truncations + o.Truncations,
		Teleports:       s.Teleports + o.Teleports,
	}
}
