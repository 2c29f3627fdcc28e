package scene

import (
	"github.com/taigrr/portals/pkg/portal"
	"github.com/taigrr/portals/pkg/render"
)

// Gizmo colours.
var (
	gizmoFrame   = render.ColorCyan
	gizmoTrigger = render.ColorYellow
	gizmoVolume  = render.ColorMagenta
	gizmoClone   = render.ColorRed
	gizmoGrid    = render.RGB(60, 60, 70)
)

// Renderer draws a World with the software rasterizer. Portals and
// paintings use it to fill their view surfaces; the world uses it for the
// player's view.
type Renderer struct {
	// Gizmos draws portal frames, trigger boxes and detection volumes in
	// the player's view.
	Gizmos bool

	world         *World
	rast          *render.Rasterizer
	width, height int
}

// NewRenderer creates a renderer for w with a width x height player view.
func NewRenderer(w *World, width, height int) *Renderer {
	return &Renderer{
		world:  w,
		rast:   render.NewRasterizer(w.Player.Camera, render.NewFramebuffer(width, height)),
		width:  width,
		height: height,
	}
}

// Size is the resolution of the player's view.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// SetSize changes the resolution of the player's view. Portal views follow
// on their next render.
func (r *Renderer) SetSize(width, height int) {
	r.width, r.height = width, height
}

// CullingStats returns the rasterizer counters of the last Render.
func (r *Renderer) CullingStats() render.CullingStats {
	return r.rast.CullingStats
}

// Render clears target and draws the world as seen by cam.
func (r *Renderer) Render(cam *render.Camera, target *render.Framebuffer) {
	w := r.world
	r.rast.SetCamera(cam)
	r.rast.SetTarget(target)
	r.rast.ClearDepth()
	r.rast.ResetCullingStats()
	target.Clear(w.Background)

	for _, s := range w.Statics {
		m := s.Pose.Matrix()
		if s.Texture != nil {
			r.rast.DrawMeshTextured(s.Mesh, m, s.Texture, w.Light)
		} else {
			r.rast.DrawMesh(s.Mesh, m, s.Colour, w.Light)
		}
	}

	playerView := cam == w.Player.Camera
	for _, t := range w.Travellers() {
		if playerView && t == portal.Traveller(w.Player) {
			continue
		}
		r.drawTraveller(t)
	}

	r.rast.DisableBackfaceCulling = true
	for _, p := range w.Portals {
		r.drawScreen(p.Screen, p)
	}
	for _, p := range w.Paintings {
		r.drawCanvas(p)
	}
	r.rast.DisableBackfaceCulling = false

	if playerView && r.Gizmos {
		r.drawGizmos(cam, target)
	}
}

func (r *Renderer) drawTraveller(t portal.Traveller) {
	g := t.Graphics()
	if g == nil || g.Mesh == nil {
		return
	}
	r.rast.DrawMesh(g.Mesh, t.Pose().Matrix(), g.Colour, r.world.Light)
	if g.Clone != nil {
		r.rast.DrawMesh(g.Clone, g.ClonePose.Matrix(), g.Colour, r.world.Light)
	}
}

// drawScreen draws a portal's screen showing its view, or its fill while
// the display is masked.
func (r *Renderer) drawScreen(s *portal.Screen, p *portal.Portal) {
	if s == nil || !s.Visible() {
		return
	}
	var view render.Sampler
	if s.DisplayMask && s.View != nil {
		view = s.View
	}
	r.rast.DrawScreen(s.Mesh, s.Matrix(p.Pose), view, s.Fill)
}

// drawCanvas draws a painting's picture, or its fill while masked.
func (r *Renderer) drawCanvas(p *portal.Painting) {
	s := p.Screen
	if s == nil || !s.Visible() {
		return
	}
	m := s.Matrix(p.Pose)
	if s.DisplayMask && s.View != nil {
		r.rast.DrawCanvas(s.Mesh, m, s.View)
		return
	}
	r.rast.DrawMesh(s.Mesh, m, s.Fill, r.world.Light)
}

func (r *Renderer) drawGizmos(cam *render.Camera, target *render.Framebuffer) {
	w := r.world
	wf := render.NewWireframe(cam, target)
	wf.DrawGrid(40, 2, gizmoGrid)

	for _, p := range w.Portals {
		if p.Screen != nil && p.Screen.Enabled {
			wf.DrawFrame(p.Pose.Matrix(), p.Screen.Width, p.Screen.Height, gizmoFrame)
		}
	}
	for _, s := range w.Sensors {
		if s.Active() {
			wf.DrawBox(s.Bounds(), gizmoTrigger)
		}
	}
	for _, g := range w.Gateways {
		st := g.Settings
		wf.DrawOctahedron(g.Pose.Matrix(), st.PortalWidth, st.PortalHeight, st.ViewingDistance, gizmoVolume)
	}
	for _, t := range w.Travellers() {
		if g := t.Graphics(); g != nil && g.Clone != nil {
			wf.DrawPoint(g.ClonePose.Position, 0.3, gizmoClone)
		}
	}
}
