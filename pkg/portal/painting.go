package portal

import (
	"math"

	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/render"
)

// Painting is a framed view into the space around its linked painting. Its
// camera stands at a fixed distance in front of (or behind) the linked
// painting, on the same side the player is of this one, and the picture is
// mapped onto this painting's own screen.
type Painting struct {
	Name     string
	Pose     math3d.Pose
	Screen   *Screen
	Settings PaintingSettings

	linked   *Painting
	player   *render.Camera
	renderer Renderer
	cam      *render.Camera
	view     ViewSurface
	ready    bool
	err      error
	stats    Stats
}

// NewPainting creates an unlinked painting with default settings.
func NewPainting(name string, pose math3d.Pose, screen *Screen) *Painting {
	return &Painting{
		Name:     name,
		Pose:     pose,
		Screen:   screen,
		Settings: DefaultPaintingSettings(),
		cam:      render.NewCamera(),
	}
}

// Linked returns the partner painting, or nil.
func (p *Painting) Linked() *Painting {
	return p.linked
}

// Camera returns the observation camera.
func (p *Painting) Camera() *render.Camera {
	return p.cam
}

// View returns the surface shown on the painting's screen.
func (p *Painting) View() *ViewSurface {
	return &p.view
}

// Stats returns the counters accumulated since the last ResetStats.
func (p *Painting) Stats() Stats {
	return p.stats
}

// ResetStats zeroes the counters.
func (p *Painting) ResetStats() {
	p.stats = Stats{}
}

// Ready reports whether Init succeeded.
func (p *Painting) Ready() bool {
	return p.ready
}

// Err returns the error from the last Init, if any.
func (p *Painting) Err() error {
	return p.err
}

// Init checks the painting's configuration. On failure the painting stays
// inert and a *ConfigurationError is returned.
func (p *Painting) Init(player *render.Camera, r Renderer) error {
	p.Settings.validate()
	p.ready = false

	var err error
	switch {
	case p.Screen == nil || p.Screen.Mesh == nil:
		err = ErrNoScreen
	case p.linked == nil:
		err = ErrNoLinkedPortal
	case p.linked.Screen == nil:
		err = ErrNoScreen
	case player == nil:
		err = ErrNoCamera
	case r == nil:
		err = ErrNoRenderer
	}
	if err != nil {
		cerr := configError(p.Name, err)
		p.err = cerr
		Logger().Warn("painting disabled", "painting", p.Name, "err", err)
		return cerr
	}

	p.player = player
	p.renderer = r
	p.err = nil
	p.ready = true

	p.Screen.DisplayMask = true
	p.Screen.View = &p.view
	p.cam.CopyProjection(player)
	return nil
}

// UpdateCamera moves the observation camera for the player's current side.
func (p *Painting) UpdateCamera() {
	if !p.ready {
		return
	}
	linked := p.linked.Pose
	side := float64(SideOf(p.Pose, p.player.Position))

	pos := linked.Position.
		Add(linked.Forward().Scale(p.Settings.ViewingDistance * side)).
		Add(linked.Up().Scale(p.Settings.ViewingHeight))
	target := linked.Position.Add(linked.Up().Scale(p.Settings.ViewingHeight))

	p.cam.SetPosition(pos)
	p.cam.LookAt(target, linked.Up())

	// Seen from behind, the picture would be upside down.
	if p.IsCameraBehindLinked() {
		p.cam.SetOrientation(p.cam.Rotation.Mul(math3d.QuatAxisAngle(math3d.V3(0, 0, 1), math.Pi)))
	}
}

// IsCameraBehindLinked reports whether the camera is on the back side of
// the linked painting.
func (p *Painting) IsCameraBehindLinked() bool {
	toCam := p.cam.Position.Sub(p.linked.Pose.Position).Normalize()
	return toCam.Dot(p.linked.Pose.Forward()) < 0
}

// PreRender hides the linked painting's screen so the camera does not see
// the picture it is about to paint.
func (p *Painting) PreRender() {
	if !p.ready {
		return
	}
	p.linked.Screen.Hidden = true
}

// Render draws the observation view into the painting's view surface.
func (p *Painting) Render() {
	if !p.ready {
		return
	}
	if !p.Screen.Enabled || !render.VisibleFromCamera(p.Screen.Bounds(p.Pose), p.player) {
		p.stats.VisibilitySkips++
		return
	}

	p.createViewSurface()
	p.cam.SetClipPlanes(p.player.Near, p.player.Far)
	fov := p.Settings.FOV
	if fov <= 0 {
		fov = p.player.FOV
	}
	p.cam.SetFOV(fov)

	p.renderer.Render(p.cam, p.view.Target())
	p.view.Swap()
	p.stats.Draws++
}

// PostRender shows the linked painting's screen again.
func (p *Painting) PostRender() {
	if !p.ready {
		return
	}
	p.linked.Screen.Hidden = false
}

// createViewSurface sizes the view to BaseWidth wide with the screen's
// aspect ratio.
func (p *Painting) createViewSurface() {
	aspect := p.Screen.Aspect(p.Pose)
	w := p.Settings.BaseWidth
	h := max(int(math.Round(float64(w)/aspect)), 1)

	if p.view.Ensure(w, h) {
		p.cam.SetAspectRatio(float64(w) / float64(h))
		Logger().Debug("view surface created", "painting", p.Name, "width", w, "height", h)
	}
}
