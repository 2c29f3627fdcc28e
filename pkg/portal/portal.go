// Package portal implements linked portal surfaces. Each portal renders the
// space behind its partner onto the partner's screen, recursively when the
// two can see each other, and teleports travellers that cross its plane
// into the partner's frame.
//
// A frame runs in strict phases across all surfaces, driven by an
// Orchestrator: traveller handling, then PreRender on every portal, Render
// on every portal, PostRender on every portal, and the same three phases
// for paintings.
package portal

import (
	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/render"
)

// sliceOffset keeps a sliced traveller's cut just off the portal plane
// while a virtual camera renders.
const sliceOffset = 0.1

// Observer is told about every teleport.
type Observer interface {
	OnTeleport(from, to *Portal, t Traveller)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(from, to *Portal, t Traveller)

func (f ObserverFunc) OnTeleport(from, to *Portal, t Traveller) {
	f(from, to, t)
}

// Stats counts per-portal events. Skips and truncations are the normal fast
// paths, not errors.
type Stats struct {
	Draws           int // view draws issued
	VisibilitySkips int // renders skipped because the linked screen was not visible
	Truncations     int // render chains cut short by the recursion limit
	Teleports       int
}

// Portal is one side of a portal pair.
type Portal struct {
	Name     string
	Pose     math3d.Pose
	Screen   *Screen
	Settings Settings

	// Scale decides how travellers are resized. Nil uses the ratio of the
	// two portal scales.
	Scale *ScaleContext

	Observer Observer

	linked     *Portal
	player     *render.Camera
	renderer   Renderer
	cam        *render.Camera
	view       ViewSurface
	travellers *Registry
	chain      []math3d.Pose
	ready      bool
	err        error
	stats      Stats
}

// New creates an unlinked portal with default settings.
func New(name string, pose math3d.Pose, screen *Screen) *Portal {
	return &Portal{
		Name:       name,
		Pose:       pose,
		Screen:     screen,
		Settings:   DefaultSettings(),
		cam:        render.NewCamera(),
		travellers: NewRegistry(),
	}
}

// Linked returns the partner portal, or nil.
func (p *Portal) Linked() *Portal {
	return p.linked
}

// Camera returns the virtual camera, posed at the last rendered chain level.
func (p *Portal) Camera() *render.Camera {
	return p.cam
}

// View returns the surface the virtual camera renders into. It is shown on
// the linked portal's screen.
func (p *Portal) View() *ViewSurface {
	return &p.view
}

// Travellers returns the registry of travellers in the threshold.
func (p *Portal) Travellers() *Registry {
	return p.travellers
}

// Stats returns the counters accumulated since the last ResetStats.
func (p *Portal) Stats() Stats {
	return p.stats
}

// ResetStats zeroes the counters.
func (p *Portal) ResetStats() {
	p.stats = Stats{}
}

// Ready reports whether Init succeeded.
func (p *Portal) Ready() bool {
	return p.ready
}

// Err returns the error from the last Init, if any.
func (p *Portal) Err() error {
	return p.err
}

// Init checks the portal's configuration and prepares it for rendering.
// On failure it returns a *ConfigurationError and leaves the portal inert:
// every per-frame call becomes a no-op.
func (p *Portal) Init(player *render.Camera, r Renderer) error {
	p.Settings.Validate()
	p.ready = false

	var err error
	switch {
	case p.linked == nil:
		err = ErrNoLinkedPortal
	case p.Screen == nil || p.Screen.Mesh == nil:
		err = ErrNoScreen
	case p.linked.Screen == nil || p.linked.Screen.Mesh == nil:
		err = ErrNoScreen
	case player == nil:
		err = ErrNoCamera
	case r == nil:
		err = ErrNoRenderer
	}
	if err != nil {
		cerr := configError(p.Name, err)
		p.err = cerr
		Logger().Warn("portal disabled", "portal", p.Name, "err", err)
		return cerr
	}

	p.player = player
	p.renderer = r
	p.err = nil
	p.ready = true

	p.Screen.DisplayMask = true
	p.linked.Screen.View = &p.view
	p.ProtectScreenFromClipping(player.Position)
	return nil
}

// SideOf returns which side of the portal plane pos is on: +1 in front
// (along Pose.Forward) and -1 behind.
func (p *Portal) SideOf(pos math3d.Vec3) int {
	return SideOf(p.Pose, pos)
}

// SameSideOf reports whether a and b are on the same side of the portal.
func (p *Portal) SameSideOf(a, b math3d.Vec3) bool {
	return p.SideOf(a) == p.SideOf(b)
}

// HandleTravellers teleports every tracked traveller that crossed the
// portal plane since the previous frame and keeps the clones of the others
// in step.
func (p *Portal) HandleTravellers() {
	if !p.ready {
		return
	}
	for _, t := range p.travellers.Travellers() {
		pose := t.Pose()
		side := p.SideOf(pose.Position)

		if side != p.travellers.PreviousSide(t) {
			p.teleport(t, pose)
			continue
		}

		if g := t.Graphics(); g != nil {
			g.ClonePose = p.bridgePose(pose)
		}
		p.travellers.SetPreviousSide(t, side)
	}
}

// bridgePose maps pose through this portal and out of the linked one,
// scaled by the scale context.
func (p *Portal) bridgePose(pose math3d.Pose) math3d.Pose {
	target := Bridge(p.Pose, p.linked.Pose, pose)
	target.Scale = pose.Scale.Scale(p.Scale.Factor(p, p.linked))
	return target
}

func (p *Portal) teleport(t Traveller, pose math3d.Pose) {
	target := p.bridgePose(pose)
	t.Teleport(p.Pose, p.linked.Pose, target)

	// The clone now stands where the traveller was, on the side it left.
	if g := t.Graphics(); g != nil {
		g.ClonePose = pose
	}

	p.travellers.Remove(t)
	p.linked.OnTravellerEnter(t)
	p.stats.Teleports++

	Logger().Debug("teleport",
		"from", p.Name,
		"to", p.linked.Name,
		"traveller", t,
		"scale", target.UniformScale(),
	)
	if p.Observer != nil {
		p.Observer.OnTeleport(p, p.linked, t)
	}
}

// OnTravellerEnter starts tracking t. A traveller already tracked keeps its
// clone and its recorded side.
func (p *Portal) OnTravellerEnter(t Traveller) {
	if p.travellers.Contains(t) {
		return
	}
	side := p.SideOf(t.Pose().Position)
	if g := t.Graphics(); g != nil {
		g.EnterThreshold()
	}
	p.travellers.Add(t, side)
	Logger().Debug("threshold enter", "portal", p.Name, "traveller", t)
}

// OnTriggerEnter is called when t starts overlapping the detection volume.
func (p *Portal) OnTriggerEnter(t Traveller) {
	p.OnTravellerEnter(t)
}

// OnTriggerExit is called when t stops overlapping the detection volume.
// The clone is released.
func (p *Portal) OnTriggerExit(t Traveller) {
	if !p.travellers.Remove(t) {
		return
	}
	if g := t.Graphics(); g != nil {
		g.ExitThreshold()
	}
	Logger().Debug("threshold exit", "portal", p.Name, "traveller", t)
}

// PreRender refreshes the slice planes of tracked travellers and masks the
// linked screen, whose view is about to be redrawn.
func (p *Portal) PreRender() {
	if !p.ready {
		return
	}
	for _, t := range p.travellers.Travellers() {
		p.UpdateSliceParams(t)
	}
	p.linked.Screen.DisplayMask = false
}

// Render draws the view through the linked portal's screen as seen by
// player. It does nothing when the linked screen is not in view.
//
// The chain of virtual camera poses is built outward from the player, one
// pass through the portal pair per level, and stops at the first level
// from which the linked screen no longer shows through this portal's
// screen. That is an approximation of occlusion, not an exact test. The
// chain is drawn innermost first so each level shows the one behind it.
func (p *Portal) Render(player *render.Camera) {
	if !p.ready {
		return
	}
	if player == nil {
		player = p.player
	}

	linked := p.linked
	linkedBounds := linked.Screen.Bounds(linked.Pose)
	if !linked.Screen.Enabled || !render.VisibleFromCamera(linkedBounds, player) {
		p.stats.VisibilitySkips++
		return
	}

	p.createViewSurface()
	p.buildChain(player, linkedBounds)

	p.Screen.ShadowsOnly = true
	linked.Screen.DisplayMask = false
	for i := len(p.chain) - 1; i >= 0; i-- {
		p.placeCamera(player, p.chain[i])
		p.setNearClipPlane()
		p.handleClipping()

		p.renderer.Render(p.cam, p.view.Target())
		p.view.Swap()
		p.stats.Draws++

		// Deeper levels are on the view now.
		linked.Screen.DisplayMask = true
	}
	p.Screen.ShadowsOnly = false
}

// PostRender restores the linked screen and resizes this portal's screen
// for the player's viewpoint.
func (p *Portal) PostRender() {
	if !p.ready {
		return
	}
	p.linked.Screen.DisplayMask = true
	for _, t := range p.travellers.Travellers() {
		p.UpdateSliceParams(t)
		if g := t.Graphics(); g != nil {
			g.SetSliceOffsetDst(0, false)
			g.SetSliceOffsetDst(0, true)
		}
	}
	p.ProtectScreenFromClipping(p.player.Position)
}

func (p *Portal) createViewSurface() {
	w, h := p.renderer.Size()
	if p.view.Ensure(w, h) {
		Logger().Debug("view surface created", "portal", p.Name, "width", w, "height", h)
	}
}

// buildChain fills p.chain with up to RecursionLimit virtual camera poses.
func (p *Portal) buildChain(player *render.Camera, linkedBounds render.Bounds) {
	limit := p.Settings.RecursionLimit
	own := p.Screen.Bounds(p.Pose)
	bridge := BridgeMatrix(p.linked.Pose, p.Pose)

	p.chain = p.chain[:0]
	m := player.Pose().Matrix()
	for i := range limit {
		if i > 0 && !p.seesLinkedFrom(player, p.chain[i-1], own, linkedBounds) {
			return
		}
		m = bridge.Mul(m)
		p.chain = append(p.chain, math3d.PoseFromMatrix(m))
	}
	if p.seesLinkedFrom(player, p.chain[limit-1], own, linkedBounds) {
		p.stats.Truncations++
	}
}

// seesLinkedFrom reports whether the linked screen shows through this
// portal's screen from a virtual camera at pose.
func (p *Portal) seesLinkedFrom(player *render.Camera, pose math3d.Pose, own, linked render.Bounds) bool {
	p.placeCamera(player, pose)
	return render.BoundsOverlap(own, linked, p.cam)
}

// placeCamera poses the virtual camera and compensates its field of view for
// the scale accumulated along the chain. Cameras themselves are never scaled.
func (p *Portal) placeCamera(player *render.Camera, pose math3d.Pose) {
	p.cam.SetPose(pose.Position, pose.Rotation)
	p.cam.CopyProjection(player)
	p.cam.SetFOV(CompensatedFOV(player.FOV, pose.UniformScale(), p.Settings.ProjectionScale))
}

// setNearClipPlane aligns the virtual camera's near plane with the portal
// surface so nothing between the camera and the portal is drawn.
func (p *Portal) setNearClipPlane() {
	plane, ok := ObliqueClipPlane(p.cam, p.Pose, p.Settings.NearClipOffset, p.Settings.NearClipLimit)
	if !ok {
		return
	}
	p.cam.SetProjectionMatrix(p.cam.CalculateObliqueMatrix(plane))
}

// handleClipping offsets the slice planes of travellers in both portals so
// the parts seen by the virtual camera are cut at the right place.
func (p *Portal) handleClipping() {
	camPos := p.cam.Position
	thickness := p.linked.protectScreen(camPos, p.player)

	for _, t := range p.travellers.Travellers() {
		g := t.Graphics()
		if g == nil {
			continue
		}
		pos := t.Pose().Position
		if p.SameSideOf(pos, camPos) {
			g.SetSliceOffsetDst(sliceOffset, false)
		} else {
			g.SetSliceOffsetDst(-sliceOffset, false)
		}

		cloneSide := -p.SideOf(pos)
		if p.linked.SideOf(camPos) == cloneSide {
			g.SetSliceOffsetDst(thickness, true)
		} else {
			g.SetSliceOffsetDst(-thickness, true)
		}
	}

	for _, t := range p.linked.travellers.Travellers() {
		g := t.Graphics()
		if g == nil {
			continue
		}
		pos := t.Pose().Position
		if p.linked.SideOf(pos) != p.SideOf(camPos) {
			g.SetSliceOffsetDst(sliceOffset, true)
		} else {
			g.SetSliceOffsetDst(-sliceOffset, true)
		}

		if p.linked.SameSideOf(pos, camPos) {
			g.SetSliceOffsetDst(thickness, false)
		} else {
			g.SetSliceOffsetDst(-thickness, false)
		}
	}
}

// UpdateSliceParams points the slice plane of t's mesh at this portal,
// cutting away whatever has passed through, and the clone's at the linked
// portal, cutting away whatever has not.
func (p *Portal) UpdateSliceParams(t Traveller) {
	g := t.Graphics()
	if g == nil {
		return
	}
	side := float64(p.SideOf(t.Pose().Position))
	g.SetSlice(
		p.Pose.Position, p.Pose.Forward().Scale(-side),
		p.linked.Pose.Position, p.linked.Pose.Forward().Scale(side),
	)
}

// ProtectScreenFromClipping gives the screen enough depth that the player
// camera's near plane cannot clip it, pushed away from viewPoint, and
// returns that depth.
func (p *Portal) ProtectScreenFromClipping(viewPoint math3d.Vec3) float64 {
	return p.protectScreen(viewPoint, p.player)
}

func (p *Portal) protectScreen(viewPoint math3d.Vec3, player *render.Camera) float64 {
	if p.Screen == nil || player == nil {
		return 0
	}
	thickness := ScreenThickness(player)
	facing := -1.0
	if p.Pose.Forward().Dot(p.Pose.Position.Sub(viewPoint)) > 0 {
		facing = 1
	}
	p.Screen.setDepth(thickness, facing)
	return thickness
}
