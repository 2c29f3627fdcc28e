package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/models"
	"github.com/taigrr/portals/pkg/portal"
	"github.com/taigrr/portals/pkg/render"
)

var (
	// ErrUnknownName is returned when a link or scale context names an
	// object that does not exist.
	ErrUnknownName = errors.New("unknown name")

	// ErrDuplicateName is returned when two portals or paintings share a name.
	ErrDuplicateName = errors.New("duplicate name")
)

// Static is scenery that never moves.
type Static struct {
	Name    string
	Mesh    *models.Mesh
	Pose    math3d.Pose
	Colour  render.Color
	Texture *render.Texture
}

// World is a built scene.
type World struct {
	Player    *Player
	Props     []*Prop
	Statics   []*Static
	Portals   []*portal.Portal
	Paintings []*portal.Painting
	Gateways  []*portal.Gateway
	Pairs     []*portal.Pair
	Sensors   []*Sensor

	Orchestrator *portal.Orchestrator
	Renderer     *Renderer

	Light      math3d.Vec3
	Background render.Color
	Floor      float64
	Gravity    float64

	// InitErr joins the configuration errors of surfaces left inert.
	InitErr error
}

// Default view size until the first Resize.
const (
	defaultWidth  = 160
	defaultHeight = 90
)

// Build assembles cfg. Naming mistakes and unloadable assets are errors;
// portals or paintings that cannot render are left inert and reported in
// World.InitErr.
func Build(cfg Config) (*World, error) {
	cam := render.NewCamera()
	cam.SetFOV(radians(cfg.Camera.FOV))
	cam.SetClipPlanes(cfg.Camera.Near, cfg.Camera.Far)

	w := &World{
		Light:      cfg.Light.Vec3(),
		Background: cfg.Background.RGB(),
		Floor:      cfg.Floor,
		Gravity:    cfg.Gravity,
	}
	w.Player = NewPlayer(cfg.Player.Position.Vec3(), radians(cfg.Player.Yaw), cfg.Player, cam)
	w.Orchestrator = portal.NewOrchestrator(cam)

	if err := w.buildPortals(cfg); err != nil {
		return nil, err
	}
	if err := w.buildPaintings(cfg); err != nil {
		return nil, err
	}
	if err := w.buildPairs(cfg); err != nil {
		return nil, err
	}
	if err := w.buildProps(cfg); err != nil {
		return nil, err
	}
	if err := w.buildStatics(cfg); err != nil {
		return nil, err
	}

	w.Renderer = NewRenderer(w, defaultWidth, defaultHeight)
	w.InitErr = w.Orchestrator.Init(w.Renderer)

	portal.Logger().Info("scene built",
		"portals", len(w.Portals),
		"paintings", len(w.Paintings),
		"pairs", len(w.Pairs),
		"props", len(w.Props),
		"statics", len(w.Statics),
	)
	return w, nil
}

func (w *World) buildPortals(cfg Config) error {
	byName := make(map[string]*portal.Portal, len(cfg.Portals))
	for _, pc := range cfg.Portals {
		if _, ok := byName[pc.Name]; ok {
			return fmt.Errorf("add portal %q: %w", pc.Name, ErrDuplicateName)
		}
		p := portal.New(pc.Name, pc.Pose(), portal.NewWindowScreen(pc.Width, pc.Height))
		p.Settings = pc.settings()
		byName[pc.Name] = p
		w.addPortal(p, pc.TriggerDepth)
	}

	for _, pc := range cfg.Portals {
		if pc.Link == "" {
			continue
		}
		a, b := byName[pc.Name], byName[pc.Link]
		if b == nil {
			return fmt.Errorf("link portal %s to %q: %w", pc.Name, pc.Link, ErrUnknownName)
		}
		if a.Linked() == b {
			continue
		}
		if err := portal.Link(a, b); err != nil {
			return fmt.Errorf("link portal %s to %s: %w", pc.Name, pc.Link, err)
		}
	}

	switch len(cfg.ScaleContext) {
	case 0:
	case 2:
		a, b := byName[cfg.ScaleContext[0]], byName[cfg.ScaleContext[1]]
		if a == nil || b == nil {
			return fmt.Errorf("set scale context %v: %w", cfg.ScaleContext, ErrUnknownName)
		}
		ctx := portal.NewScaleContext(a, b)
		a.Scale, b.Scale = ctx, ctx
	default:
		return fmt.Errorf("set scale context %v: want two portal names", cfg.ScaleContext)
	}
	return nil
}

func (w *World) addPortal(p *portal.Portal, triggerDepth float64) {
	w.Portals = append(w.Portals, p)
	w.Sensors = append(w.Sensors, NewSensor(p, triggerDepth))
	w.Orchestrator.AddPortal(p)
}

func (w *World) buildPaintings(cfg Config) error {
	byName := make(map[string]*portal.Painting, len(cfg.Paintings))
	for _, pc := range cfg.Paintings {
		if _, ok := byName[pc.Name]; ok {
			return fmt.Errorf("add painting %q: %w", pc.Name, ErrDuplicateName)
		}
		p := portal.NewPainting(pc.Name, pc.Pose(), portal.NewCanvasScreen(pc.Width, pc.Height))
		p.Settings = portal.PaintingSettings{
			ViewingDistance: pc.ViewingDistance,
			ViewingHeight:   pc.ViewingHeight,
			BaseWidth:       pc.BaseWidth,
			FOV:             radians(pc.FOV),
		}
		byName[pc.Name] = p
		w.Paintings = append(w.Paintings, p)
		w.Orchestrator.AddPainting(p)
	}

	for _, pc := range cfg.Paintings {
		if pc.Link == "" {
			continue
		}
		a, b := byName[pc.Name], byName[pc.Link]
		if b == nil {
			return fmt.Errorf("link painting %s to %q: %w", pc.Name, pc.Link, ErrUnknownName)
		}
		if a.Linked() == b {
			continue
		}
		if err := portal.LinkPaintings(a, b); err != nil {
			return fmt.Errorf("link painting %s to %s: %w", pc.Name, pc.Link, err)
		}
	}
	return nil
}

// buildPairs creates, for each end of a pair, a portal and a painting of the
// same size standing on the gateway's base.
func (w *World) buildPairs(cfg Config) error {
	for _, pc := range cfg.Pairs {
		var ends [2]*portal.Gateway
		for i, gc := range []GatewayConfig{pc.A, pc.B} {
			base := gc.Pose()
			centre := base
			centre.Position = base.Position.Add(base.Up().Scale(pc.Height / 2 * base.UniformScale()))

			p := portal.New(gc.Name, centre, portal.NewWindowScreen(pc.Width, pc.Height))
			p.Settings.RecursionLimit = pc.RecursionLimit
			w.addPortal(p, pc.TriggerDepth)

			painting := portal.NewPainting(gc.Name+".painting", centre, portal.NewCanvasScreen(pc.Width, pc.Height))
			painting.Settings.ViewingDistance = pc.ViewingDistance
			painting.Settings.ViewingHeight = 0
			painting.Settings.BaseWidth = pc.BaseWidth
			w.Paintings = append(w.Paintings, painting)
			w.Orchestrator.AddPainting(painting)

			g := portal.NewGateway(gc.Name, base, p, painting)
			g.Settings = pc.settings()
			ends[i] = g
			w.Gateways = append(w.Gateways, g)
		}

		pair, err := portal.NewPair(ends[0], ends[1], w.Player)
		if err != nil {
			return fmt.Errorf("pair %s and %s: %w", pc.A.Name, pc.B.Name, err)
		}
		w.Pairs = append(w.Pairs, pair)
	}
	return nil
}

func (w *World) buildProps(cfg Config) error {
	for _, pc := range cfg.Props {
		var mesh *models.Mesh
		if pc.Mesh != "" {
			m, err := loadFitted(cfg.Path(pc.Mesh), maxComponent(pc.Size.Vec3()))
			if err != nil {
				return fmt.Errorf("load prop %s: %w", pc.Name, err)
			}
			mesh = m
		} else {
			mesh = models.NewBox(pc.Name, pc.Size.Vec3())
		}

		body := portal.NewBody(pc.Name, pc.Pose(), portal.NewGraphics(mesh, pc.Colour.RGB()))
		body.Velocity = pc.Velocity.Vec3()
		w.Props = append(w.Props, &Prop{Body: body})
	}
	return nil
}

func (w *World) buildStatics(cfg Config) error {
	for _, sc := range cfg.Statics {
		s := &Static{Name: sc.Name, Pose: sc.Pose(), Colour: sc.Colour.RGB()}

		if sc.Mesh != "" {
			mesh, img, err := models.LoadGLBWithTexture(cfg.Path(sc.Mesh))
			if err != nil {
				return fmt.Errorf("load static %s: %w", sc.Name, err)
			}
			fit(mesh, sc.Fit)
			s.Mesh = mesh
			if img != nil {
				s.Texture = render.TextureFromImage(img)
			}
		} else {
			s.Mesh = models.NewBox(sc.Name, sc.Size.Vec3())
		}

		if sc.Texture != "" {
			tex, err := render.LoadTexture(cfg.Path(sc.Texture))
			if err != nil {
				return fmt.Errorf("load static %s: %w", sc.Name, err)
			}
			s.Texture = tex
		}
		w.Statics = append(w.Statics, s)
	}
	return nil
}

// loadFitted loads a .glb mesh centred on the origin with its largest side
// scaled to size.
func loadFitted(path string, size float64) (*models.Mesh, error) {
	mesh, err := models.LoadGLB(path)
	if err != nil {
		return nil, err
	}
	fit(mesh, size)
	return mesh, nil
}

// fit centres mesh on the origin and scales its largest side to size.
func fit(mesh *models.Mesh, size float64) {
	largest := maxComponent(mesh.Size())
	if largest == 0 {
		return
	}
	s := size / largest
	mesh.Transform(math3d.ScaleUniform(s).Mul(math3d.Translate(mesh.Center().Negate())))
}

func maxComponent(v math3d.Vec3) float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}

// Travellers lists everything that can pass through a portal, player first.
func (w *World) Travellers() []portal.Traveller {
	ts := make([]portal.Traveller, 0, len(w.Props)+1)
	ts = append(ts, w.Player)
	for _, p := range w.Props {
		ts = append(ts, p)
	}
	return ts
}

// Resize sets the player's view resolution.
func (w *World) Resize(width, height int) {
	w.Renderer.SetSize(width, height)
	w.Player.Camera.SetAspectRatio(float64(width) / float64(height))
}

// Step advances the world by dt seconds: movement, trigger volumes,
// painting pairs, then teleports and painting cameras.
func (w *World) Step(dt float64, in Input) {
	w.Player.Step(dt, in, w.Floor, w.Gravity)
	for _, p := range w.Props {
		p.Step(dt, w.Floor, w.Gravity)
	}

	travellers := w.Travellers()
	for _, s := range w.Sensors {
		s.Step(travellers)
	}
	for _, p := range w.Pairs {
		p.Update(dt)
	}
	w.Orchestrator.Update()
}

// Draw renders every portal and painting view, then the player's view into
// fb. fb must match the renderer size.
func (w *World) Draw(fb *render.Framebuffer) {
	w.Orchestrator.Render()
	w.Renderer.Render(w.Player.Camera, fb)
}

// Stats sums the counters of every portal and painting.
func (w *World) Stats() portal.Stats {
	return w.Orchestrator.Stats()
}
