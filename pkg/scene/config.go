// Package scene loads portal scenes from TOML files and assembles them into
// a World that can be stepped and drawn.
package scene

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/portal"
	"github.com/taigrr/portals/pkg/render"
)

// Vec is a TOML triple.
type Vec [3]float64

// Vec3 converts v.
func (v Vec) Vec3() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// Colour is an RGB triple in 0-255.
type Colour [3]uint8

// RGB converts c.
func (c Colour) RGB() render.Color {
	return render.RGB(c[0], c[1], c[2])
}

// Transform places an object. Rotation is pitch, yaw and roll in degrees.
// A zero Scale means 1.
type Transform struct {
	Position Vec     `toml:"position"`
	Rotation Vec     `toml:"rotation"`
	Scale    float64 `toml:"scale"`
}

// Pose converts t.
func (t Transform) Pose() math3d.Pose {
	pose := math3d.NewPose(t.Position.Vec3(), math3d.QuatFromEuler(
		radians(t.Rotation[0]),
		radians(t.Rotation[1]),
		radians(t.Rotation[2]),
	))
	if t.Scale != 0 {
		pose.Scale = math3d.V3(t.Scale, t.Scale, t.Scale)
	}
	return pose
}

// Config describes a scene.
type Config struct {
	Background Colour  `toml:"background"`
	Light      Vec     `toml:"light"`
	Floor      float64 `toml:"floor"`
	Gravity    float64 `toml:"gravity"`

	Camera CameraConfig `toml:"camera"`
	Player PlayerConfig `toml:"player"`

	Portals []PortalConfig `toml:"portal"`

	// ScaleContext names the normal-size and the resized portal of a pair
	// whose travellers change size.
	ScaleContext []string `toml:"scale_context"`

	Paintings []PaintingConfig `toml:"painting"`
	Pairs     []PairConfig     `toml:"pair"`
	Props     []PropConfig     `toml:"prop"`
	Statics   []StaticConfig   `toml:"static"`

	// dir resolves relative asset paths.
	dir string
}

// CameraConfig is the player camera. FOV is in degrees.
type CameraConfig struct {
	FOV  float64 `toml:"fov"`
	Near float64 `toml:"near"`
	Far  float64 `toml:"far"`
}

// PlayerConfig places the player. Yaw is in degrees.
type PlayerConfig struct {
	Position  Vec     `toml:"position"`
	Yaw       float64 `toml:"yaw"`
	EyeHeight float64 `toml:"eye_height"`
	Speed     float64 `toml:"speed"`
	Jump      float64 `toml:"jump"`
	Colour    Colour  `toml:"colour"`
}

// PortalConfig is one portal. Link names its partner; either side may name
// the other.
type PortalConfig struct {
	Transform
	Name            string  `toml:"name"`
	Link            string  `toml:"link"`
	Width           float64 `toml:"width"`
	Height          float64 `toml:"height"`
	RecursionLimit  int     `toml:"recursion_limit"`
	NearClipOffset  float64 `toml:"near_clip_offset"`
	NearClipLimit   float64 `toml:"near_clip_limit"`
	ProjectionScale float64 `toml:"projection_scale"`
	TriggerDepth    float64 `toml:"trigger_depth"`
}

// PaintingConfig is one painting. FOV is in degrees; 0 follows the player.
type PaintingConfig struct {
	Transform
	Name            string  `toml:"name"`
	Link            string  `toml:"link"`
	Width           float64 `toml:"width"`
	Height          float64 `toml:"height"`
	ViewingDistance float64 `toml:"viewing_distance"`
	ViewingHeight   float64 `toml:"viewing_height"`
	BaseWidth       int     `toml:"base_width"`
	FOV             float64 `toml:"fov"`
}

// GatewayConfig places one end of a pair by the base of its frame.
type GatewayConfig struct {
	Transform
	Name string `toml:"name"`
}

// PairConfig is a painting pair that opens into a portal pair. Durations
// are in seconds and PaintingFOV in degrees.
type PairConfig struct {
	A GatewayConfig `toml:"a"`
	B GatewayConfig `toml:"b"`

	Width           float64 `toml:"width"`
	Height          float64 `toml:"height"`
	ViewingDistance float64 `toml:"viewing_distance"`
	Transition      float64 `toml:"transition"`
	PushDistance    float64 `toml:"push_distance"`
	Push            float64 `toml:"push"`
	PaintingFOV     float64 `toml:"painting_fov"`
	BaseWidth       int     `toml:"base_width"`
	RecursionLimit  int     `toml:"recursion_limit"`
	TriggerDepth    float64 `toml:"trigger_depth"`
}

// PropConfig is a box (or mesh) that slides and falls through portals.
type PropConfig struct {
	Transform
	Name     string `toml:"name"`
	Size     Vec    `toml:"size"`
	Colour   Colour `toml:"colour"`
	Velocity Vec    `toml:"velocity"`
	Mesh     string `toml:"mesh"`
}

// StaticConfig is scenery: a box, or a .glb mesh centred on the position
// and scaled so its largest side is Fit.
type StaticConfig struct {
	Transform
	Name    string  `toml:"name"`
	Size    Vec     `toml:"size"`
	Colour  Colour  `toml:"colour"`
	Mesh    string  `toml:"mesh"`
	Texture string  `toml:"texture"`
	Fit     float64 `toml:"fit"`
}

//go:embed default.toml
var defaultScene []byte

// DefaultConfig returns the built-in demo scene: a portal pair that changes
// the size of travellers, a pair of paintings, a painting pair that opens
// into portals and a few props.
func DefaultConfig() Config {
	cfg, err := Parse(defaultScene)
	if err != nil {
		panic(fmt.Sprintf("scene: built-in scene: %v", err))
	}
	return cfg
}

// Load reads a scene file. Relative asset paths are resolved against the
// file's directory.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	cfg, err := Read(bufio.NewReader(f))
	if err != nil {
		return Config{}, fmt.Errorf("parse scene %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes a scene from TOML text.
func Parse(data []byte) (Config, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes a scene from r. Unknown keys are an error; missing values
// take their defaults.
func Read(r io.Reader) (Config, error) {
	var cfg Config
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Path resolves an asset path from the scene.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

var (
	defaultBackground = Colour{20, 24, 32}
	defaultLight      = Vec{0.4, 1, 0.6}
	defaultColour     = Colour{200, 200, 200}
)

func (c *Config) applyDefaults() {
	if c.Background == (Colour{}) {
		c.Background = defaultBackground
	}
	if c.Light == (Vec{}) {
		c.Light = defaultLight
	}
	if c.Gravity == 0 {
		c.Gravity = 9.8
	}

	if c.Camera.FOV == 0 {
		c.Camera.FOV = 60
	}
	if c.Camera.Near == 0 {
		c.Camera.Near = 0.1
	}
	if c.Camera.Far == 0 {
		c.Camera.Far = 200
	}

	p := &c.Player
	if p.EyeHeight == 0 {
		p.EyeHeight = 1.6
	}
	if p.Speed == 0 {
		p.Speed = 4
	}
	if p.Jump == 0 {
		p.Jump = 5
	}
	if p.Colour == (Colour{}) {
		p.Colour = Colour{230, 180, 60}
	}

	defaults := portal.DefaultSettings()
	for i := range c.Portals {
		pc := &c.Portals[i]
		if pc.Width == 0 {
			pc.Width = 2
		}
		if pc.Height == 0 {
			pc.Height = 3
		}
		if pc.RecursionLimit == 0 {
			pc.RecursionLimit = defaults.RecursionLimit
		}
		if pc.NearClipOffset == 0 {
			pc.NearClipOffset = defaults.NearClipOffset
		}
		if pc.NearClipLimit == 0 {
			pc.NearClipLimit = defaults.NearClipLimit
		}
		if pc.ProjectionScale == 0 {
			pc.ProjectionScale = defaults.ProjectionScale
		}
		if pc.TriggerDepth == 0 {
			pc.TriggerDepth = 1
		}
	}

	paintingDefaults := portal.DefaultPaintingSettings()
	for i := range c.Paintings {
		pc := &c.Paintings[i]
		if pc.Width == 0 {
			pc.Width = 2
		}
		if pc.Height == 0 {
			pc.Height = 1.5
		}
		if pc.ViewingDistance == 0 {
			pc.ViewingDistance = paintingDefaults.ViewingDistance
		}
		if pc.BaseWidth == 0 {
			pc.BaseWidth = 160
		}
	}

	pairDefaults := portal.DefaultPairSettings()
	for i := range c.Pairs {
		pc := &c.Pairs[i]
		if pc.Width == 0 {
			pc.Width = pairDefaults.PortalWidth
		}
		if pc.Height == 0 {
			pc.Height = pairDefaults.PortalHeight
		}
		if pc.ViewingDistance == 0 {
			pc.ViewingDistance = pairDefaults.ViewingDistance
		}
		if pc.Transition == 0 {
			pc.Transition = pairDefaults.TransitionDuration.Seconds()
		}
		if pc.Push == 0 {
			pc.Push = pairDefaults.PushDuration.Seconds()
		}
		if pc.PaintingFOV == 0 {
			pc.PaintingFOV = degrees(pairDefaults.PaintingFOV)
		}
		if pc.BaseWidth == 0 {
			pc.BaseWidth = 160
		}
		if pc.RecursionLimit == 0 {
			pc.RecursionLimit = defaults.RecursionLimit
		}
		if pc.TriggerDepth == 0 {
			pc.TriggerDepth = 1
		}
		if pc.A.Name == "" {
			pc.A.Name = fmt.Sprintf("pair%d.a", i)
		}
		if pc.B.Name == "" {
			pc.B.Name = fmt.Sprintf("pair%d.b", i)
		}
	}

	for i := range c.Props {
		pc := &c.Props[i]
		if pc.Size == (Vec{}) {
			pc.Size = Vec{0.5, 0.5, 0.5}
		}
		if pc.Colour == (Colour{}) {
			pc.Colour = defaultColour
		}
		if pc.Name == "" {
			pc.Name = fmt.Sprintf("prop%d", i)
		}
	}

	for i := range c.Statics {
		sc := &c.Statics[i]
		if sc.Size == (Vec{}) {
			sc.Size = Vec{1, 1, 1}
		}
		if sc.Colour == (Colour{}) {
			sc.Colour = defaultColour
		}
		if sc.Fit == 0 {
			sc.Fit = 2
		}
	}
}

// settings returns the portal settings of pc.
func (pc PortalConfig) settings() portal.Settings {
	return portal.Settings{
		RecursionLimit:  pc.RecursionLimit,
		NearClipOffset:  pc.NearClipOffset,
		NearClipLimit:   pc.NearClipLimit,
		ProjectionScale: pc.ProjectionScale,
	}
}

// settings returns the pair settings of pc.
func (pc PairConfig) settings() portal.PairSettings {
	return portal.PairSettings{
		PortalWidth:        pc.Width,
		PortalHeight:       pc.Height,
		ViewingDistance:    pc.ViewingDistance,
		TransitionDuration: seconds(pc.Transition),
		PushDistance:       pc.PushDistance,
		PushDuration:       seconds(pc.Push),
		PaintingFOV:        radians(pc.PaintingFOV),
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
