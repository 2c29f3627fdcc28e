package portal

import (
	"math"

	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/models"
	"github.com/taigrr/portals/pkg/render"
)

// Renderer draws the world from a camera. Portals and paintings call it to
// fill their view surfaces.
type Renderer interface {
	// Render clears target and draws every visible object seen by cam.
	Render(cam *render.Camera, target *render.Framebuffer)

	// Size is the resolution of the player's view.
	Size() (width, height int)
}

// ScreenKind selects how a screen shows its view.
type ScreenKind int

const (
	// WindowScreen shows the view pixel found at the same viewport position,
	// so the screen looks like an opening. Portals use it.
	WindowScreen ScreenKind = iota

	// CanvasScreen maps the whole view onto the screen through its UVs, like
	// a picture. Paintings use it.
	CanvasScreen
)

// Screen is the geometry a portal or painting shows its view on. The mesh is
// unit sized and placed by the owner's pose, the screen size and, for
// windows, a depth that keeps the near plane of a passing camera from
// clipping it.
type Screen struct {
	Mesh   *models.Mesh
	Kind   ScreenKind
	Width  float64
	Height float64

	// Enabled is cleared when the owner is switched off entirely.
	Enabled bool

	// Hidden removes the screen from all draws. Set on the linked surface
	// while its partner renders.
	Hidden bool

	// ShadowsOnly removes the screen from camera draws while its own portal
	// renders, so the virtual camera sees through it.
	ShadowsOnly bool

	// DisplayMask selects between the view (true) and a flat Fill (false).
	DisplayMask bool

	View render.Sampler
	Fill render.Color

	depth  float64
	offset float64
}

// minScreenDepth keeps a window screen's bounds from collapsing before the
// first clipping protection pass.
const minScreenDepth = 0.01

// NewWindowScreen creates a portal screen of the given size.
func NewWindowScreen(width, height float64) *Screen {
	return &Screen{
		Mesh:        models.NewBox("window", math3d.V3(1, 1, 1)),
		Kind:        WindowScreen,
		Width:       width,
		Height:      height,
		Enabled:     true,
		DisplayMask: true,
		Fill:        render.ColorBlack,
		depth:       minScreenDepth,
	}
}

// NewCanvasScreen creates a painting screen of the given size facing the
// owner's forward axis.
func NewCanvasScreen(width, height float64) *Screen {
	return &Screen{
		Mesh:        models.NewQuad("canvas", 1, 1),
		Kind:        CanvasScreen,
		Width:       width,
		Height:      height,
		Enabled:     true,
		DisplayMask: true,
		Fill:        render.ColorGray,
		depth:       1,
	}
}

// Visible reports whether cameras should draw the screen.
func (s *Screen) Visible() bool {
	return s.Enabled && !s.Hidden && !s.ShadowsOnly
}

// Depth returns the current depth of the screen in the owner's local units.
func (s *Screen) Depth() float64 {
	return s.depth
}

// Offset returns how far the screen centre sits along the owner's forward axis.
func (s *Screen) Offset() float64 {
	return s.offset
}

// setDepth sizes the screen along the owner's forward axis and shifts it by
// half its depth toward facing (+1 forward, -1 backward).
func (s *Screen) setDepth(depth float64, facing float64) {
	s.depth = math.Max(depth, minScreenDepth)
	s.offset = s.depth * 0.5 * facing
}

// LocalMatrix places the unit mesh relative to the owner.
func (s *Screen) LocalMatrix() math3d.Mat4 {
	if s.Kind == CanvasScreen {
		// The quad faces +Z; turn it to face forward (-Z).
		return math3d.Scale(math3d.V3(s.Width, s.Height, 1)).Mul(math3d.RotateY(math.Pi))
	}
	return math3d.Translate(math3d.Forward().Scale(s.offset)).
		Mul(math3d.Scale(math3d.V3(s.Width, s.Height, s.depth)))
}

// Matrix returns the screen's local-to-world matrix for an owner at pose.
func (s *Screen) Matrix(owner math3d.Pose) math3d.Mat4 {
	return owner.Matrix().Mul(s.LocalMatrix())
}

// Bounds returns the screen mesh box placed for an owner at pose.
func (s *Screen) Bounds(owner math3d.Pose) render.Bounds {
	lo, hi := s.Mesh.GetBounds()
	return render.Bounds{
		Local:     render.AABB{Min: lo, Max: hi},
		Transform: s.Matrix(owner),
	}
}

// Aspect is the world-space width over height of the screen.
func (s *Screen) Aspect(owner math3d.Pose) float64 {
	w := s.Width * math.Abs(owner.Scale.X)
	h := s.Height * math.Abs(owner.Scale.Y)
	if h == 0 {
		return 1
	}
	return w / h
}

// ViewSurface is the off-screen image a portal or painting camera renders
// into. It is double buffered: a camera draws into the back buffer while
// screens sample the front, which holds the previous draw. It is only
// recreated when the required size changes.
type ViewSurface struct {
	front, back *render.Framebuffer

	// Recreations counts how often the buffers were (re)allocated.
	Recreations int
}

// Ensure makes the surface width x height, reporting whether it had to be
// recreated.
func (v *ViewSurface) Ensure(width, height int) bool {
	if v.front.HasSize(width, height) {
		return false
	}
	v.front = render.NewFramebuffer(width, height)
	v.back = render.NewFramebuffer(width, height)
	v.Recreations++
	return true
}

// Target is the buffer to draw into next.
func (v *ViewSurface) Target() *render.Framebuffer {
	return v.back
}

// Front is the last completed draw.
func (v *ViewSurface) Front() *render.Framebuffer {
	return v.front
}

// Swap publishes the target as the new front buffer.
func (v *ViewSurface) Swap() {
	v.front, v.back = v.back, v.front
}

// Size returns the surface dimensions, zero before the first Ensure.
func (v *ViewSurface) Size() (width, height int) {
	if v.front == nil {
		return 0, 0
	}
	return v.front.Width, v.front.Height
}

// Sample reads the front buffer, so a ViewSurface can be shown on a screen.
func (v *ViewSurface) Sample(u, w float64) render.Color {
	if v.front == nil {
		return render.Color{}
	}
	return v.front.Sample(u, w)
}
