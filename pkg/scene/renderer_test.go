package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/render"
)

const viewW, viewH = 64, 36

func drawn(t *testing.T, text string) (*World, *render.Framebuffer) {
	t.Helper()
	w := build(t, text)
	w.Resize(viewW, viewH)
	w.Step(0, Input{})

	fb := render.NewFramebuffer(viewW, viewH)
	w.Draw(fb)
	return w, fb
}

// isRed reports whether c is a lit shade of pure red.
func isRed(c render.Color) bool {
	return c.R > 100 && c.G == 0 && c.B == 0
}

func TestRendererDrawsStatics(t *testing.T) {
	w, fb := drawn(t, `
[player]
position = [0, 0, 6]

[[static]]
name = "block"
position = [0, 1.6, 0]
size = [2, 2, 2]
colour = [255, 0, 0]
`)
	assert.True(t, isRed(fb.GetPixel(viewW/2, viewH/2)), "block ahead")
	assert.Equal(t, w.Background, fb.GetPixel(0, 0))
}

func TestRendererSkipsOwnPlayer(t *testing.T) {
	w := build(t, `
[player]
colour = [255, 0, 0]
`)
	w.Resize(viewW, viewH)

	countRed := func(cam *render.Camera) int {
		fb := render.NewFramebuffer(viewW, viewH)
		w.Renderer.Render(cam, fb)
		n := 0
		for _, c := range fb.Pixels {
			if isRed(c) {
				n++
			}
		}
		return n
	}

	assert.Zero(t, countRed(w.Player.Camera))

	other := render.NewCamera()
	other.SetAspectRatio(float64(viewW) / viewH)
	other.SetPosition(math3d.V3(0, 1, 5))
	other.LookAt(math3d.V3(0, 1, 0), math3d.Up())
	assert.Positive(t, countRed(other), "other cameras see the player's body")
}

// Looking at a through the corridor, the player sees what is behind b.
const window = `
[player]
position = [0, 0, 6]

[[portal]]
name = "a"
link = "b"
position = [0, 1.6, 0]
width = 3
height = 3

[[portal]]
name = "b"
position = [50, 1.6, 0]
width = 3
height = 3

[[static]]
name = "beyond"
position = [50, 1.6, -5]
size = [3, 3, 3]
colour = [255, 0, 0]
`

func TestRendererShowsViewThroughPortal(t *testing.T) {
	w, fb := drawn(t, window)

	assert.True(t, isRed(fb.GetPixel(viewW/2, viewH/2)), "block behind b shows through a, got %v", fb.GetPixel(viewW/2, viewH/2))
	assert.Equal(t, w.Background, fb.GetPixel(0, 0), "outside the screen")

	b := portalNamed(w, "b")
	assert.Positive(t, b.Stats().Draws)
	assert.Equal(t, 1, portalNamed(w, "a").Stats().VisibilitySkips, "b is out of view")
}

func TestRendererMaskedScreenShowsFill(t *testing.T) {
	w, _ := drawn(t, window)
	a := portalNamed(w, "a")
	a.Screen.DisplayMask = false

	fb := render.NewFramebuffer(viewW, viewH)
	w.Renderer.Render(w.Player.Camera, fb)
	assert.Equal(t, a.Screen.Fill, fb.GetPixel(viewW/2, viewH/2))
}

func TestRendererShowsPainting(t *testing.T) {
	w, fb := drawn(t, `
[player]
position = [0, 0, 6]

[[painting]]
name = "p"
link = "q"
position = [0, 1.6, 0]
rotation = [0, 180, 0]
width = 3
height = 2
viewing_distance = 6

[[painting]]
name = "q"
position = [50, 1.6, 0]
rotation = [0, 180, 0]
width = 3
height = 2

[[static]]
name = "beyond"
position = [50, 1.6, -5]
size = [3, 3, 3]
colour = [255, 0, 0]
`)
	require.NoError(t, w.InitErr)
	assert.True(t, isRed(fb.GetPixel(viewW/2, viewH/2)), "q's surroundings painted on p, got %v", fb.GetPixel(viewW/2, viewH/2))
	assert.False(t, w.Paintings[1].Screen.Hidden, "q shown again after p rendered")
}

func TestRendererGizmos(t *testing.T) {
	w, plain := drawn(t, corridor)
	w.Renderer.Gizmos = true

	fb := render.NewFramebuffer(viewW, viewH)
	w.Draw(fb)

	changed := 0
	for i := range fb.Pixels {
		if fb.Pixels[i] != plain.Pixels[i] {
			changed++
		}
	}
	assert.Positive(t, changed)
}

func TestResizeRecreatesViews(t *testing.T) {
	w, _ := drawn(t, window)
	b := portalNamed(w, "b")
	wd, ht := b.View().Size()
	assert.Equal(t, viewW, wd)
	assert.Equal(t, viewH, ht)

	w.Resize(32, 18)
	w.Draw(render.NewFramebuffer(32, 18))
	wd, ht = b.View().Size()
	assert.Equal(t, 32, wd)
	assert.Equal(t, 18, ht)
	assert.InDelta(t, 32.0/18.0, w.Player.Camera.AspectRatio, 1e-12)
}
