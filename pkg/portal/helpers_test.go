package portal

import (
	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/models"
	"github.com/taigrr/portals/pkg/render"
)

// countingRenderer records every draw instead of rasterizing.
type countingRenderer struct {
	width, height int
	positions     []math3d.Vec3
	onRender      func(cam *render.Camera)
}

func newCountingRenderer() *countingRenderer {
	return &countingRenderer{width: 32, height: 18}
}

func (r *countingRenderer) Render(cam *render.Camera, target *render.Framebuffer) {
	r.positions = append(r.positions, cam.Position)
	if r.onRender != nil {
		r.onRender(cam)
	}
}

func (r *countingRenderer) Size() (int, int) {
	return r.width, r.height
}

func (r *countingRenderer) draws() int {
	return len(r.positions)
}

func poseAt(x, y, z float64) math3d.Pose {
	return math3d.NewPose(math3d.V3(x, y, z), math3d.QuatIdent())
}

func newTestPortal(name string, pose math3d.Pose) *Portal {
	return New(name, pose, NewWindowScreen(2, 4))
}

func newTestPainting(name string, pose math3d.Pose) *Painting {
	return NewPainting(name, pose, NewCanvasScreen(2, 4))
}

// playerAt returns a camera looking down -Z.
func playerAt(x, y, z float64) *render.Camera {
	cam := render.NewCamera()
	cam.SetPosition(math3d.V3(x, y, z))
	return cam
}

func newTestBody(name string, pose math3d.Pose) *Body {
	mesh := models.NewBox(name, math3d.V3(1, 1, 1))
	return NewBody(name, pose, NewGraphics(mesh, render.ColorWhite))
}

func vecNear(a, b math3d.Vec3) bool {
	return a.Sub(b).Len() < 1e-6
}
