package render

import (
	"github.com/taigrr/portals/pkg/math3d"
)

// Wireframe renders 3D wireframe gizmos: portal frames, trigger boxes and
// detection volumes.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera: camera,
		fb:     fb,
	}
}

// DrawLine3D draws a line in 3D space, clipped against the eye plane.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	viewProj := w.camera.ViewProjectionMatrix()
	a := viewProj.MulVec4(math3d.V4FromV3(p1, 1))
	b := viewProj.MulVec4(math3d.V4FromV3(p2, 1))

	if a.W <= minClipW && b.W <= minClipW {
		return
	}
	if a.W <= minClipW {
		a = a.Lerp(b, (minClipW-a.W)/(b.W-a.W))
	} else if b.W <= minClipW {
		b = b.Lerp(a, (minClipW-b.W)/(a.W-b.W))
	}

	x0, y0 := w.toScreen(a)
	x1, y1 := w.toScreen(b)
	w.fb.DrawLine(x0, y0, x1, y1, color)
}

func (w *Wireframe) toScreen(clip math3d.Vec4) (int, int) {
	ndc := clip.PerspectiveDivide()
	x := (ndc.X + 1) * 0.5 * float64(w.fb.Width)
	y := (1 - ndc.Y) * 0.5 * float64(w.fb.Height)
	return int(x), int(y)
}

// boxEdges are the 12 edges of a box in AABB.Corners order.
var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// DrawBox draws the edges of a placed box.
func (w *Wireframe) DrawBox(b Bounds, color Color) {
	corners := b.Local.Corners()
	var world [8]math3d.Vec3
	for i, c := range corners {
		world[i] = b.Transform.MulVec3(c)
	}
	for _, e := range boxEdges {
		w.DrawLine3D(world[e[0]], world[e[1]], color)
	}
}

// DrawFrame draws a width x height rectangle centred on the local origin in
// the local XY plane, with a short tick along local forward (-Z).
func (w *Wireframe) DrawFrame(transform math3d.Mat4, width, height float64, color Color) {
	hw, hh := width/2, height/2
	c := [4]math3d.Vec3{
		transform.MulVec3(math3d.V3(-hw, -hh, 0)),
		transform.MulVec3(math3d.V3(hw, -hh, 0)),
		transform.MulVec3(math3d.V3(hw, hh, 0)),
		transform.MulVec3(math3d.V3(-hw, hh, 0)),
	}
	for i := range 4 {
		w.DrawLine3D(c[i], c[(i+1)%4], color)
	}
	centre := transform.MulVec3(math3d.Zero3())
	w.DrawLine3D(centre, transform.MulVec3(math3d.V3(0, 0, -hh/2)), color)
}

// DrawOctahedron draws a diamond volume whose base is the local origin: it
// spans width along X, height along Y (from 0 to height) and depth either
// way along Z.
func (w *Wireframe) DrawOctahedron(transform math3d.Mat4, width, height, depth float64, color Color) {
	mid := height / 2
	top := transform.MulVec3(math3d.V3(0, height, 0))
	bottom := transform.MulVec3(math3d.V3(0, 0, 0))
	ring := [4]math3d.Vec3{
		transform.MulVec3(math3d.V3(0, mid, depth)),
		transform.MulVec3(math3d.V3(width/2, mid, 0)),
		transform.MulVec3(math3d.V3(0, mid, -depth)),
		transform.MulVec3(math3d.V3(-width/2, mid, 0)),
	}
	for i := range 4 {
		w.DrawLine3D(top, ring[i], color)
		w.DrawLine3D(bottom, ring[i], color)
		w.DrawLine3D(ring[i], ring[(i+1)%4], color)
	}
}

// DrawGrid draws a grid on the XZ plane at y=0.
func (w *Wireframe) DrawGrid(size, step float64, color Color) {
	half := size / 2
	for x := -half; x <= half; x += step {
		w.DrawLine3D(math3d.V3(x, 0, -half), math3d.V3(x, 0, half), color)
	}
	for z := -half; z <= half; z += step {
		w.DrawLine3D(math3d.V3(-half, 0, z), math3d.V3(half, 0, z), color)
	}
}

// DrawPoint draws a point as a small cross.
func (w *Wireframe) DrawPoint(pos math3d.Vec3, size float64, color Color) {
	halfSize := size / 2
	w.DrawLine3D(
		math3d.V3(pos.X-halfSize, pos.Y, pos.Z),
		math3d.V3(pos.X+halfSize, pos.Y, pos.Z),
		color,
	)
	w.DrawLine3D(
		math3d.V3(pos.X, pos.Y-halfSize, pos.Z),
		math3d.V3(pos.X, pos.Y+halfSize, pos.Z),
		color,
	)
	w.DrawLine3D(
		math3d.V3(pos.X, pos.Y, pos.Z-halfSize),
		math3d.V3(pos.X, pos.Y, pos.Z+halfSize),
		color,
	)
}
