package render

import (
	"math"

	"github.com/taigrr/portals/pkg/math3d"
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // Normal vector (for lighting)
	UV       math3d.Vec2 // Texture coordinates
	Color    Color       // Vertex color
}

// Triangle represents a triangle to be rasterized.
// Front faces wind clockwise as seen by the camera.
type Triangle struct {
	V [3]Vertex
}

// SlicePlane cuts away everything on the side its Normal points to, past
// Centre + Normal*Offset. A zero Normal cuts nothing.
type SlicePlane struct {
	Centre math3d.Vec3
	Normal math3d.Vec3
	Offset float64
}

// Discards reports whether the world point p is cut away.
func (s SlicePlane) Discards(p math3d.Vec3) bool {
	if s.Normal.LenSq() == 0 {
		return false
	}
	adjusted := s.Centre.Add(s.Normal.Scale(s.Offset))
	return s.Normal.Dot(p.Sub(adjusted)) > 0
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera                 *Camera
	fb                     *Framebuffer
	zbuffer                []float64    // Depth buffer (1D array, row-major)
	CullingStats           CullingStats // Statistics for debugging/benchmarking
	DisableBackfaceCulling bool         // If true, render both sides of triangles
}

// CullingStats tracks frustum culling and slicing.
type CullingStats struct {
	MeshesTested     int // Total meshes tested for culling
	MeshesCulled     int // Meshes culled (not rendered)
	MeshesDrawn      int // Meshes that passed culling
	FragmentsSliced  int // Fragments discarded by a slice plane
	FragmentsClipped int // Fragments outside the depth range (oblique near plane)
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera: camera,
		fb:     fb,
	}
	r.Resize()
	return r
}

// Camera returns the camera the rasterizer draws from.
func (r *Rasterizer) Camera() *Camera {
	return r.camera
}

// SetCamera switches the camera used for subsequent draws.
func (r *Rasterizer) SetCamera(camera *Camera) {
	r.camera = camera
}

// Target returns the framebuffer being drawn into.
func (r *Rasterizer) Target() *Framebuffer {
	return r.fb
}

// SetTarget switches the framebuffer, resizing the depth buffer if needed.
func (r *Rasterizer) SetTarget(fb *Framebuffer) {
	r.fb = fb
	if fb == nil || len(r.zbuffer) != fb.Width*fb.Height {
		r.Resize()
	}
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// ResetCullingStats resets the culling statistics (call once per frame).
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisible tests if a world-space AABB is visible in the camera frustum.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	return r.camera.Frustum().IntersectAABB(worldBounds)
}

// IsVisibleTransformed tests if a local-space AABB is visible after transformation.
func (r *Rasterizer) IsVisibleTransformed(localBounds AABB, transform math3d.Mat4) bool {
	return r.IsVisible(localBounds.Transform(transform))
}

// getDepth returns the depth at (x, y).
func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// setDepth sets the depth at (x, y).
func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// clipVertex is a vertex in clip space carrying its interpolated attributes.
type clipVertex struct {
	clip      math3d.Vec4
	world     math3d.Vec3
	uv        math3d.Vec2
	color     Color
	intensity float64
}

func lerpClipVertex(a, b clipVertex, t float64) clipVertex {
	return clipVertex{
		clip:      a.clip.Lerp(b.clip, t),
		world:     a.world.Lerp(b.world, t),
		uv:        math3d.V2(a.uv.X+(b.uv.X-a.uv.X)*t, a.uv.Y+(b.uv.Y-a.uv.Y)*t),
		color:     lerpColor(a.color, b.color, t),
		intensity: a.intensity + (b.intensity-a.intensity)*t,
	}
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // NDC depth (for Z-buffer)
	InvW float64 // 1/W (for perspective-correct interpolation)
}

// shading selects how fragments of a triangle are coloured.
type shading struct {
	tex    Sampler    // sampled with the interpolated UV
	screen Sampler    // sampled at the fragment's viewport position
	slice  SlicePlane // world-space cut
	unlit  bool       // ignore lighting for tex
}

// minClipW keeps vertices strictly in front of the eye before the divide.
const minClipW = 1e-5

// clipNear clips a triangle against W = minClipW, returning 0, 3 or 4 vertices.
func clipNear(v [3]clipVertex) []clipVertex {
	out := make([]clipVertex, 0, 4)
	for i := range 3 {
		a, b := v[i], v[(i+1)%3]
		aIn, bIn := a.clip.W > minClipW, b.clip.W > minClipW
		if aIn {
			out = append(out, a)
		}
		if aIn != bIn {
			t := (minClipW - a.clip.W) / (b.clip.W - a.clip.W)
			out = append(out, lerpClipVertex(a, b, t))
		}
	}
	return out
}

// drawClipped clips a triangle against the eye plane and rasterizes the result.
func (r *Rasterizer) drawClipped(v [3]clipVertex, sh *shading) {
	poly := clipNear(v)
	for i := 1; i+1 < len(poly); i++ {
		r.rasterize([3]clipVertex{poly[0], poly[i], poly[i+1]}, sh)
	}
}

// rasterize fills one triangle already in front of the eye.
func (r *Rasterizer) rasterize(v [3]clipVertex, sh *shading) {
	width, height := float64(r.Width()), float64(r.Height())

	var sv [3]screenVertex
	for i := range 3 {
		invW := 1 / v[i].clip.W
		sv[i] = screenVertex{
			X:    (v[i].clip.X*invW + 1) * 0.5 * width,
			Y:    (1 - v[i].clip.Y*invW) * 0.5 * height, // Y flipped
			Z:    v[i].clip.Z * invW,
			InvW: invW,
		}
	}

	// Backface culling (using screen-space winding)
	edge1 := math3d.V2(sv[1].X-sv[0].X, sv[1].Y-sv[0].Y)
	edge2 := math3d.V2(sv[2].X-sv[0].X, sv[2].Y-sv[0].Y)
	cross := edge1.X*edge2.Y - edge1.Y*edge2.X
	if cross == 0 || (cross < 0 && !r.DisableBackfaceCulling) {
		return
	}

	// Find bounding box
	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(width-1, math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(height-1, math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	slicing := sh.slice.Normal.LenSq() > 0

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			// NDC depth is affine in screen space
			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z

			// Outside [-1, 1] is in front of the (possibly oblique) near plane
			// or past the far plane.
			if z < -1 || z > 1 {
				r.CullingStats.FragmentsClipped++
				continue
			}
			if z >= r.getDepth(x, y) {
				continue
			}

			// Perspective-correct weights
			w0, w1, w2 := bc.X*sv[0].InvW, bc.Y*sv[1].InvW, bc.Z*sv[2].InvW
			oneOverW := w0 + w1 + w2
			if oneOverW == 0 {
				continue
			}
			w0, w1, w2 = w0/oneOverW, w1/oneOverW, w2/oneOverW

			if slicing {
				world := v[0].world.Scale(w0).Add(v[1].world.Scale(w1)).Add(v[2].world.Scale(w2))
				if sh.slice.Discards(world) {
					r.CullingStats.FragmentsSliced++
					continue
				}
			}

			var c Color
			switch {
			case sh.screen != nil:
				c = sh.screen.Sample(px/width, 1-py/height)
			case sh.tex != nil:
				u := w0*v[0].uv.X + w1*v[1].uv.X + w2*v[2].uv.X
				tv := w0*v[0].uv.Y + w1*v[1].uv.Y + w2*v[2].uv.Y
				c = sh.tex.Sample(u, tv)
				if !sh.unlit {
					intensity := w0*v[0].intensity + w1*v[1].intensity + w2*v[2].intensity
					c = MultiplyColor(c, intensity)
				}
			default:
				c = interpolateColor3(v[0].color, v[1].color, v[2].color, math3d.V3(w0, w1, w2))
			}

			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, c)
		}
	}
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	return RGB(
		uint8(float64(c0.R)*bc.X+float64(c1.R)*bc.Y+float64(c2.R)*bc.Z),
		uint8(float64(c0.G)*bc.X+float64(c1.G)*bc.Y+float64(c2.G)*bc.Z),
		uint8(float64(c0.B)*bc.X+float64(c1.B)*bc.Y+float64(c2.B)*bc.Z),
	)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// lightIntensity is ambient plus diffuse for a unit normal and light direction.
func lightIntensity(normal, lightDir math3d.Vec3) float64 {
	return 0.3 + 0.7*math.Max(0, normal.Dot(lightDir))
}

// DrawTriangle rasterizes a triangle with Gouraud shading (per-vertex lighting).
func (r *Rasterizer) DrawTriangle(tri Triangle, lightDir math3d.Vec3) {
	r.DrawTriangleSliced(tri, lightDir, SlicePlane{})
}

// DrawTriangleSliced is DrawTriangle with fragments cut by slice discarded.
func (r *Rasterizer) DrawTriangleSliced(tri Triangle, lightDir math3d.Vec3, slice SlicePlane) {
	viewProj := r.camera.ViewProjectionMatrix()
	normLight := lightDir.Normalize()

	var v [3]clipVertex
	for i := range 3 {
		intensity := lightIntensity(tri.V[i].Normal, normLight)
		v[i] = clipVertex{
			clip:      viewProj.MulVec4(math3d.V4FromV3(tri.V[i].Position, 1)),
			world:     tri.V[i].Position,
			uv:        tri.V[i].UV,
			color:     MultiplyColor(tri.V[i].Color, intensity),
			intensity: intensity,
		}
	}
	r.drawClipped(v, &shading{slice: slice})
}

// MeshRenderer is implemented by models.Mesh.
// This interface allows drawing meshes without importing the models package.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounding box support for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// SlicedMeshRenderer extends MeshRenderer with per-face slice planes, given
// in world space.
type SlicedMeshRenderer interface {
	MeshRenderer
	GetFaceSlice(i int) (centre, normal math3d.Vec3, offset float64)
}

// tryFrustumCull attempts to cull a mesh using its bounds if available.
// Returns true if the mesh should be culled (not visible).
func (r *Rasterizer) tryFrustumCull(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++

	minBounds, maxBounds := bounded.GetBounds()
	if !r.IsVisibleTransformed(AABB{Min: minBounds, Max: maxBounds}, transform) {
		r.CullingStats.MeshesCulled++
		return true
	}

	r.CullingStats.MeshesDrawn++
	return false
}

// drawMesh runs every face of mesh through the clipper with per-face slicing.
func (r *Rasterizer) drawMesh(mesh MeshRenderer, transform math3d.Mat4, color Color, lightDir math3d.Vec3, sh shading) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	viewProj := r.camera.ViewProjectionMatrix()
	normalMat := transform.Inverse().Transpose()
	normLight := lightDir.Normalize()
	sliced, _ := mesh.(SlicedMeshRenderer)

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)

		var v [3]clipVertex
		for k := range 3 {
			p, n, uv := mesh.GetVertex(face[k])
			world := transform.MulVec3(p)
			intensity := lightIntensity(normalMat.MulVec3Dir(n).Normalize(), normLight)
			v[k] = clipVertex{
				clip:      viewProj.MulVec4(math3d.V4FromV3(world, 1)),
				world:     world,
				uv:        uv,
				color:     MultiplyColor(color, intensity),
				intensity: intensity,
			}
		}

		faceShading := sh
		if sliced != nil {
			centre, normal, offset := sliced.GetFaceSlice(i)
			faceShading.slice = SlicePlane{Centre: centre, Normal: normal, Offset: offset}
		}
		r.drawClipped(v, &faceShading)
	}
}

// DrawMesh renders a mesh with Gouraud shading.
// Automatically performs frustum culling if the mesh provides bounds, and
// slicing if it provides slice planes.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, color Color, lightDir math3d.Vec3) {
	r.drawMesh(mesh, transform, color, lightDir, shading{})
}

// DrawMeshTextured renders a mesh with texture mapping and Gouraud lighting.
func (r *Rasterizer) DrawMeshTextured(mesh MeshRenderer, transform math3d.Mat4, tex Sampler, lightDir math3d.Vec3) {
	r.drawMesh(mesh, transform, ColorWhite, lightDir, shading{tex: tex})
}

// DrawScreen renders a portal screen. Each covered pixel shows the pixel at
// the same viewport position in view, so the screen looks like a window.
// With a nil view the screen is filled with fill.
func (r *Rasterizer) DrawScreen(mesh MeshRenderer, transform math3d.Mat4, view Sampler, fill Color) {
	if view == nil {
		view = solid(fill)
	}
	r.drawMesh(mesh, transform, fill, math3d.Zero3(), shading{screen: view})
}

// DrawCanvas renders a mesh textured with view through its UVs at full
// brightness. Paintings use it.
func (r *Rasterizer) DrawCanvas(mesh MeshRenderer, transform math3d.Mat4, view Sampler) {
	r.drawMesh(mesh, transform, ColorWhite, math3d.Zero3(), shading{tex: view, unlit: true})
}

// solid is a Sampler returning a single colour.
type solid Color

func (s solid) Sample(u, v float64) Color {
	return Color(s)
}

// DrawMeshWireframe renders a mesh as wireframe.
// Automatically performs frustum culling if the mesh provides bounds.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	w := NewWireframe(r.camera, r.fb)
	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)

		p0, _, _ := mesh.GetVertex(face[0])
		p1, _, _ := mesh.GetVertex(face[1])
		p2, _, _ := mesh.GetVertex(face[2])

		v0 := transform.MulVec3(p0)
		v1 := transform.MulVec3(p1)
		v2 := transform.MulVec3(p2)

		w.DrawLine3D(v0, v1, color)
		w.DrawLine3D(v1, v2, color)
		w.DrawLine3D(v2, v0, color)
	}
}
