package render

import (
	"math"
	"testing"

	"github.com/taigrr/portals/pkg/math3d"
)

func TestCameraDirections(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.Zero3())
	cam.SetRotation(0, math.Pi/2, 0) // yaw left

	fwd := cam.Forward()
	if math.Abs(fwd.X+1) > 1e-9 || math.Abs(fwd.Z) > 1e-9 {
		t.Errorf("Forward() = %v, want (-1, 0, 0)", fwd)
	}
	if up := cam.Up(); math.Abs(up.Y-1) > 1e-9 {
		t.Errorf("Up() = %v, want (0, 1, 0)", up)
	}
}

func TestCameraViewMatrixCaching(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(1, 2, 3))
	first := cam.ViewMatrix()

	p := first.MulVec3(math3d.V3(1, 2, 3))
	if p.Len() > 1e-9 {
		t.Errorf("camera position should map to the view origin, got %v", p)
	}

	cam.SetPosition(math3d.V3(4, 5, 6))
	if cam.ViewMatrix().ApproxEqual(first, 1e-12) {
		t.Error("view matrix should be recomputed after SetPosition")
	}
}

func TestObliqueMatrixPlaneMapsToNearPlane(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.Zero3())
	cam.SetOrientation(math3d.QuatIdent())
	cam.SetAspectRatio(1)

	// Camera-space plane 5 units ahead, tilted, normal pointing away.
	n := math3d.V3(0.3, 0, -1).Normalize()
	onPlane := n.Scale(5)
	clip := math3d.Plane(n, onPlane)

	oblique := cam.CalculateObliqueMatrix(clip)
	for _, p := range []math3d.Vec3{
		onPlane,
		onPlane.Add(math3d.V3(0, 1, 0)),
		onPlane.Add(n.Cross(math3d.V3(0, 1, 0)).Scale(0.5)),
	} {
		ndc := oblique.MulVec4(math3d.V4FromV3(p, 1)).PerspectiveDivide()
		if math.Abs(ndc.Z+1) > 1e-6 {
			t.Errorf("point %v on clip plane has NDC z %v, want -1", p, ndc.Z)
		}
	}

	// x and y rows are untouched
	proj := cam.ProjectionMatrix()
	for _, i := range []int{0, 1, 4, 5, 8, 9, 12, 13} {
		if oblique[i] != proj[i] {
			t.Errorf("element %d changed: %v != %v", i, oblique[i], proj[i])
		}
	}
}

func TestCustomProjectionReset(t *testing.T) {
	cam := NewCamera()
	cam.SetProjectionMatrix(math3d.Identity())
	if !cam.HasCustomProjection() {
		t.Fatal("expected custom projection")
	}
	if cam.ProjectionMatrix() != math3d.Identity() {
		t.Error("custom projection not returned")
	}

	cam.SetFOV(math.Pi / 4)
	if cam.HasCustomProjection() {
		t.Error("SetFOV should drop the custom projection")
	}
	want := math3d.Perspective(math.Pi/4, cam.AspectRatio, cam.Near, cam.Far)
	if !cam.ProjectionMatrix().ApproxEqual(want, 1e-12) {
		t.Error("projection should be rebuilt from parameters")
	}
}

func TestWorldToViewport(t *testing.T) {
	cam := lookingDownZ()

	centre := cam.WorldToViewport(math3d.Zero3())
	if math.Abs(centre.X-0.5) > 1e-9 || math.Abs(centre.Y-0.5) > 1e-9 || math.Abs(centre.Z-10) > 1e-9 {
		t.Errorf("WorldToViewport(origin) = %v, want (0.5, 0.5, 10)", centre)
	}

	upRight := cam.WorldToViewport(math3d.V3(1, 1, 0))
	if upRight.X <= 0.5 || upRight.Y <= 0.5 {
		t.Errorf("up-right point mapped to %v", upRight)
	}
}
