package render

import (
	"math"
	"testing"

	"github.com/taigrr/portals/pkg/math3d"
)

func lookingDownZ() *Camera {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(0, 0, 10))
	cam.LookAt(math3d.Zero3(), math3d.Up())
	cam.SetAspectRatio(1)
	cam.SetFOV(math.Pi / 3)
	return cam
}

func slab(at math3d.Vec3) Bounds {
	return Bounds{
		Local:     AABB{Min: math3d.V3(-1, -1, -0.1), Max: math3d.V3(1, 1, 0.1)},
		Transform: math3d.Translate(at),
	}
}

func TestVisibleFromCamera(t *testing.T) {
	cam := lookingDownZ()

	tests := []struct {
		name string
		at   math3d.Vec3
		want bool
	}{
		{"straight ahead", math3d.V3(0, 0, 0), true},
		{"behind camera", math3d.V3(0, 0, 20), false},
		{"far to the side", math3d.V3(100, 0, 0), false},
		{"straddling the edge", math3d.V3(6, 0, 0), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := VisibleFromCamera(slab(tc.at), cam); got != tc.want {
				t.Errorf("VisibleFromCamera(%v) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestScreenRectFromBounds(t *testing.T) {
	cam := lookingDownZ()

	rect := ScreenRectFromBounds(slab(math3d.Zero3()), cam)
	if rect.Empty {
		t.Fatal("box ahead should not be empty")
	}
	if rect.Min.X > 0.5 || rect.Max.X < 0.5 || rect.Min.Y > 0.5 || rect.Max.Y < 0.5 {
		t.Errorf("rect %v should contain the viewport centre", rect)
	}
	if math.Abs(rect.Min.Z-9.9) > 1e-6 || math.Abs(rect.Max.Z-10.1) > 1e-6 {
		t.Errorf("depth range = [%v, %v], want [9.9, 10.1]", rect.Min.Z, rect.Max.Z)
	}

	behind := ScreenRectFromBounds(slab(math3d.V3(0, 0, 20)), cam)
	if !behind.Empty {
		t.Errorf("box behind camera should be empty, got %v", behind)
	}
}

func TestScreenRectBehindCornersFlip(t *testing.T) {
	cam := lookingDownZ()

	// Straddles the camera: some corners in front, some behind.
	b := Bounds{
		Local:     AABB{Min: math3d.V3(-1, -1, -5), Max: math3d.V3(1, 1, 5)},
		Transform: math3d.Translate(math3d.V3(0, 0, 10)),
	}
	rect := ScreenRectFromBounds(b, cam)
	if rect.Empty {
		t.Fatal("straddling box should not be empty")
	}
	if rect.Min.X > 0 || rect.Max.X < 1 {
		t.Errorf("behind corners should push the rect to both edges, got x [%v, %v]", rect.Min.X, rect.Max.X)
	}
}

func TestBoundsOverlap(t *testing.T) {
	cam := lookingDownZ()
	near := slab(math3d.Zero3())

	tests := []struct {
		name string
		far  Bounds
		want bool
	}{
		{"directly behind", slab(math3d.V3(0, 0, -10)), true},
		{"off to the side", slab(math3d.V3(50, 0, -10)), false},
		{"in front of near", slab(math3d.V3(0, 0, 5)), false},
		{"behind camera", slab(math3d.V3(0, 0, 20)), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BoundsOverlap(near, tc.far, cam); got != tc.want {
				t.Errorf("BoundsOverlap = %v, want %v", got, tc.want)
			}
		})
	}
}
