package render

import (
	"math"

	"github.com/taigrr/portals/pkg/math3d"
)

// Bounds is a local-space box placed in the world by a transform.
type Bounds struct {
	Local     AABB
	Transform math3d.Mat4
}

// World returns the world-space AABB enclosing the transformed box.
func (b Bounds) World() AABB {
	return b.Local.Transform(b.Transform)
}

// ScreenRect is the viewport-space extent of a box as seen by a camera.
// X and Y are in [0, 1] viewport units, Z is distance in front of the camera.
type ScreenRect struct {
	Min, Max math3d.Vec3
	Empty    bool
}

// ScreenRectFromBounds projects the 8 corners of b into the camera viewport.
//
// A corner behind the camera projects mirrored through the centre of the
// view, so it is pushed to the opposite viewport edge instead. If every
// corner is behind the camera the rect is Empty.
func ScreenRectFromBounds(b Bounds, cam *Camera) ScreenRect {
	rect := ScreenRect{
		Min: math3d.V3(math.MaxFloat64, math.MaxFloat64, math.MaxFloat64),
		Max: math3d.V3(-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64),
	}

	anyInFront := false
	for _, corner := range b.Local.Corners() {
		vp := cam.WorldToViewport(b.Transform.MulVec3(corner))
		if vp.Z > 0 {
			anyInFront = true
		} else {
			vp.X = selectComponent(vp.X <= 0.5, 1, 0)
			vp.Y = selectComponent(vp.Y <= 0.5, 1, 0)
		}
		rect.Min = rect.Min.Min(vp)
		rect.Max = rect.Max.Max(vp)
	}

	if !anyInFront {
		return ScreenRect{Empty: true}
	}
	return rect
}

// Overlaps reports whether two rects overlap in X and Y.
func (r ScreenRect) Overlaps(o ScreenRect) bool {
	if r.Empty || o.Empty {
		return false
	}
	if o.Max.X < r.Min.X || o.Min.X > r.Max.X {
		return false
	}
	if o.Max.Y < r.Min.Y || o.Min.Y > r.Max.Y {
		return false
	}
	return true
}

// BoundsOverlap reports whether far can be seen through near from cam:
// their viewport rects overlap and far reaches further than near begins.
func BoundsOverlap(near, far Bounds, cam *Camera) bool {
	nearRect := ScreenRectFromBounds(near, cam)
	farRect := ScreenRectFromBounds(far, cam)

	if farRect.Empty || nearRect.Empty {
		return false
	}
	if farRect.Max.Z <= nearRect.Min.Z {
		return false
	}
	return nearRect.Overlaps(farRect)
}

// VisibleFromCamera reports whether any part of b lies inside the camera frustum.
func VisibleFromCamera(b Bounds, cam *Camera) bool {
	return cam.Frustum().IntersectAABB(b.World())
}
