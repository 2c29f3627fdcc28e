package portal

import (
	"math"

	"github.com/taigrr/portals/pkg/math3d"
	"github.com/taigrr/portals/pkg/render"
)

// BridgeMatrix maps world space around src to world space around dst:
// dst local-to-world times src world-to-local.
func BridgeMatrix(src, dst math3d.Pose) math3d.Mat4 {
	return dst.Matrix().Mul(src.InverseMatrix())
}

// Bridge carries pose through the src portal and out of dst. The result is
// decomposed with PoseFromMatrix, so rotation comes from the orthonormalized
// forward and up axes and never picks up shear.
func Bridge(src, dst, pose math3d.Pose) math3d.Pose {
	return math3d.PoseFromMatrix(BridgeMatrix(src, dst).Mul(pose.Matrix()))
}

// CompensatedFOV narrows or widens fov for a virtual camera whose chain has
// accumulated a uniform scale factor, so the view through the portal keeps
// the player's apparent size. projectionScale exaggerates the effect.
func CompensatedFOV(fov, scale, projectionScale float64) float64 {
	adjusted := scale * projectionScale
	if adjusted == 0 {
		return fov
	}
	return 2 * math.Atan(math.Tan(fov/2)/adjusted)
}

// ObliqueClipPlane returns the camera-space plane (normal, distance) that
// coincides with the portal surface, for use with
// Camera.CalculateObliqueMatrix. The normal faces away from the camera and
// the plane is moved offset toward it. ok is false when the plane is within
// limit of the camera, where an oblique projection becomes unstable.
func ObliqueClipPlane(cam *render.Camera, portal math3d.Pose, offset, limit float64) (plane math3d.Vec4, ok bool) {
	forward := portal.Forward()
	side := sign(forward.Dot(portal.Position.Sub(cam.Position)))

	view := cam.ViewMatrix()
	camSpacePos := view.MulVec3(portal.Position)
	camSpaceNormal := view.MulVec3Dir(forward).Scale(side)
	plane = math3d.Plane(camSpaceNormal, camSpacePos)
	plane.W += offset

	if math.Abs(plane.W) <= limit {
		return math3d.Vec4{}, false
	}
	return plane, true
}

// ScreenThickness is the distance from the eye to a corner of the camera's
// near plane. A screen at least this deep cannot be clipped by the near
// plane of a camera passing through it.
func ScreenThickness(cam *render.Camera) float64 {
	halfHeight := cam.Near * math.Tan(cam.FOV/2)
	halfWidth := halfHeight * cam.AspectRatio
	return math3d.V3(halfWidth, halfHeight, cam.Near).Len()
}

// SideOf returns +1 when p is on the forward side of the plane through pose
// facing pose.Forward(), and -1 behind it. Points on the plane count as +1.
func SideOf(pose math3d.Pose, p math3d.Vec3) int {
	if p.Sub(pose.Position).Dot(pose.Forward()) < 0 {
		return -1
	}
	return 1
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
