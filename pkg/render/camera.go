package render

import (
	"math"

	"github.com/taigrr/portals/pkg/math3d"
)

// Camera represents a 3D camera with position and orientation.
// It looks down its local -Z axis.
type Camera struct {
	// Position in world space
	Position math3d.Vec3

	// Orientation in world space
	Rotation math3d.Quat

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	viewProjDirty  bool

	// customProj is set while an explicit projection (e.g. oblique) is in use.
	customProj bool
}

// NewCamera creates a new camera with default settings.
func NewCamera() *Camera {
	return &Camera{
		Position:      math3d.V3(0, 10, 0),
		Rotation:      math3d.QuatIdent(),
		FOV:           math.Pi / 3, // 60 degrees
		AspectRatio:   16.0 / 9.0,
		Near:          0.1,
		Far:           1000,
		viewDirty:     true,
		projDirty:     true,
		viewProjDirty: true,
	}
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.invalidateView()
}

// SetOrientation sets the camera orientation.
func (c *Camera) SetOrientation(rot math3d.Quat) {
	c.Rotation = rot.Normalize()
	c.invalidateView()
}

// SetPose places the camera at pos facing rot. Cameras are never scaled.
func (c *Camera) SetPose(pos math3d.Vec3, rot math3d.Quat) {
	c.Position = pos
	c.Rotation = rot.Normalize()
	c.invalidateView()
}

// Pose returns the camera pose with unit scale.
func (c *Camera) Pose() math3d.Pose {
	return math3d.NewPose(c.Position, c.Rotation)
}

// SetRotation sets the camera rotation from pitch, yaw and roll in radians.
func (c *Camera) SetRotation(pitch, yaw, roll float64) {
	c.SetOrientation(math3d.QuatFromEuler(pitch, yaw, roll))
}

// SetFOV sets the field of view (in radians).
// This also drops any custom projection.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.invalidateProj()
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.invalidateProj()
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.invalidateProj()
}

// CopyProjection copies FOV, aspect and clip planes from another camera.
func (c *Camera) CopyProjection(o *Camera) {
	c.FOV = o.FOV
	c.AspectRatio = o.AspectRatio
	c.Near = o.Near
	c.Far = o.Far
	c.invalidateProj()
}

// Forward returns the forward direction vector.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.Rotate(c.Rotation, math3d.Forward())
}

// Right returns the right direction vector.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.Rotate(c.Rotation, math3d.Right())
}

// Up returns the up direction vector.
func (c *Camera) Up() math3d.Vec3 {
	return math3d.Rotate(c.Rotation, math3d.Up())
}

// ViewMatrix returns the view (world-to-camera) matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.computeViewMatrix()
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.computeProjectionMatrix()
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewProjDirty || c.viewDirty || c.projDirty {
		c.viewProjMatrix = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}

// SetProjectionMatrix overrides the projection until ResetProjection or any
// projection parameter changes.
func (c *Camera) SetProjectionMatrix(m math3d.Mat4) {
	c.projMatrix = m
	c.projDirty = false
	c.customProj = true
	c.viewProjDirty = true
}

// ResetProjection drops a custom projection and returns to the perspective
// derived from FOV, aspect and clip planes.
func (c *Camera) ResetProjection() {
	c.invalidateProj()
}

// HasCustomProjection reports whether SetProjectionMatrix is in effect.
func (c *Camera) HasCustomProjection() bool {
	return c.customProj
}

// CalculateObliqueMatrix returns the current projection with its near plane
// replaced by clipPlane, given in camera space as (normal, distance).
// Points with dot(clipPlane, p) < 0 end up in front of the new near plane.
func (c *Camera) CalculateObliqueMatrix(clipPlane math3d.Vec4) math3d.Mat4 {
	proj := c.ProjectionMatrix()

	// Corner of the view frustum opposite the clip plane, in camera space.
	q := proj.Inverse().MulVec4(math3d.V4(sgn(clipPlane.X), sgn(clipPlane.Y), 1, 1))
	scaled := clipPlane.Scale(2 / clipPlane.Dot(q))

	// Replace the third row with scaled - fourth row.
	proj[2] = scaled.X - proj[3]
	proj[6] = scaled.Y - proj[7]
	proj[10] = scaled.Z - proj[11]
	proj[14] = scaled.W - proj[15]
	return proj
}

func sgn(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (c *Camera) invalidateView() {
	c.viewDirty = true
	c.viewProjDirty = true
}

func (c *Camera) invalidateProj() {
	c.projDirty = true
	c.customProj = false
	c.viewProjDirty = true
}

func (c *Camera) computeViewMatrix() {
	// View = Rotation^-1 * Translation(-position)
	rot := math3d.RotationMatrix(c.Rotation.Conjugate())
	trans := math3d.Translate(c.Position.Negate())
	c.viewMatrix = rot.Mul(trans)
}

func (c *Camera) computeProjectionMatrix() {
	c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
}

// LookAt makes the camera look at a target point with the given up hint.
func (c *Camera) LookAt(target, up math3d.Vec3) {
	c.SetOrientation(math3d.QuatFromBasis(target.Sub(c.Position), up))
}

// WorldToViewport maps a world point to viewport space: X and Y in [0, 1]
// from the bottom-left corner, Z the distance in front of the camera.
func (c *Camera) WorldToViewport(worldPos math3d.Vec3) math3d.Vec3 {
	viewPos := c.ViewMatrix().MulVec3(worldPos)
	clipPos := c.ProjectionMatrix().MulVec4(math3d.V4FromV3(viewPos, 1))
	ndc := clipPos.PerspectiveDivide()
	return math3d.V3((ndc.X+1)*0.5, (ndc.Y+1)*0.5, -viewPos.Z)
}
