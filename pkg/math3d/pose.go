package math3d

// Pose is a position, rotation and per-axis scale, the decomposed form of a
// local-to-world matrix.
type Pose struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// NewPose creates a pose with unit scale.
func NewPose(pos Vec3, rot Quat) Pose {
	return Pose{Position: pos, Rotation: rot, Scale: V3(1, 1, 1)}
}

// IdentityPose returns the pose at the origin with no rotation and unit scale.
func IdentityPose() Pose {
	return NewPose(Zero3(), QuatIdent())
}

// Matrix returns the local-to-world matrix.
func (p Pose) Matrix() Mat4 {
	return TRS(p.Position, p.Rotation, p.Scale)
}

// InverseMatrix returns the world-to-local matrix.
func (p Pose) InverseMatrix() Mat4 {
	return p.Matrix().Inverse()
}

// Forward returns the world-space forward direction (local -Z).
func (p Pose) Forward() Vec3 {
	return Rotate(p.Rotation, Forward())
}

// Up returns the world-space up direction (local +Y).
func (p Pose) Up() Vec3 {
	return Rotate(p.Rotation, Up())
}

// Right returns the world-space right direction (local +X).
func (p Pose) Right() Vec3 {
	return Rotate(p.Rotation, Right())
}

// UniformScale returns the X scale, the convention for uniformly scaled objects.
func (p Pose) UniformScale() float64 {
	return p.Scale.X
}

// TransformPoint maps a local point to world space.
func (p Pose) TransformPoint(v Vec3) Vec3 {
	return p.Matrix().MulVec3(v)
}

// InverseTransformPoint maps a world point to local space.
func (p Pose) InverseTransformPoint(v Vec3) Vec3 {
	return p.InverseMatrix().MulVec3(v)
}

// TransformVector maps a local direction to world space, including scale.
func (p Pose) TransformVector(v Vec3) Vec3 {
	return p.Matrix().MulVec3Dir(v)
}

// InverseTransformVector maps a world direction to local space, including scale.
func (p Pose) InverseTransformVector(v Vec3) Vec3 {
	return p.InverseMatrix().MulVec3Dir(v)
}

// PoseFromMatrix decomposes an affine matrix into a pose.
//
// Scale is the length of each basis column. Rotation is rebuilt from the
// normalized forward and up columns rather than read from the raw 3x3 block,
// so skew accumulated by matrix concatenation never leaks into the rotation.
func PoseFromMatrix(m Mat4) Pose {
	x, y, z := m.Column(0), m.Column(1), m.Column(2)
	scale := V3(x.Len(), y.Len(), z.Len())

	// Mirror matrices keep a positive-determinant rotation; fold the flip into X.
	if x.Cross(y).Dot(z) < 0 {
		scale.X = -scale.X
	}

	return Pose{
		Position: m.Translation(),
		Rotation: QuatFromBasis(z.Negate(), y),
		Scale:    scale,
	}
}
