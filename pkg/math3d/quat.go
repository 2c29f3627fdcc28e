package math3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat is a rotation quaternion. mgl64 stores matrices column-major exactly
// like Mat4, so conversions are plain array conversions.
type Quat = mgl64.Quat

// QuatIdent returns the identity rotation.
func QuatIdent() Quat {
	return mgl64.QuatIdent()
}

// QuatAxisAngle returns a rotation of angle radians around axis.
func QuatAxisAngle(axis Vec3, angle float64) Quat {
	return mgl64.QuatRotate(angle, axis.Normalize().mgl())
}

// QuatFromEuler builds a rotation from pitch (X), yaw (Y) and roll (Z) in
// radians, applied yaw first, then pitch, then roll.
func QuatFromEuler(pitch, yaw, roll float64) Quat {
	qy := mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0})
	qx := mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0})
	qz := mgl64.QuatRotate(roll, mgl64.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz).Normalize()
}

// QuatFromBasis returns the rotation whose forward axis (-Z) points along
// forward and whose up axis is as close to up as possible.
// The basis is re-orthonormalized, so scaled or slightly skewed inputs are fine.
func QuatFromBasis(forward, up Vec3) Quat {
	z := forward.Negate().Normalize()
	if z.LenSq() == 0 {
		return QuatIdent()
	}
	x := up.Cross(z)
	if x.LenSq() < 1e-18 {
		// up is parallel to forward; pick any perpendicular axis
		x = Right().Cross(z)
		if x.LenSq() < 1e-18 {
			x = Up().Cross(z)
		}
	}
	x = x.Normalize()
	y := z.Cross(x)

	m := mgl64.Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	}
	return mgl64.Mat4ToQuat(m).Normalize()
}

// RotationMatrix converts a quaternion to a rotation matrix.
func RotationMatrix(q Quat) Mat4 {
	return Mat4(q.Normalize().Mat4())
}

// Rotate rotates v by q.
func Rotate(q Quat, v Vec3) Vec3 {
	return fromMgl(q.Rotate(v.mgl()))
}

// Slerp spherically interpolates between two rotations.
func Slerp(a, b Quat, t float64) Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t)
}

// QuatAngle returns the angle in radians between two rotations.
func QuatAngle(a, b Quat) float64 {
	d := math.Abs(a.Normalize().Dot(b.Normalize()))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}

// Yaw returns the heading of q's forward axis about +Y, in the convention of
// QuatFromEuler.
func Yaw(q Quat) float64 {
	f := Rotate(q, Forward())
	return math.Atan2(-f.X, -f.Z)
}

func (a Vec3) mgl() mgl64.Vec3 {
	return mgl64.Vec3{a.X, a.Y, a.Z}
}

func fromMgl(v mgl64.Vec3) Vec3 {
	return Vec3{v[0], v[1], v[2]}
}
