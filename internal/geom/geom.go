// Package geom implements the vector, quaternion and matrix math used by
// the MPR samplers and the volume renderer camera.
//
// CPU-side code works in float64 (mgl64); the GPU boundary converts to
// float32. All angles are radians; degree inputs are converted at the
// boundary via Radians.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// normalEpsilon is the squared-length threshold below which a vector is
// treated as degenerate.
const normalEpsilon = 1e-12

// Normalize returns v scaled to unit length. A zero-length input maps to
// the canonical axial normal (0,0,1) so downstream plane math never
// divides by zero.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	if v.LenSqr() < normalEpsilon {
		return mgl64.Vec3{0, 0, 1}
	}
	return v.Normalize()
}

// Cross returns a × b.
func Cross(a, b mgl64.Vec3) mgl64.Vec3 { return a.Cross(b) }

// Dot returns a ⋅ b.
func Dot(a, b mgl64.Vec3) float64 { return a.Dot(b) }

// IsDegenerate reports whether v is too short to normalize.
func IsDegenerate(v mgl64.Vec3) bool { return v.LenSqr() < normalEpsilon }

// AxisAngle builds a unit quaternion rotating by angle radians around
// axis. The axis is normalized first.
func AxisAngle(axis mgl64.Vec3, angle float64) mgl64.Quat {
	return mgl64.QuatRotate(angle, Normalize(axis))
}

// QuatMul returns a ⊗ b. Applying the result rotates by b first, then a.
func QuatMul(a, b mgl64.Quat) mgl64.Quat { return a.Mul(b) }

// Rotate applies quaternion q to vector v.
func Rotate(q mgl64.Quat, v mgl64.Vec3) mgl64.Vec3 { return q.Rotate(v) }

// QuatToMat4 converts a unit quaternion to a column-major 4×4 rotation
// matrix.
func QuatToMat4(q mgl64.Quat) mgl64.Mat4 { return q.Mat4() }

// InvertMat4 returns the inverse of m computed from the classical
// adjugate (the 12 cofactor products of the 3×3 sub-minors). When the
// determinant is exactly zero it returns the zero matrix and false;
// callers treat that as an error.
func InvertMat4(m mgl64.Mat4) (mgl64.Mat4, bool) {
	if m.Det() == 0 {
		return mgl64.Mat4{}, false
	}
	return m.Inv(), true
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }
