package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// angleAxisEpsilon is the smallest sin(angle/2) treated as a usable axis.
const angleAxisEpsilon = 1e-9

// SafeQuat normalizes q, treating the zero quaternion as identity.
func SafeQuat(q mgl64.Quat) mgl64.Quat {
	if q.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}

// ToAngleAxis returns the rotation angle of q in degrees within [0, 360]
// and its unit axis. ok is false when the axis is undefined (identity or a
// full turn), in which case callers must not use the result.
func ToAngleAxis(q mgl64.Quat) (angle float64, axis mgl64.Vec3, ok bool) {
	q = SafeQuat(q)
	w := mgl64.Clamp(q.W, -1, 1)
	s := math.Sqrt(1 - w*w)
	if s < angleAxisEpsilon || !IsFinite(s) {
		return 0, mgl64.Vec3{}, false
	}
	axis = q.V.Mul(1 / s)
	if !IsFiniteVec(axis) {
		return 0, mgl64.Vec3{}, false
	}
	return mgl64.RadToDeg(2 * math.Acos(w)), axis, true
}

// AngleBetween returns the smallest angle in degrees, within [0, 180], that
// rotates a onto b.
func AngleBetween(a, b mgl64.Quat) float64 {
	d := math.Abs(SafeQuat(a).Dot(SafeQuat(b)))
	if d > 1 {
		d = 1
	}
	return mgl64.RadToDeg(2 * math.Acos(d))
}

// EulerToQuat composes degrees as a Z, then X, then Y rotation.
func EulerToQuat(e mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(e.X()), Right)
	qy := mgl64.QuatRotate(mgl64.DegToRad(e.Y()), Up)
	qz := mgl64.QuatRotate(mgl64.DegToRad(e.Z()), Forward)
	return qy.Mul(qx).Mul(qz).Normalize()
}

// QuatToEuler is the inverse of EulerToQuat. Components are in [0, 360).
func QuatToEuler(q mgl64.Quat) mgl64.Vec3 {
	q = SafeQuat(q)
	x, y, z, w := q.V.X(), q.V.Y(), q.V.Z(), q.W

	m00 := 1 - 2*(y*y+z*z)
	m02 := 2 * (x*z + w*y)
	m10 := 2 * (x*y + w*z)
	m11 := 1 - 2*(x*x+z*z)
	m12 := 2 * (y*z - w*x)
	m20 := 2 * (x*z - w*y)
	m22 := 1 - 2*(x*x+y*y)

	sx := mgl64.Clamp(-m12, -1, 1)
	ex := math.Asin(sx)
	var ey, ez float64
	if math.Abs(sx) < 1-1e-9 {
		ey = math.Atan2(m02, m22)
		ez = math.Atan2(m10, m11)
	} else {
		// gimbal lock: fold roll into yaw
		ey = math.Atan2(-m20, m00)
		ez = 0
	}

	return mgl64.Vec3{
		normalizeDegrees(mgl64.RadToDeg(ex)),
		normalizeDegrees(mgl64.RadToDeg(ey)),
		normalizeDegrees(mgl64.RadToDeg(ez)),
	}
}

// LookRotation builds the rotation whose forward axis is forward and whose up
// axis is as close to up as possible.
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	if forward.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	z := forward.Normalize()
	x := up.Cross(z)
	if x.Len() < 1e-9 {
		// up parallel to forward
		alt := Up
		if math.Abs(z.Dot(Up)) > 0.99 {
			alt = Forward
		}
		x = alt.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)
	m := mgl64.Mat3FromCols(x, y, z)
	return SafeQuat(mgl64.Mat4ToQuat(m.Mat4()))
}

// UpOf returns the up axis of q.
func UpOf(q mgl64.Quat) mgl64.Vec3 {
	return SafeQuat(q).Rotate(Up)
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d -= 360
	}
	return d
}
