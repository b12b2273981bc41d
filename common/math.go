package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// Mod360 wraps an angle in degrees into [0, 360).
func Mod360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// AngleDist returns the smallest absolute difference between two angles in degrees.
func AngleDist(a, b float64) float64 {
	d := math.Abs(Mod360(a) - Mod360(b))
	return math.Min(d, 360-d)
}

// AngleWithin reports whether a is within margin degrees of b.
func AngleWithin(a, b, margin float64) bool {
	return AngleDist(a, b) <= margin
}

// MoveToward turns angle toward target by at most speed degrees.
func MoveToward(angle, target, speed float64) float64 {
	if AngleDist(angle, target) < speed {
		return target
	}
	angle = Mod360(angle)
	target = Mod360(target)
	forward := math.Abs(angle - target)
	backward := 360 - forward
	if (angle > target) == (backward > forward) {
		angle -= speed
	} else {
		angle += speed
	}
	return angle
}

// Angle returns the direction of v in degrees within [0, 360).
func Angle(v cp.Vector) float64 {
	return Mod360(v.ToAngle() * radToDeg)
}

// AngleTo returns the direction from a to b in degrees.
func AngleTo(a, b cp.Vector) float64 {
	return Angle(b.Sub(a))
}

// Trns returns a vector of the given length pointing along angle degrees.
func Trns(angle, length float64) cp.Vector {
	return cp.ForAngle(angle * degToRad).Mult(length)
}

// RotateDeg rotates v by angle degrees counter-clockwise.
func RotateDeg(v cp.Vector, angle float64) cp.Vector {
	return v.Rotate(cp.ForAngle(angle * degToRad))
}

// SetAngle keeps the length of v and points it along angle degrees.
func SetAngle(v cp.Vector, angle float64) cp.Vector {
	return Trns(angle, v.Length())
}

// SetLength scales v to |length|. A zero vector stays zero.
func SetLength(v cp.Vector, length float64) cp.Vector {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Mult(math.Abs(length) / l)
}

// Limit caps the length of v at |length|.
func Limit(v cp.Vector, length float64) cp.Vector {
	length = math.Abs(length)
	if v.LengthSq() > length*length {
		return SetLength(v, length)
	}
	return v
}

// Finite reports whether both components are finite numbers.
func Finite(v cp.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func IsZero(v cp.Vector) bool {
	return v.X == 0 && v.Y == 0
}
