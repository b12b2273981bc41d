package system

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Intercept returns the point a projectile fired from src at speed should be
// aimed at to meet a target at dst moving with velocity vel. When no
// positive-time solution exists the target's current position is returned.
func Intercept(src, dst, vel cp.Vector, speed float64) cp.Vector {
	rel := dst.Sub(src)

	a := vel.Dot(vel) - speed*speed
	b := 2 * vel.Dot(rel)
	c := rel.Dot(rel)

	t0, t1, ok := quad(a, b, c)
	if !ok {
		return dst
	}

	t := math.Min(t0, t1)
	if t < 0 {
		t = math.Max(t0, t1)
	}
	if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return dst
	}
	return dst.Add(vel.Mult(t))
}

// quad solves a*t^2 + b*t + c = 0, degrading to the linear case when a is
// negligible.
func quad(a, b, c float64) (float64, float64, bool) {
	const eps = 1e-6

	if math.Abs(a) < eps {
		if math.Abs(b) < eps {
			if math.Abs(c) < eps {
				return 0, 0, true
			}
			return 0, 0, false
		}
		t := -c / b
		return t, t, true
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, false
	}
	disc = math.Sqrt(disc)
	a2 := 2 * a
	return (-b - disc) / a2, (-b + disc) / a2, true
}
