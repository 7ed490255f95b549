package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Reflect mirrors direction d about normal n. Both are expected to be unit length.
func Reflect(d, n core.Vec3) core.Vec3 {
	return d.Subtract(n.Multiply(2 * n.Dot(d)))
}

// Refract bends direction d through a surface with normal n using Snell's law,
// where eta is the ratio of refraction indices. It returns false on total
// internal reflection.
func Refract(d, n core.Vec3, eta float64) (core.Vec3, bool) {
	d = d.Normalize()
	c := -n.Dot(d)
	k := eta * eta * (1 - c*c)
	if k > 1 {
		return core.Vec3{}, false
	}
	return d.Multiply(eta).Add(n.Multiply(eta*c - math.Sqrt(1-k))), true
}
