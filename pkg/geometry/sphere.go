package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// Contains reports whether p lies inside or on the sphere
func (s Sphere) Contains(p core.Vec3) bool {
	return s.Center.Subtract(p).Length() <= s.Radius
}

// Intersect finds where the ray meets the sphere. A ray starting inside
// the sphere reports the exit point.
func (s Sphere) Intersect(ray core.Ray) (Intersection, bool) {
	toCenter := s.Center.Subtract(ray.Origin)
	projection := toCenter.Dot(ray.Direction)
	projected := ray.Direction.Multiply(projection)

	// Perpendicular distance from the center to the ray line
	chord := projected.Subtract(toCenter).Length()
	if chord > s.Radius {
		return Intersection{}, false
	}

	halfChord := math.Sqrt(s.Radius*s.Radius - chord*chord)
	inside := s.Contains(ray.Origin)

	// offset is the hit point relative to the ray origin
	var offset core.Vec3
	switch {
	case inside:
		offset = projected.Add(ray.Direction.Multiply(halfChord))
	case projection > 0:
		offset = projected.Subtract(ray.Direction.Multiply(halfChord))
	default:
		// Sphere is behind an outside origin
		return Intersection{}, false
	}

	// Point the normal back toward the side the ray came from
	var normal core.Vec3
	if toCenter.Length() > s.Radius {
		normal = offset.Subtract(toCenter)
	} else {
		normal = toCenter.Subtract(offset)
	}

	return NewIntersection(ray.Origin.Add(offset), normal, offset.Length()), true
}
