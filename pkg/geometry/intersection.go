package geometry

import "github.com/df07/go-whitted-raytracer/pkg/core"

// Intersection describes where a ray meets a primitive
type Intersection struct {
	Position core.Vec3 // World-space hit point
	Normal   core.Vec3 // Unit surface normal
	Distance float64   // Distance from the ray origin
}

// NewIntersection creates an intersection, normalizing the normal
func NewIntersection(position, normal core.Vec3, distance float64) Intersection {
	return Intersection{
		Position: position,
		Normal:   normal.Normalize(),
		Distance: distance,
	}
}

// Shape is anything a ray can be intersected with
type Shape interface {
	Intersect(ray core.Ray) (Intersection, bool)
}
