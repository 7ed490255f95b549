package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3) Triangle {
	return Triangle{V0: v0, V1: v1, V2: v2}
}

// FaceNormal returns the unnormalized geometric normal (edge1 x edge2)
func (t Triangle) FaceNormal() core.Vec3 {
	return t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0))
}

// Area returns the triangle's area
func (t Triangle) Area() float64 {
	return 0.5 * t.FaceNormal().Length()
}

// Intersect tests the ray against the triangle using the Möller-Trumbore algorithm.
// The returned normal always opposes the ray direction.
func (t Triangle) Intersect(ray core.Ray) (Intersection, bool) {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)

	// Ray lies in (or parallel to) the triangle plane
	if math.Abs(det) < core.Epsilon {
		return Intersection{}, false
	}

	f := 1.0 / det
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return Intersection{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return Intersection{}, false
	}

	k := f * edge2.Dot(q)
	if k <= core.Epsilon {
		return Intersection{}, false
	}

	point := ray.At(k)
	normal := edge1.Cross(edge2)
	if normal.Dot(ray.Direction) > 0 {
		normal = normal.Negate()
	}

	return NewIntersection(point, normal, ray.Origin.Subtract(point).Length()), true
}

// Barycentric returns the barycentric weights of p as ratios of the
// sub-triangle areas opposite each vertex to the full area.
func (t Triangle) Barycentric(p core.Vec3) core.Vec3 {
	area := t.Area()
	return core.Vec3{
		X: NewTriangle(p, t.V1, t.V2).Area() / area,
		Y: NewTriangle(p, t.V0, t.V2).Area() / area,
		Z: NewTriangle(p, t.V0, t.V1).Area() / area,
	}
}

// InterpolateNormal blends three vertex normals with the barycentric weights of p
func (t Triangle) InterpolateNormal(p core.Vec3, normals [3]core.Vec3) core.Vec3 {
	w := t.Barycentric(p)
	return normals[0].Multiply(w.X).
		Add(normals[1].Multiply(w.Y)).
		Add(normals[2].Multiply(w.Z)).
		Normalize()
}
