package scene

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// PrimitiveKind identifies which list a hit primitive came from
type PrimitiveKind int

const (
	KindTriangle PrimitiveKind = iota
	KindSphere
)

func (k PrimitiveKind) String() string {
	if k == KindSphere {
		return "sphere"
	}
	return "triangle"
}

// Hit is the nearest intersection of a ray with the scene
type Hit struct {
	geometry.Intersection
	Material *material.Material
	Kind     PrimitiveKind
	Index    int // Index into Objects or Spheres, by Kind
}

// intersectObject tests a face and applies its interpolated shading normal
func intersectObject(ray core.Ray, obj *Object) (geometry.Intersection, bool) {
	hit, ok := obj.Triangle.Intersect(ray)
	if !ok || !obj.HasNormals {
		return hit, ok
	}
	hit.Normal = obj.Triangle.InterpolateNormal(hit.Position, obj.Normals)
	return hit, true
}

// Closest scans every primitive and returns the nearest hit.
// Triangles are tested before spheres; on equal distances the first wins.
func (s *Scene) Closest(ray core.Ray) (Hit, bool) {
	var closest Hit
	found := false

	for i := range s.objects {
		hit, ok := intersectObject(ray, &s.objects[i])
		if ok && (!found || hit.Distance < closest.Distance) {
			closest = Hit{
				Intersection: hit,
				Material:     s.materials.Get(s.objects[i].Material),
				Kind:         KindTriangle,
				Index:        i,
			}
			found = true
		}
	}

	for i := range s.spheres {
		hit, ok := s.spheres[i].Sphere.Intersect(ray)
		if ok && (!found || hit.Distance < closest.Distance) {
			closest = Hit{
				Intersection: hit,
				Material:     s.materials.Get(s.spheres[i].Material),
				Kind:         KindSphere,
				Index:        i,
			}
			found = true
		}
	}

	return closest, found
}

// Occluded reports whether any primitive blocks the ray before maxDistance,
// shortened by core.Bias so the receiving surface does not shadow itself.
func (s *Scene) Occluded(ray core.Ray, maxDistance float64) bool {
	for i := range s.objects {
		if blocks(s.objects[i].Triangle, ray, maxDistance) {
			return true
		}
	}
	for i := range s.spheres {
		if blocks(s.spheres[i].Sphere, ray, maxDistance) {
			return true
		}
	}
	return false
}

func blocks(shape geometry.Shape, ray core.Ray, maxDistance float64) bool {
	hit, ok := shape.Intersect(ray)
	return ok && hit.Distance+core.Bias < maxDistance
}

// InsideAnySphere reports whether p lies strictly inside any sphere of the scene
func (s *Scene) InsideAnySphere(p core.Vec3) bool {
	for i := range s.spheres {
		sph := s.spheres[i].Sphere
		if sph.Center.Subtract(p).Length() < sph.Radius {
			return true
		}
	}
	return false
}
