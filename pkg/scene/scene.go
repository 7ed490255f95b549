package scene

import (
	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Object is a triangle face with its material and optional vertex normals
type Object struct {
	Triangle geometry.Triangle
	Material material.Handle
	Normals  [3]core.Vec3
	// HasNormals is set when every vertex supplied a normal; the shading
	// normal is then interpolated instead of the flat face normal.
	HasNormals bool
}

// SphereObject is a sphere with its material
type SphereObject struct {
	Sphere   geometry.Sphere
	Material material.Handle
}

// Light is a point light source
type Light struct {
	Position  core.Vec3
	Intensity core.Vec3 // RGB weight
}

// Scene is an immutable snapshot of everything a render reads.
// It is safe for concurrent use once built.
type Scene struct {
	objects   []Object
	spheres   []SphereObject
	lights    []Light
	materials *material.Table
}

// Objects returns the triangle objects. Callers must not modify the slice.
func (s *Scene) Objects() []Object { return s.objects }

// Spheres returns the sphere objects. Callers must not modify the slice.
func (s *Scene) Spheres() []SphereObject { return s.spheres }

// Lights returns the point lights. Callers must not modify the slice.
func (s *Scene) Lights() []Light { return s.lights }

// Materials returns the scene's material table
func (s *Scene) Materials() *material.Table { return s.materials }

// Material resolves a material handle
func (s *Scene) Material(h material.Handle) *material.Material {
	return s.materials.Get(h)
}

// GetPrimitiveCount returns the number of intersectable primitives
func (s *Scene) GetPrimitiveCount() int {
	return len(s.objects) + len(s.spheres)
}

// Builder assembles a Scene. It is not safe for concurrent use.
type Builder struct {
	objects   []Object
	spheres   []SphereObject
	lights    []Light
	materials *material.Table
}

// NewBuilder creates a builder with an empty material table
func NewBuilder() *Builder {
	return &Builder{materials: material.NewTable()}
}

// AddMaterial registers a material and returns its handle
func (b *Builder) AddMaterial(m material.Material) material.Handle {
	return b.materials.Add(m)
}

// LookupMaterial finds a previously registered material by name
func (b *Builder) LookupMaterial(name string) (material.Handle, bool) {
	return b.materials.Lookup(name)
}

// AddTriangle adds a flat-shaded triangle
func (b *Builder) AddTriangle(v0, v1, v2 core.Vec3, mat material.Handle) *Builder {
	b.objects = append(b.objects, Object{
		Triangle: geometry.NewTriangle(v0, v1, v2),
		Material: mat,
	})
	return b
}

// AddSmoothTriangle adds a triangle shaded with interpolated vertex normals
func (b *Builder) AddSmoothTriangle(v0, v1, v2 core.Vec3, normals [3]core.Vec3, mat material.Handle) *Builder {
	b.objects = append(b.objects, Object{
		Triangle:   geometry.NewTriangle(v0, v1, v2),
		Material:   mat,
		Normals:    normals,
		HasNormals: true,
	})
	return b
}

// AddQuad adds the quad corner, corner+u, corner+u+v, corner+v as two triangles
func (b *Builder) AddQuad(corner, u, v core.Vec3, mat material.Handle) *Builder {
	p1 := corner.Add(u)
	p2 := p1.Add(v)
	p3 := corner.Add(v)
	return b.AddTriangle(corner, p1, p2, mat).AddTriangle(corner, p2, p3, mat)
}

// AddSphere adds a sphere
func (b *Builder) AddSphere(center core.Vec3, radius float64, mat material.Handle) *Builder {
	b.spheres = append(b.spheres, SphereObject{
		Sphere:   geometry.NewSphere(center, radius),
		Material: mat,
	})
	return b
}

// AddLight adds a point light
func (b *Builder) AddLight(position, intensity core.Vec3) *Builder {
	b.lights = append(b.lights, Light{Position: position, Intensity: intensity})
	return b
}

// Build validates material references and freezes the scene.
// The builder must not be used afterwards.
func (b *Builder) Build() (*Scene, error) {
	for i, obj := range b.objects {
		if !b.materials.Valid(obj.Material) {
			return nil, errors.Errorf("object %d references unknown material handle %d", i, obj.Material)
		}
	}
	for i, sph := range b.spheres {
		if !b.materials.Valid(sph.Material) {
			return nil, errors.Errorf("sphere %d references unknown material handle %d", i, sph.Material)
		}
		if sph.Sphere.Radius <= 0 {
			return nil, errors.Errorf("sphere %d has non-positive radius %g", i, sph.Sphere.Radius)
		}
	}

	s := &Scene{
		objects:   b.objects,
		spheres:   b.spheres,
		lights:    b.lights,
		materials: b.materials,
	}
	*b = Builder{}
	return s, nil
}
