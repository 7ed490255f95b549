package scene

import (
	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// DefaultMaterialName names the material given to geometry that appears
// before any usemtl record
const DefaultMaterialName = "__default__"

// DefaultOBJDepth is the recursion depth used for scenes loaded from files
const DefaultOBJDepth = 4

// NewOBJScene loads an OBJ scene file and its material libraries
func NewOBJScene(filename string, cameraOverrides ...geometry.CameraConfig) (*Preset, error) {
	data, err := loaders.LoadOBJ(filename)
	if err != nil {
		return nil, err
	}

	s, err := BuildOBJScene(data)
	if err != nil {
		return nil, err
	}

	cameraConfig := geometry.DefaultCameraConfig()
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	return &Preset{Name: filename, Scene: s, Camera: cameraConfig, Depth: DefaultOBJDepth}, nil
}

// BuildOBJScene converts parsed OBJ data into a scene, resolving every
// usemtl name against the loaded material libraries
func BuildOBJScene(data *loaders.OBJScene) (*Scene, error) {
	b := NewBuilder()
	for _, m := range data.Materials {
		b.AddMaterial(m)
	}

	var defaultHandle material.Handle = material.NoHandle
	resolve := func(name string, line int) (material.Handle, error) {
		if name == "" {
			if defaultHandle == material.NoHandle {
				defaultHandle = b.AddMaterial(defaultMaterial())
			}
			return defaultHandle, nil
		}
		h, ok := b.LookupMaterial(name)
		if !ok {
			return material.NoHandle, errors.Errorf("%s:%d: unknown material %q", data.Source, line, name)
		}
		return h, nil
	}

	for _, face := range data.Faces {
		mat, err := resolve(face.Material, face.Line)
		if err != nil {
			return nil, err
		}

		v0 := data.Vertices[face.Vertices[0]]
		v1 := data.Vertices[face.Vertices[1]]
		v2 := data.Vertices[face.Vertices[2]]
		if !face.HasNormals {
			b.AddTriangle(v0, v1, v2, mat)
			continue
		}
		normals := [3]core.Vec3{
			data.Normals[face.Normals[0]],
			data.Normals[face.Normals[1]],
			data.Normals[face.Normals[2]],
		}
		b.AddSmoothTriangle(v0, v1, v2, normals, mat)
	}

	for _, sph := range data.Spheres {
		mat, err := resolve(sph.Material, sph.Line)
		if err != nil {
			return nil, err
		}
		b.AddSphere(sph.Center, sph.Radius, mat)
	}

	for _, light := range data.Lights {
		b.AddLight(light.Position, light.Intensity)
	}

	return b.Build()
}

// defaultMaterial is a plain grey diffuse surface
func defaultMaterial() material.Material {
	return material.NewLambertian(DefaultMaterialName, core.NewVec3(0.5, 0.5, 0.5))
}
