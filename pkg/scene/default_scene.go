package scene

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Preset is a built scene together with the camera and recursion depth
// it is meant to be rendered with
type Preset struct {
	Name   string
	Scene  *Scene
	Camera geometry.CameraConfig
	Depth  int
}

// NewDefaultScene creates three spheres (matte, mirror and glass) resting
// on a floor, lit by two point lights
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) (*Preset, error) {
	cameraConfig := geometry.CameraConfig{
		Width:    640,
		Height:   480,
		FOV:      math.Pi / 3,
		LookFrom: core.NewVec3(0, 1, 3),
		LookTo:   core.NewVec3(0, 0.5, -1),
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	b := NewBuilder()

	floor := material.NewLambertian("floor", core.NewVec3(0.6, 0.6, 0.5))
	floor.Ambient = core.NewVec3(0.05, 0.05, 0.05)
	floorMat := b.AddMaterial(floor)

	red := material.NewMetal("red", core.NewVec3(0.7, 0.15, 0.1), 0.1, 30)
	red.Ambient = core.NewVec3(0.03, 0.01, 0.01)
	redMat := b.AddMaterial(red)

	mirrorMat := b.AddMaterial(material.NewMetal("mirror", core.NewVec3(0.2, 0.2, 0.2), 0.85, 200))
	glassMat := b.AddMaterial(material.NewDielectric("glass", 1.5))

	// Large floor made of two triangles
	b.AddQuad(core.NewVec3(-6, 0, 4), core.NewVec3(12, 0, 0), core.NewVec3(0, 0, -12), floorMat)

	b.AddSphere(core.NewVec3(-1.2, 0.5, -1), 0.5, redMat)
	b.AddSphere(core.NewVec3(0, 0.6, -1.8), 0.6, mirrorMat)
	b.AddSphere(core.NewVec3(1.1, 0.45, -0.6), 0.45, glassMat)

	b.AddLight(core.NewVec3(-4, 6, 4), core.NewVec3(0.9, 0.9, 0.85))
	b.AddLight(core.NewVec3(5, 3, 1), core.NewVec3(0.4, 0.4, 0.5))

	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Preset{Name: "default", Scene: s, Camera: cameraConfig, Depth: 5}, nil
}
