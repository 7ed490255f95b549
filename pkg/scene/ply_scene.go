package scene

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
)

// NewPLYScene loads a PLY mesh with the default material. PLY files carry
// no lights, so a white point light is placed at the camera.
func NewPLYScene(filename string, cameraOverrides ...geometry.CameraConfig) (*Preset, error) {
	data, err := loaders.LoadPLY(filename)
	if err != nil {
		return nil, err
	}

	cameraConfig := geometry.DefaultCameraConfig()
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}
	data.Lights = append(data.Lights, loaders.OBJLight{
		Position:  cameraConfig.LookFrom,
		Intensity: core.NewVec3(1, 1, 1),
	})

	s, err := BuildOBJScene(data)
	if err != nil {
		return nil, err
	}
	return &Preset{Name: filename, Scene: s, Camera: cameraConfig, Depth: DefaultOBJDepth}, nil
}
