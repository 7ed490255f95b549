package scene

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"pgregory.net/rand"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// DefaultSphereGridSeed is the seed used by the registered spheregrid scene
const DefaultSphereGridSeed = 42

// hsvToRGB converts hue (degrees), saturation and value to RGB
func hsvToRGB(h, s, v float64) core.Vec3 {
	h = math.Mod(h, 360) / 60
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h, 2)-1))
	m := v - c

	var r, g, b float64
	switch int(h) {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return core.NewVec3(r+m, g+m, b+m)
}

// NewSphereGridScene creates a gridSize x gridSize grid of spheres on a floor.
// Colors and materials are drawn from a generator seeded with seed, so the
// same seed always produces the same scene.
func NewSphereGridScene(seed uint64, gridSize int, cameraOverrides ...geometry.CameraConfig) (*Preset, error) {
	if gridSize < 1 {
		return nil, errors.Errorf("grid size must be positive, got %d", gridSize)
	}

	const targetArea = 9.0
	center := core.NewVec3(4.5, 0, 4.5)

	cameraConfig := geometry.CameraConfig{
		Width:    800,
		Height:   450,
		FOV:      40 * math.Pi / 180,
		LookFrom: core.NewVec3(4.5, 6, 18),
		LookTo:   core.NewVec3(4.5, 0.8, 4.5),
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	rng := rand.New(seed)
	b := NewBuilder()

	ground := material.NewLambertian("ground", core.NewVec3(0.5, 0.5, 0.5))
	ground.Ambient = core.NewVec3(0.04, 0.04, 0.04)
	groundMat := b.AddMaterial(ground)
	b.AddQuad(
		center.Add(core.NewVec3(-20, 0, 20)),
		core.NewVec3(40, 0, 0),
		core.NewVec3(0, 0, -40),
		groundMat,
	)

	spacing := targetArea
	if gridSize > 1 {
		spacing = targetArea / float64(gridSize-1)
	}
	radius := math.Max(0.02, math.Min(0.35, spacing*0.35))

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2 + center.X
			z := float64(j)*spacing - targetArea/2 + center.Z
			if gridSize == 1 {
				x, z = center.X, center.Z
			}

			name := fmt.Sprintf("sphere_%d_%d", i, j)
			color := hsvToRGB(rng.Float64()*360, 0.5+0.4*rng.Float64(), 0.9)

			var m material.Material
			switch rng.Intn(4) {
			case 0:
				m = material.NewDielectric(name, 1.3+0.4*rng.Float64())
			case 1:
				m = material.NewMetal(name, color, 0.3+0.6*rng.Float64(), 50+150*rng.Float64())
			default:
				m = material.NewLambertian(name, color)
				m.Specular = core.NewVec3(0.3, 0.3, 0.3)
				m.SpecularExponent = 10
			}
			m.Ambient = color.Multiply(0.03)

			b.AddSphere(core.NewVec3(x, radius, z), radius, b.AddMaterial(m))
		}
	}

	b.AddLight(core.NewVec3(20, 25, 20), core.NewVec3(0.8, 0.78, 0.7))
	b.AddLight(core.NewVec3(-10, 15, 10), core.NewVec3(0.3, 0.3, 0.35))

	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Preset{Name: "spheregrid", Scene: s, Camera: cameraConfig, Depth: 4}, nil
}
