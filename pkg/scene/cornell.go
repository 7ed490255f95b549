package scene

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// NewCornellScene creates an open-front Cornell box built from triangles.
// The back wall is smooth shaded with vertex normals bent toward the box
// center, and the box holds a mirror sphere and a glass sphere.
func NewCornellScene(cameraOverrides ...geometry.CameraConfig) (*Preset, error) {
	cameraConfig := geometry.CameraConfig{
		Width:    500,
		Height:   500,
		FOV:      math.Pi / 3,
		LookFrom: core.NewVec3(0, 1, 1.6),
		LookTo:   core.NewVec3(0, 1, -2),
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	b := NewBuilder()

	wallAmbient := core.NewVec3(0.03, 0.03, 0.03)
	white := material.NewLambertian("white", core.NewVec3(0.73, 0.73, 0.73))
	white.Ambient = wallAmbient
	red := material.NewLambertian("red", core.NewVec3(0.65, 0.05, 0.05))
	red.Ambient = wallAmbient
	green := material.NewLambertian("green", core.NewVec3(0.12, 0.45, 0.15))
	green.Ambient = wallAmbient
	panel := material.NewMetal("panel", core.NewVec3(0.6, 0.6, 0.7), 0.2, 60)
	panel.Ambient = wallAmbient

	whiteMat := b.AddMaterial(white)
	redMat := b.AddMaterial(red)
	greenMat := b.AddMaterial(green)
	panelMat := b.AddMaterial(panel)
	mirrorMat := b.AddMaterial(material.NewMetal("mirror", core.NewVec3(0.1, 0.1, 0.1), 0.9, 250))
	glassMat := b.AddMaterial(material.NewDielectric("glass", 1.5))
	lampMat := b.AddMaterial(material.NewEmissive("lamp", core.NewVec3(1, 1, 0.9)))

	// Box spans x in [-1, 1], y in [0, 2], z in [-3, -1], open toward +Z
	const (
		left, right  = -1.0, 1.0
		bottom, top  = 0.0, 2.0
		back, front  = -3.0, -1.0
		boxWidth     = right - left
		boxHeight    = top - bottom
		boxDepth     = front - back
		lampHalfSize = 0.25
	)

	b.AddQuad(core.NewVec3(left, bottom, back), core.NewVec3(boxWidth, 0, 0), core.NewVec3(0, 0, boxDepth), whiteMat) // floor
	b.AddQuad(core.NewVec3(left, top, back), core.NewVec3(0, 0, boxDepth), core.NewVec3(boxWidth, 0, 0), whiteMat)    // ceiling
	b.AddQuad(core.NewVec3(left, bottom, back), core.NewVec3(0, boxHeight, 0), core.NewVec3(0, 0, boxDepth), redMat)  // left
	b.AddQuad(core.NewVec3(right, bottom, back), core.NewVec3(0, 0, boxDepth), core.NewVec3(0, boxHeight, 0), greenMat)

	// Back wall, slightly in front of the plane z=back so it reads as a panel
	z := back + 0.001
	p00 := core.NewVec3(left, bottom, z)
	p10 := core.NewVec3(right, bottom, z)
	p11 := core.NewVec3(right, top, z)
	p01 := core.NewVec3(left, top, z)
	bend := func(p core.Vec3) core.Vec3 {
		// Tilt each corner normal toward the middle of the wall
		return core.NewVec3(-p.X*0.3, (1-p.Y)*0.3, 1).Normalize()
	}
	b.AddSmoothTriangle(p00, p10, p11, [3]core.Vec3{bend(p00), bend(p10), bend(p11)}, panelMat)
	b.AddSmoothTriangle(p00, p11, p01, [3]core.Vec3{bend(p00), bend(p11), bend(p01)}, panelMat)

	// Emissive lamp just under the ceiling, the point light sits below it
	b.AddQuad(
		core.NewVec3(-lampHalfSize, top-0.01, -2-lampHalfSize),
		core.NewVec3(2*lampHalfSize, 0, 0),
		core.NewVec3(0, 0, 2*lampHalfSize),
		lampMat,
	)
	b.AddLight(core.NewVec3(0, top-0.1, -2), core.NewVec3(1, 1, 1))
	b.AddLight(core.NewVec3(0, 1, 1), core.NewVec3(0.25, 0.25, 0.25))

	b.AddSphere(core.NewVec3(-0.45, 0.4, -2.3), 0.4, mirrorMat)
	b.AddSphere(core.NewVec3(0.5, 0.35, -1.7), 0.35, glassMat)

	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Preset{Name: "cornell", Scene: s, Camera: cameraConfig, Depth: 6}, nil
}
