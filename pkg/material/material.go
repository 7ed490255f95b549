package material

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Albedo splits a surface's outgoing radiance into local shading (index 0),
// the reflected ray (index 1) and the refracted ray (index 2). The weights
// are additive and need not sum to one.
type Albedo [3]float64

// Local returns the weight of diffuse and specular shading
func (a Albedo) Local() float64 { return a[0] }

// Reflect returns the weight of the reflected ray
func (a Albedo) Reflect() float64 { return a[1] }

// Refract returns the weight of the refracted ray
func (a Albedo) Refract() float64 { return a[2] }

// Material is a Phong-style surface description
type Material struct {
	Name             string
	Ambient          core.Vec3 // Added once regardless of lights
	Diffuse          core.Vec3
	Specular         core.Vec3
	Intensity        core.Vec3 // Emitted radiance
	SpecularExponent float64
	RefractionIndex  float64
	Albedo           Albedo
}

// New returns a black material with the defaults used for MTL files:
// specular exponent 1, refraction index 1 and pure local shading.
func New(name string) Material {
	return Material{
		Name:             name,
		SpecularExponent: 1.0,
		RefractionIndex:  1.0,
		Albedo:           Albedo{1, 0, 0},
	}
}

// NewLambertian creates a matte material
func NewLambertian(name string, diffuse core.Vec3) Material {
	m := New(name)
	m.Diffuse = diffuse
	return m
}

// NewMetal creates a shiny material that mixes local shading with a mirror reflection
func NewMetal(name string, diffuse core.Vec3, reflectivity, shininess float64) Material {
	m := New(name)
	m.Diffuse = diffuse
	m.Specular = core.NewVec3(1, 1, 1)
	m.SpecularExponent = shininess
	m.Albedo = Albedo{1 - reflectivity, reflectivity, 0}
	return m
}

// NewDielectric creates a mostly transparent glass-like material
func NewDielectric(name string, refractionIndex float64) Material {
	m := New(name)
	m.Specular = core.NewVec3(1, 1, 1)
	m.SpecularExponent = 125
	m.RefractionIndex = refractionIndex
	m.Albedo = Albedo{0.1, 0.1, 0.8}
	return m
}

// NewEmissive creates a material that glows with the given intensity
func NewEmissive(name string, intensity core.Vec3) Material {
	m := New(name)
	m.Intensity = intensity
	return m
}
