package integrator

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// WhittedIntegrator implements recursive Whitted-style ray tracing: Phong
// local shading with hard shadows from point lights, plus one mirror and
// one refracted ray per hit weighted by the material albedo.
type WhittedIntegrator struct{}

// NewWhittedIntegrator creates a new Whitted integrator
func NewWhittedIntegrator() *WhittedIntegrator {
	return &WhittedIntegrator{}
}

// RayColor implements Integrator
func (w *WhittedIntegrator) RayColor(ray core.Ray, s *scene.Scene, depth int) (core.Vec3, bool) {
	return w.trace(ray, s, depth)
}

// Trace returns the radiance along ray. A depth of zero or less, or a ray
// that hits nothing, yields black.
func (w *WhittedIntegrator) Trace(ray core.Ray, s *scene.Scene, depth int) core.Vec3 {
	color, _ := w.trace(ray, s, depth)
	return color
}

func (w *WhittedIntegrator) trace(ray core.Ray, s *scene.Scene, depth int) (core.Vec3, bool) {
	if depth <= 0 {
		return core.Vec3{}, false
	}

	hit, ok := s.Closest(ray)
	if !ok {
		return core.Vec3{}, false
	}

	m := hit.Material
	normal := hit.Normal
	color := w.Shade(ray, hit, s)

	reflectShare := m.Albedo.Reflect()
	refractShare := m.Albedo.Refract()
	eta := 1.0 / m.RefractionIndex

	// A ray starting inside any sphere is treated as travelling through a
	// dielectric: it only refracts, leaving the medium with the full index.
	if s.InsideAnySphere(ray.Origin) {
		reflectShare, refractShare = 0, 1
		eta = m.RefractionIndex
	}

	if reflectShare != 0 {
		dir := geometry.Reflect(ray.Direction, normal).Normalize()
		reflected := core.NewRay(offsetOrigin(hit.Position, normal, dir), dir)
		color = color.Add(w.Trace(reflected, s, depth-1).Multiply(reflectShare))
	}

	refracted, ok := geometry.Refract(ray.Direction, normal, eta)
	if !ok {
		return color, true
	}

	if refractShare != 0 {
		dir := refracted.Normalize()
		transmitted := core.NewRay(offsetOrigin(hit.Position, normal, dir), dir)
		color = color.Add(w.Trace(transmitted, s, depth-1).Multiply(refractShare))
	}

	return color, true
}

// Shade computes the local illumination at a hit seen from ray.Origin:
// diffuse and specular terms from every unshadowed light, scaled by the
// local albedo, plus the ambient and emitted terms once.
func (w *WhittedIntegrator) Shade(ray core.Ray, hit scene.Hit, s *scene.Scene) core.Vec3 {
	m := hit.Material
	p := hit.Position
	normal := hit.Normal
	toViewer := ray.Origin.Subtract(p).Normalize()

	var total core.Vec3
	for _, light := range s.Lights() {
		fromLight := p.Subtract(light.Position)
		distance := fromLight.Length()
		fromLight = fromLight.Normalize()

		if s.Occluded(core.NewRay(light.Position, fromLight), distance) {
			continue
		}

		kd := math.Max(0, normal.Dot(fromLight.Negate()))
		total = total.Add(m.Diffuse.MultiplyVec(light.Intensity).Multiply(kd))

		spec := math.Max(0, geometry.Reflect(fromLight, normal).Dot(toViewer))
		ks := math.Pow(spec, m.SpecularExponent)
		total = total.Add(m.Specular.MultiplyVec(light.Intensity).Multiply(ks))
	}

	return total.Multiply(m.Albedo.Local()).Add(m.Ambient).Add(m.Intensity)
}

// offsetOrigin nudges p off the surface along the normal, on the side the
// outgoing direction leaves toward
func offsetOrigin(p, normal, dir core.Vec3) core.Vec3 {
	sign := 1.0
	if dir.Dot(normal) < 0 {
		sign = -1.0
	}
	return p.Add(normal.Multiply(sign * core.Bias))
}
