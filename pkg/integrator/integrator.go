package integrator

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns the radiance arriving along ray, following at most
	// depth surface interactions, and whether ray itself hit geometry.
	// Implementations must be safe for concurrent use on a shared, built scene.
	RayColor(ray core.Ray, scene *scene.Scene, depth int) (core.Vec3, bool)
}
