package renderer

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ToneMap compresses the radiance buffer in place with a global
// exposure curve followed by gamma correction. It returns the maximum
// absolute channel value the curve was normalized by.
func ToneMap(b *Buffer) float64 {
	total := 0.0
	for _, p := range b.Pixels {
		if m := p.MaxAbsComponent(); m > total {
			total = m
		}
	}

	curve := func(p float64) float64 {
		v := math.Pow(p*(p/(total*total)+1)/(p+1), 1/core.Gamma)
		if math.IsNaN(v) {
			return 0
		}
		return v
	}
	for i, p := range b.Pixels {
		b.Pixels[i] = p.Map(curve)
	}
	return total
}

// DepthMap normalizes a buffer of hit distances in place. Finite
// distances are divided by the largest finite distance; misses, stored as
// +Inf, become white. It returns the largest finite distance.
func DepthMap(b *Buffer) float64 {
	maxDistance := 0.0
	for _, p := range b.Pixels {
		if !math.IsInf(p.X, 1) && p.X > maxDistance {
			maxDistance = p.X
		}
	}

	white := core.NewVec3(1, 1, 1)
	for i, p := range b.Pixels {
		switch {
		case math.IsInf(p.X, 1):
			b.Pixels[i] = white
		case maxDistance > 0:
			b.Pixels[i] = p.Multiply(1 / maxDistance)
		default:
			b.Pixels[i] = core.Vec3{}
		}
	}
	return maxDistance
}

// NormalMap remaps stored normals from [-1, 1] to [0, 1] in place.
// Zero pixels are misses and stay black.
func NormalMap(b *Buffer) {
	for i, p := range b.Pixels {
		if !p.IsZero() {
			b.Pixels[i] = p.Multiply(0.5).AddScalar(0.5)
		}
	}
}
