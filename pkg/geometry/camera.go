package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

var (
	worldUp      = core.NewVec3(0, 1, 0)
	fallbackAxis = core.NewVec3(1, 0, 0)
)

// CameraConfig contains the screen and view settings for generating camera rays
type CameraConfig struct {
	Width    int       // Screen width in pixels
	Height   int       // Screen height in pixels
	FOV      float64   // Field of view in radians
	LookFrom core.Vec3 // Eye position
	LookTo   core.Vec3 // Point the camera looks at
}

// DefaultCameraConfig returns a 90 degree camera at the origin looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Width:    640,
		Height:   480,
		FOV:      math.Pi / 2,
		LookFrom: core.NewVec3(0, 0, 0),
		LookTo:   core.NewVec3(0, 0, -1),
	}
}

// MergeCameraConfig overlays the non-zero fields of override onto base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if override.Width > 0 {
		result.Width = override.Width
	}
	if override.Height > 0 {
		result.Height = override.Height
	}
	if override.FOV > 0 {
		result.FOV = override.FOV
	}
	if override.LookFrom != override.LookTo {
		result.LookFrom = override.LookFrom
		result.LookTo = override.LookTo
	}
	return result
}

// Camera maps pixel coordinates to world-space rays
type Camera struct {
	config  CameraConfig
	forward core.Vec3 // Points from the target back to the eye
	right   core.Vec3
	up      core.Vec3
	aspect  float64
	scale   float64
}

// NewCamera builds the orthonormal view basis for the configuration
func NewCamera(config CameraConfig) *Camera {
	forward := config.LookFrom.Subtract(config.LookTo).Normalize()

	right := worldUp.Cross(forward)
	if right.IsZero() {
		// Looking straight up or down
		right = fallbackAxis
	}
	right = right.Normalize()

	up := forward.Cross(right)
	if up.IsZero() {
		up = fallbackAxis
	}
	up = up.Normalize()

	return &Camera{
		config:  config,
		forward: forward,
		right:   right,
		up:      up,
		aspect:  float64(config.Width) / float64(config.Height),
		scale:   math.Tan(config.FOV / 2),
	}
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Forward returns the unit viewing direction (from eye toward target)
func (c *Camera) Forward() core.Vec3 {
	return c.forward.Negate()
}

// GetRay returns the ray through the center of pixel (i, j), where i is the
// column and j is the row counted from the top
func (c *Camera) GetRay(i, j int) core.Ray {
	x := (2*(float64(i)+0.5)/float64(c.config.Width) - 1) * c.aspect * c.scale
	y := (1 - 2*(float64(j)+0.5)/float64(c.config.Height)) * c.scale

	target := c.right.Multiply(x).
		Add(c.up.Multiply(y)).
		Subtract(c.forward).
		Add(c.config.LookFrom)

	return core.NewRay(c.config.LookFrom, target.Subtract(c.config.LookFrom).Normalize())
}
