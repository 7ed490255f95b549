package scene

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// builtinScene describes a scene constructed in code
type builtinScene struct {
	description string
	create      func(override geometry.CameraConfig) (*Preset, error)
}

var builtins = map[string]builtinScene{
	"default": {
		description: "Matte, mirror and glass spheres on a floor",
		create: func(override geometry.CameraConfig) (*Preset, error) {
			return NewDefaultScene(override)
		},
	},
	"cornell": {
		description: "Triangle Cornell box with a smooth-shaded back wall",
		create: func(override geometry.CameraConfig) (*Preset, error) {
			return NewCornellScene(override)
		},
	},
	"spheregrid": {
		description: "Seeded grid of randomly colored spheres",
		create: func(override geometry.CameraConfig) (*Preset, error) {
			return NewSphereGridScene(DefaultSphereGridSeed, 8, override)
		},
	},
}

// Names returns the built-in scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBuiltin reports whether name is a built-in scene
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// Create builds a scene by built-in name or from an .obj or .ply file path. The
// optional camera override is merged onto the scene's own camera.
func Create(name string, cameraOverrides ...geometry.CameraConfig) (*Preset, error) {
	var override geometry.CameraConfig
	if len(cameraOverrides) > 0 {
		override = cameraOverrides[0]
	}

	if b, ok := builtins[name]; ok {
		return b.create(override)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".obj":
		return NewOBJScene(name, override)
	case ".ply":
		return NewPLYScene(name, override)
	}
	return nil, errors.Errorf("unknown scene %q (built-in scenes: %s)", name, strings.Join(Names(), ", "))
}
