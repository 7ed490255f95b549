// Package config reads render settings from YAML files.
package config

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// Config is the top-level render configuration. Zero camera fields and a
// nil depth mean "use the scene's own recommendation".
type Config struct {
	Scene  string       `yaml:"scene"`
	Output string       `yaml:"output"`
	Camera CameraConfig `yaml:"camera"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

// CameraConfig overrides the scene camera
type CameraConfig struct {
	Width    int        `yaml:"width"`
	Height   int        `yaml:"height"`
	FOV      float64    `yaml:"fov"` // radians
	LookFrom [3]float64 `yaml:"lookFrom"`
	LookTo   [3]float64 `yaml:"lookTo"`
}

// RenderConfig controls the render loop
type RenderConfig struct {
	Mode     renderer.Mode `yaml:"mode"`
	Depth    *int          `yaml:"depth"`
	Workers  int           `yaml:"workers"`
	TileSize int           `yaml:"tileSize"`
}

// LogConfig selects the log handler
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Scene: "default",
		Render: RenderConfig{
			Mode:     renderer.ModeFull,
			TileSize: renderer.DefaultTileSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads and validates a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Scene == "" {
		return errors.New("scene must be set")
	}
	if c.Camera.Width < 0 || c.Camera.Height < 0 {
		return errors.Errorf("camera size %dx%d must be positive", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FOV < 0 || c.Camera.FOV >= math.Pi {
		return errors.Errorf("camera fov %v must be in (0, pi) radians", c.Camera.FOV)
	}
	if c.Camera.LookFrom == c.Camera.LookTo && c.Camera.LookFrom != ([3]float64{}) {
		return errors.New("camera lookFrom and lookTo must differ")
	}
	if c.Render.Depth != nil && *c.Render.Depth < 0 {
		return errors.Errorf("render depth %d must not be negative", *c.Render.Depth)
	}
	if c.Render.Workers < 0 {
		return errors.Errorf("render workers %d must not be negative", c.Render.Workers)
	}
	if c.Render.TileSize < 0 {
		return errors.Errorf("render tileSize %d must not be negative", c.Render.TileSize)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return errors.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	return nil
}

// CameraOverride converts the camera section into overrides for
// geometry.MergeCameraConfig
func (c *Config) CameraOverride() geometry.CameraConfig {
	return geometry.CameraConfig{
		Width:    c.Camera.Width,
		Height:   c.Camera.Height,
		FOV:      c.Camera.FOV,
		LookFrom: vec(c.Camera.LookFrom),
		LookTo:   vec(c.Camera.LookTo),
	}
}

// RenderOptions returns renderer options, falling back to sceneDepth when
// no depth is configured
func (c *Config) RenderOptions(sceneDepth int) renderer.RenderOptions {
	depth := sceneDepth
	if c.Render.Depth != nil {
		depth = *c.Render.Depth
	}
	return renderer.RenderOptions{
		Mode:       c.Render.Mode,
		Depth:      depth,
		NumWorkers: c.Render.Workers,
		TileSize:   c.Render.TileSize,
	}
}

// NewLogger builds a slog logger writing to w
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Log.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.Wrapf(err, "log level %q", l.Level)
	}
	return level, nil
}

func vec(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
