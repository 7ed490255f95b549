package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/config"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line
type options struct {
	configPath string
	config     *config.Config
}

// parseFlags reads the command line. Flags that are set explicitly take
// precedence over values from the -config file.
func parseFlags(args []string, stdout io.Writer) (*options, error) {
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stdout)

	configPath := fs.String("config", "", "YAML render configuration file")
	sceneName := fs.String("scene", "default", "Scene: "+strings.Join(scene.Names(), ", ")+" or a path to an .obj or .ply file")
	mode := fs.String("mode", "full", "Render mode: full, depth or normal")
	depth := fs.Int("depth", 0, "Maximum recursion depth (default: scene's own)")
	width := fs.Int("width", 0, "Image width in pixels (default: scene's own)")
	height := fs.Int("height", 0, "Image height in pixels (default: scene's own)")
	fov := fs.Float64("fov", 0, "Field of view in degrees (default: scene's own)")
	output := fs.String("output", "", "Output path or blob URL (default: output/<scene>/render_<timestamp>.png)")
	workers := fs.Int("workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn or error")
	help := fs.Bool("help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *help {
		printHelp(fs, stdout)
		return nil, flag.ErrHelp
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			cfg.Scene = *sceneName
		case "mode":
			m, err := renderer.ParseMode(*mode)
			if err != nil {
				flagErr = err
			}
			cfg.Render.Mode = m
		case "depth":
			d := *depth
			cfg.Render.Depth = &d
		case "width":
			cfg.Camera.Width = *width
		case "height":
			cfg.Camera.Height = *height
		case "fov":
			cfg.Camera.FOV = *fov * math.Pi / 180
		case "output":
			cfg.Output = *output
		case "workers":
			cfg.Render.Workers = *workers
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &options{configPath: *configPath, config: cfg}, nil
}

func printHelp(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Whitted Raytracer")
	fmt.Fprintln(w, "Usage: raytracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, name := range scene.Names() {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintln(w, "  <file>.obj - OBJ scene with optional mtllib materials")
	fmt.Fprintln(w, "  <file>.ply - PLY mesh lit from the camera")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output will be saved to output/<scene>/render_<timestamp>.png")
}

// run renders one image as configured by args
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}
	cfg := opts.config

	logger, err := cfg.NewLogger(stderr)
	if err != nil {
		return err
	}

	preset, err := scene.Create(cfg.Scene, cfg.CameraOverride())
	if err != nil {
		return err
	}
	logger.Info("scene loaded",
		"scene", preset.Name,
		"primitives", preset.Scene.GetPrimitiveCount(),
		"lights", len(preset.Scene.Lights()),
		"materials", preset.Scene.Materials().Len())

	camera := geometry.NewCamera(preset.Camera)
	rt := renderer.NewRaytracer(preset.Scene, camera, cfg.RenderOptions(preset.Depth), logger)

	img, stats, err := rt.Render(ctx, func(r renderer.TileCompletionResult) {
		logger.Debug("tile done", "tile", r.TileNumber, "of", r.TotalTiles, "x", r.TileX, "y", r.TileY)
	})
	if err != nil {
		return err
	}

	dest := cfg.Output
	if dest == "" {
		dest = defaultOutputPath(cfg.Scene, time.Now())
	}
	if err := loaders.WriteImage(ctx, img, dest); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Render completed in %v (%dx%d, %s mode, %.1f%% primary hits)\n",
		stats.Elapsed, stats.Width, stats.Height, stats.Mode, 100*stats.HitRatio())
	fmt.Fprintf(stdout, "Render saved as %s\n", dest)
	return nil
}

// defaultOutputPath returns output/<scene>/render_<timestamp>.png. Scene
// file paths are reduced to the file's base name.
func defaultOutputPath(sceneName string, now time.Time) string {
	dir := sceneName
	if ext := filepath.Ext(sceneName); ext != "" {
		dir = strings.TrimSuffix(filepath.Base(sceneName), ext)
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", dir, fmt.Sprintf("render_%s.png", timestamp))
}
