package renderer

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/integrator"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// DefaultTileSize is the edge length of a render tile in pixels
const DefaultTileSize = 64

// RenderOptions contains rendering configuration
type RenderOptions struct {
	Mode       Mode
	Depth      int // Maximum recursion depth, full mode only
	NumWorkers int // 0 = one per CPU
	TileSize   int // 0 = DefaultTileSize
}

// TileCompletionResult is passed to the tile callback when a tile finishes
type TileCompletionResult struct {
	TileX      int
	TileY      int
	TileNumber int // 1-based completion order
	TotalTiles int
	Bounds     image.Rectangle
	Stats      TileStats
}

// TileCallback is invoked once per finished tile. Calls never overlap.
type TileCallback func(TileCompletionResult)

// Raytracer renders a scene through a camera in one of the render modes
type Raytracer struct {
	scene      *scene.Scene
	camera     *geometry.Camera
	integrator integrator.Integrator
	options    RenderOptions
	logger     core.Logger
}

// NewRaytracer creates a raytracer. A nil logger discards output.
func NewRaytracer(s *scene.Scene, camera *geometry.Camera, options RenderOptions, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = core.NopLogger()
	}
	if options.TileSize <= 0 {
		options.TileSize = DefaultTileSize
	}
	return &Raytracer{
		scene:      s,
		camera:     camera,
		integrator: integrator.NewWhittedIntegrator(),
		options:    options,
		logger:     logger,
	}
}

// SetIntegrator replaces the integrator used in full mode
func (rt *Raytracer) SetIntegrator(integratorInst integrator.Integrator) {
	rt.integrator = integratorInst
}

// Options returns the effective render options
func (rt *Raytracer) Options() RenderOptions {
	return rt.options
}

// RenderBuffer traces every pixel into a raw buffer without any display
// mapping. Full mode holds radiance, depth mode holds distances and
// normal mode holds unit normals.
func (rt *Raytracer) RenderBuffer(ctx context.Context, callback TileCallback) (*Buffer, RenderStats, error) {
	cfg := rt.camera.Config()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, RenderStats{}, errors.Errorf("invalid image size %dx%d", cfg.Width, cfg.Height)
	}

	start := time.Now()
	buf := NewBuffer(cfg.Width, cfg.Height)
	tiles := NewTileGrid(cfg.Width, cfg.Height, rt.options.TileSize)
	tilesX := (cfg.Width + rt.options.TileSize - 1) / rt.options.TileSize
	pool := NewWorkerPool(rt.options.NumWorkers)
	tr := NewTileRenderer(rt.scene, rt.camera, rt.integrator, rt.options.Mode, rt.options.Depth)

	stats := RenderStats{
		Mode:    rt.options.Mode,
		Width:   cfg.Width,
		Height:  cfg.Height,
		Tiles:   len(tiles),
		Workers: pool.GetNumWorkers(),
	}

	rt.logger.Info("render started",
		"mode", rt.options.Mode,
		"width", cfg.Width,
		"height", cfg.Height,
		"depth", rt.options.Depth,
		"primitives", rt.scene.GetPrimitiveCount(),
		"tiles", len(tiles),
		"workers", stats.Workers)

	// done runs under the pool's lock, so stats needs no extra guard
	err := pool.Run(ctx, tiles,
		func(tile Tile) (TileStats, error) {
			return tr.RenderTileBounds(tile.Bounds, buf), nil
		},
		func(tile Tile, number int, tileStats TileStats) {
			stats.add(tileStats)
			if callback != nil {
				callback(TileCompletionResult{
					TileX:      tile.ID % tilesX,
					TileY:      tile.ID / tilesX,
					TileNumber: number,
					TotalTiles: len(tiles),
					Bounds:     tile.Bounds,
					Stats:      tileStats,
				})
			}
		})
	stats.Elapsed = time.Since(start)
	if err != nil {
		rt.logger.Warn("render stopped", "error", err, "elapsed", stats.Elapsed)
		return nil, stats, errors.Wrap(err, "render")
	}
	return buf, stats, nil
}

// Render traces the scene and maps the result to an 8-bit image
func (rt *Raytracer) Render(ctx context.Context, callback TileCallback) (*image.RGBA, RenderStats, error) {
	buf, stats, err := rt.RenderBuffer(ctx, callback)
	if err != nil {
		return nil, stats, err
	}

	switch rt.options.Mode {
	case ModeDepth:
		stats.MaxDistance = DepthMap(buf)
	case ModeNormal:
		NormalMap(buf)
	default:
		stats.MaxRadiance = ToneMap(buf)
	}

	rt.logger.Info("render finished",
		"mode", rt.options.Mode,
		"elapsed", stats.Elapsed,
		"hits", stats.PrimaryHits,
		"pixels", stats.TotalPixels,
		"maxRadiance", stats.MaxRadiance,
		"maxDistance", stats.MaxDistance)

	return buf.ToRGBA(), stats, nil
}
