package renderer

import (
	"image"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/integrator"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Row-major tile index
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []Tile {
	if tileSize <= 0 {
		tileSize = max(width, height, 1)
	}

	var tiles []Tile
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, Tile{ID: len(tiles), Bounds: image.Rect(x0, y0, x1, y1)})
		}
	}
	return tiles
}

// TileRenderer computes raw per-pixel values for one render mode
type TileRenderer struct {
	scene      *scene.Scene
	camera     *geometry.Camera
	integrator integrator.Integrator
	mode       Mode
	depth      int
}

// NewTileRenderer creates a tile renderer for the given scene and camera
func NewTileRenderer(s *scene.Scene, camera *geometry.Camera, integratorInst integrator.Integrator, mode Mode, depth int) *TileRenderer {
	return &TileRenderer{
		scene:      s,
		camera:     camera,
		integrator: integratorInst,
		mode:       mode,
		depth:      depth,
	}
}

// RenderTileBounds fills buf within bounds. Full mode stores radiance,
// depth mode stores the hit distance in every channel (+Inf for a miss)
// and normal mode stores the hit normal (zero for a miss). Tiles must not
// overlap when rendered concurrently.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, buf *Buffer) TileStats {
	stats := TileStats{Pixels: bounds.Dx() * bounds.Dy()}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ray := tr.camera.GetRay(i, j)
			buf.Set(i, j, tr.renderPixel(ray, &stats))
		}
	}
	return stats
}

func (tr *TileRenderer) renderPixel(ray core.Ray, stats *TileStats) core.Vec3 {
	switch tr.mode {
	case ModeDepth:
		hit, ok := tr.scene.Closest(ray)
		if !ok {
			inf := math.Inf(1)
			return core.NewVec3(inf, inf, inf)
		}
		stats.PrimaryHits++
		return core.NewVec3(hit.Distance, hit.Distance, hit.Distance)

	case ModeNormal:
		hit, ok := tr.scene.Closest(ray)
		if !ok {
			return core.Vec3{}
		}
		stats.PrimaryHits++
		return hit.Normal

	default:
		color, hit := tr.integrator.RayColor(ray, tr.scene, tr.depth)
		if hit {
			stats.PrimaryHits++
		}
		return color
	}
}
