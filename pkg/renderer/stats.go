package renderer

import "time"

// TileStats contains counts gathered while rendering one tile
type TileStats struct {
	Pixels      int // Pixels rendered
	PrimaryHits int // Camera rays that hit geometry
}

// RenderStats contains statistics about a complete render
type RenderStats struct {
	Mode        Mode
	Width       int
	Height      int
	TotalPixels int
	PrimaryHits int
	Tiles       int
	Workers     int
	MaxRadiance float64 // Tone mapping normalization, full mode only
	MaxDistance float64 // Farthest finite hit, depth mode only
	Elapsed     time.Duration
}

// add folds one tile's counts into the totals
func (s *RenderStats) add(tile TileStats) {
	s.TotalPixels += tile.Pixels
	s.PrimaryHits += tile.PrimaryHits
}

// HitRatio returns the fraction of camera rays that hit geometry
func (s RenderStats) HitRatio() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.PrimaryHits) / float64(s.TotalPixels)
}
