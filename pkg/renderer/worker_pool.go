package renderer

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs tile tasks on a bounded number of goroutines
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a worker pool. Zero or negative means one worker per CPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run calls render for every tile concurrently and done for each finished
// tile. done calls are serialized and receive the 1-based completion order.
// Run stops scheduling new tiles once ctx is cancelled or a tile fails.
func (wp *WorkerPool) Run(ctx context.Context, tiles []Tile, render func(Tile) (TileStats, error), done func(tile Tile, number int, stats TileStats)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)

	var mu sync.Mutex
	completed := 0

	for _, tile := range tiles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stats, err := render(tile)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			completed++
			if done != nil {
				done(tile, completed, stats)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
