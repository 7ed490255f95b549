package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// TileUpdate reports progress when a tile finishes. Pixel values are
// only final after global tone mapping, so tiles carry no image data.
type TileUpdate struct {
	TileX      int    `json:"tileX"`
	TileY      int    `json:"tileY"`
	TileNumber int    `json:"tileNumber"` // Completion order (1-based)
	TotalTiles int    `json:"totalTiles"`
	Bounds     [4]int `json:"bounds"` // x0, y0, x1, y1
}

// CompleteUpdate carries the finished image
type CompleteUpdate struct {
	RenderID  string `json:"renderId"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	Mode        renderer.Mode `json:"mode"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	TotalPixels int           `json:"totalPixels"`
	PrimaryHits int           `json:"primaryHits"`
	MaxRadiance float64       `json:"maxRadiance"`
	MaxDistance float64       `json:"maxDistance"`
	Tiles       int           `json:"tiles"`
	Workers     int           `json:"workers"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string // "console", "tile", "complete", "error"
	Data string // JSON-encoded data
}

// handleRender renders a scene and streams console, tile and completion
// events over Server-Sent Events
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	s.setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Single writer goroutine; everything else sends on sseEventChan
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, flusher, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	renderID := uuid.NewString()
	consoleChan := make(chan ConsoleMessage, 50)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()
	logger := slog.New(NewConsoleHandler(renderID, consoleChan, slog.LevelInfo, s.logger.Handler())).
		With("renderId", renderID)

	// finish flushes pending console events, then sends the final event.
	// The logger must not be used once finish has run.
	var finishOnce sync.Once
	finish := func(eventType string, data any) {
		finishOnce.Do(func() {
			close(consoleChan)
			<-consoleDone
		})
		if eventType != "" {
			s.sendEvent(ctx, sseEventChan, eventType, data)
		}
	}
	defer finish("", nil)

	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		finish("error", map[string]string{"error": "Invalid request: " + err.Error()})
		return
	}
	preset, err := s.createScene(req)
	if err != nil {
		finish("error", map[string]string{"error": err.Error()})
		return
	}
	logger.Info("scene loaded", "scene", preset.Name, "primitives", preset.Scene.GetPrimitiveCount())

	startTime := time.Now()
	rt := renderer.NewRaytracer(preset.Scene, geometry.NewCamera(preset.Camera), req.renderOptions(preset), logger)
	img, stats, err := rt.Render(ctx, func(tile renderer.TileCompletionResult) {
		b := tile.Bounds
		s.sendEvent(ctx, sseEventChan, "tile", TileUpdate{
			TileX:      tile.TileX,
			TileY:      tile.TileY,
			TileNumber: tile.TileNumber,
			TotalTiles: tile.TotalTiles,
			Bounds:     [4]int{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y},
		})
	})
	if err != nil {
		logger.Error("render failed", "error", err)
		finish("error", map[string]string{"error": err.Error()})
		return
	}

	imageData, err := imageToBase64PNG(img)
	if err != nil {
		finish("error", map[string]string{"error": err.Error()})
		return
	}
	finish("complete", CompleteUpdate{
		RenderID:  renderID,
		ImageData: imageData,
		Stats: Stats{
			Mode:        stats.Mode,
			Width:       stats.Width,
			Height:      stats.Height,
			TotalPixels: stats.TotalPixels,
			PrimaryHits: stats.PrimaryHits,
			MaxRadiance: stats.MaxRadiance,
			MaxDistance: stats.MaxDistance,
			Tiles:       stats.Tiles,
			Workers:     stats.Workers,
		},
		ElapsedMs: time.Since(startTime).Milliseconds(),
	})
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents writes events until the channel closes or the client goes away
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sseEventChan <-chan SSEEvent) {
	for event := range sseEventChan {
		if ctx.Err() != nil {
			continue // drain so senders never block
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			continue
		}
		flusher.Flush()
	}
}

// streamConsoleMessages forwards console messages as SSE events
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for msg := range consoleChan {
		s.sendEvent(ctx, sseEventChan, "console", msg)
	}
}

// sendEvent JSON-encodes data and queues it for the writer
func (s *Server) sendEvent(ctx context.Context, sseEventChan chan<- SSEEvent, eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("encoding SSE event", "type", eventType, "error", err)
		return
	}
	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: string(payload)}:
	case <-ctx.Done():
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	data, err := loaders.EncodePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
