package server

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Request limits
const (
	minImageSize = 1
	maxImageSize = 2000
	maxDepth     = 16
	minFOV       = 1   // degrees
	maxFOV       = 179 // degrees
)

// Server handles web requests for the raytracer
type Server struct {
	port     int
	sceneDir string // Directory searched for OBJ scenes
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewServer creates a new web server. A nil logger discards output.
func NewServer(port int, sceneDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{port: port, sceneDir: sceneDir, logger: logger, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/scenes", s.handleScenes)
	s.mux.HandleFunc("GET /api/render", s.handleRender)
	s.mux.HandleFunc("GET /api/image", s.handleImage)
	s.mux.HandleFunc("GET /api/inspect", s.handleInspect)
	return s
}

// Handler returns the HTTP handler serving every endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting web server", "addr", "http://localhost"+addr, "sceneDir", s.sceneDir)
	return http.ListenAndServe(addr, s.mux)
}

// RenderRequest represents the scene parameters shared by every endpoint
type RenderRequest struct {
	Scene  string        `json:"scene"`  // Scene ID from /api/scenes
	Width  int           `json:"width"`  // 0 = scene default
	Height int           `json:"height"` // 0 = scene default
	FOV    float64       `json:"fov"`    // Degrees, 0 = scene default
	Depth  int           `json:"depth"`  // -1 = scene default
	Mode   renderer.Mode `json:"mode"`
}

// cameraOverride converts the request into overrides for the scene camera
func (req *RenderRequest) cameraOverride() geometry.CameraConfig {
	return geometry.CameraConfig{
		Width:  req.Width,
		Height: req.Height,
		FOV:    req.FOV * math.Pi / 180,
	}
}

// parseRenderRequest parses and validates the query parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, minImageSize, maxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, minImageSize, maxImageSize); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(values, "depth", -1, 0, maxDepth); err != nil {
		return nil, err
	}
	if req.FOV, err = parseFloatParam(values, "fov", 0, minFOV, maxFOV); err != nil {
		return nil, err
	}
	if mode := values.Get("mode"); mode != "" {
		if req.Mode, err = renderer.ParseMode(mode); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, errors.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, errors.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// errUnknownScene is returned for scene IDs that are neither built in nor
// discovered in the scene directory
var errUnknownScene = errors.New("unknown scene")

// createScene resolves the request's scene ID. Only built-in names and
// discovered OBJ scene IDs are accepted, never file paths.
func (s *Server) createScene(req *RenderRequest) (*scene.Preset, error) {
	info, ok, err := scene.FindScene(req.Scene, s.sceneDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(errUnknownScene, req.Scene)
	}
	return scene.CreateFromInfo(info, req.cameraOverride())
}

// renderOptions returns renderer options for the request and scene
func (req *RenderRequest) renderOptions(preset *scene.Preset) renderer.RenderOptions {
	depth := preset.Depth
	if req.Depth >= 0 {
		depth = req.Depth
	}
	return renderer.RenderOptions{Mode: req.Mode, Depth: depth}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and discovered OBJ scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.sceneDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, scenes)
}

// handleImage renders synchronously and returns the PNG
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	preset, err := s.createScene(req)
	if err != nil {
		s.writeError(w, sceneErrorStatus(err), err)
		return
	}

	rt := renderer.NewRaytracer(preset.Scene, geometry.NewCamera(preset.Camera), req.renderOptions(preset), s.logger)
	img, _, err := rt.Render(r.Context(), nil)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	data, err := loaders.EncodePNG(img)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func sceneErrorStatus(err error) int {
	if errors.Is(err, errUnknownScene) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeJSON encodes v as the response body
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encoding response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
