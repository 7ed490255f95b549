package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	GeometryType string         `json:"geometryType,omitempty"`
	Index        int            `json:"index"`
	Material     string         `json:"material,omitempty"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	Properties   map[string]any `json:"properties,omitempty"`
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	channel := func(v float64) int {
		return int(min(max(v, 0), 1) * 255)
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(c.X), channel(c.Y), channel(c.Z))
}

// extractMaterialInfo lists the shading coefficients of a material
func extractMaterialInfo(m *material.Material) map[string]any {
	return map[string]any{
		"ambient":          vec3Array(m.Ambient),
		"diffuse":          vec3Array(m.Diffuse),
		"specular":         vec3Array(m.Specular),
		"intensity":        vec3Array(m.Intensity),
		"specularExponent": m.SpecularExponent,
		"refractionIndex":  m.RefractionIndex,
		"albedo":           [3]float64(m.Albedo),
		"color":            hexColor(m.Diffuse),
	}
}

// extractGeometryInfo describes the primitive a hit refers to
func extractGeometryInfo(s *scene.Scene, hit scene.Hit) map[string]any {
	properties := make(map[string]any)
	switch hit.Kind {
	case scene.KindSphere:
		sphere := s.Spheres()[hit.Index].Sphere
		properties["center"] = vec3Array(sphere.Center)
		properties["radius"] = sphere.Radius
	case scene.KindTriangle:
		obj := s.Objects()[hit.Index]
		properties["vertices"] = [3][3]float64{
			vec3Array(obj.Triangle.V0),
			vec3Array(obj.Triangle.V1),
			vec3Array(obj.Triangle.V2),
		}
		properties["smooth"] = obj.HasNormals
	}
	return properties
}

// inspectPixel casts the camera ray through pixel (x, y) and returns the nearest hit
func inspectPixel(s *scene.Scene, camera *geometry.Camera, x, y int) (scene.Hit, bool) {
	return s.Closest(camera.GetRay(x, y))
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid scene parameters"))
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid x coordinate"))
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid y coordinate"))
		return
	}

	preset, err := s.createScene(req)
	if err != nil {
		s.writeError(w, sceneErrorStatus(err), err)
		return
	}

	cfg := preset.Camera
	if pixelX < 0 || pixelX >= cfg.Width || pixelY < 0 || pixelY >= cfg.Height {
		s.writeError(w, http.StatusBadRequest, errors.Errorf("pixel (%d, %d) outside %dx%d image", pixelX, pixelY, cfg.Width, cfg.Height))
		return
	}

	hit, ok := inspectPixel(preset.Scene, geometry.NewCamera(cfg), pixelX, pixelY)
	if !ok {
		s.writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	s.writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		GeometryType: hit.Kind.String(),
		Index:        hit.Index,
		Material:     hit.Material.Name,
		Point:        vec3Array(hit.Position),
		Normal:       vec3Array(hit.Normal),
		Distance:     hit.Distance,
		Properties: map[string]any{
			"material": extractMaterialInfo(hit.Material),
			"geometry": extractGeometryInfo(preset.Scene, hit),
		},
	})
}
