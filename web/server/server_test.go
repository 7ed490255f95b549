package server

import (
	"bufio"
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"

	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

const triangleOBJ = `# Scene: Lone Triangle
# Group: Test Scenes
v -1 -1 -5
v 1 -1 -5
v 0 1 -5
f 1 2 3
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "triangle.obj"), []byte(triangleOBJ), 0644); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(NewServer(0, dir, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(buf.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", buf.String(), err)
	}
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/api/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	decode(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleScenes(t *testing.T) {
	ts := newTestServer(t)
	var body scene.ScenesResponse
	decode(t, get(t, ts, "/api/scenes"), &body)

	if len(body.Groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(body.Groups), body.Groups)
	}
	if body.Groups[0].Name != scene.BuiltinGroup || len(body.Groups[0].Scenes) != len(scene.Names()) {
		t.Errorf("first group = %+v", body.Groups[0])
	}
	obj := body.Groups[1]
	if obj.Name != "Test Scenes" || len(obj.Scenes) != 1 || obj.Scenes[0].ID != "obj:triangle" {
		t.Errorf("OBJ group = %+v", obj)
	}
}

func TestHandleImage(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/api/image?scene=default&width=16&height=12&depth=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("size = %v, want 16x12", b)
	}
}

func TestHandleImage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"zero width", "width=0", http.StatusBadRequest},
		{"huge height", "height=5000", http.StatusBadRequest},
		{"non-numeric depth", "depth=deep", http.StatusBadRequest},
		{"depth too large", "depth=99", http.StatusBadRequest},
		{"bad fov", "fov=180", http.StatusBadRequest},
		{"bad mode", "mode=wireframe", http.StatusBadRequest},
		{"unknown scene", "scene=nope", http.StatusNotFound},
		{"file path rejected", "scene=../etc/scene.obj", http.StatusNotFound},
	}
	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts, "/api/image?"+tt.query)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var body map[string]string
			decode(t, resp, &body)
			if body["error"] == "" {
				t.Error("expected error message in body")
			}
		})
	}
}

func TestHandleInspect(t *testing.T) {
	ts := newTestServer(t)

	t.Run("hit", func(t *testing.T) {
		var body InspectResponse
		decode(t, get(t, ts, "/api/inspect?scene=obj:triangle&width=64&height=48&x=32&y=24"), &body)
		if !body.Hit || body.GeometryType != "triangle" || body.Index != 0 {
			t.Fatalf("response = %+v", body)
		}
		if body.Material != scene.DefaultMaterialName {
			t.Errorf("material = %q", body.Material)
		}
		if body.Normal != [3]float64{0, 0, 1} {
			t.Errorf("normal = %v, want (0, 0, 1)", body.Normal)
		}
		if body.Distance < 5 || body.Distance > 5.01 {
			t.Errorf("distance = %v, want about 5", body.Distance)
		}
	})

	t.Run("miss", func(t *testing.T) {
		var body InspectResponse
		decode(t, get(t, ts, "/api/inspect?scene=obj:triangle&width=64&height=48&x=0&y=0"), &body)
		if body.Hit {
			t.Errorf("expected miss, got %+v", body)
		}
	})

	for _, query := range []string{
		"x=1",                         // missing y
		"x=a&y=1",                     // bad x
		"width=10&height=10&x=10&y=0", // out of bounds
		"scene=default&x=-1&y=0",      // negative
	} {
		t.Run("bad "+query, func(t *testing.T) {
			if resp := get(t, ts, "/api/inspect?"+query); resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

// readEvents parses an SSE stream into (type, data) pairs
func readEvents(t *testing.T, resp *http.Response) [][2]string {
	t.Helper()
	var events [][2]string
	var eventType string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 1<<20), 1<<24)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			events = append(events, [2]string{eventType, strings.TrimPrefix(line, "data: ")})
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	return events
}

func TestHandleRender_Stream(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/api/render?scene=cornell&width=20&height=20&mode=depth")
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	events := readEvents(t, resp)
	if len(events) == 0 {
		t.Fatal("no events received")
	}

	counts := map[string]int{}
	for _, e := range events {
		counts[e[0]]++
	}
	if counts["tile"] != 1 {
		t.Errorf("got %d tile events, want 1 for a 20x20 image", counts["tile"])
	}
	if counts["console"] == 0 {
		t.Error("expected console events")
	}
	if counts["error"] != 0 {
		t.Errorf("unexpected error events: %v", events)
	}

	last := events[len(events)-1]
	if last[0] != "complete" {
		t.Fatalf("last event = %q, want complete", last[0])
	}
	finished := false
	for _, e := range events[:len(events)-1] {
		if e[0] == "console" && strings.Contains(e[1], "render finished") {
			finished = true
		}
	}
	if !finished {
		t.Error("expected the render finished console event before complete")
	}
	var complete CompleteUpdate
	if err := json.Unmarshal([]byte(last[1]), &complete); err != nil {
		t.Fatalf("decoding complete event: %v", err)
	}
	if complete.ImageData == "" || complete.RenderID == "" {
		t.Errorf("complete event missing data: %+v", complete.Stats)
	}
	if complete.Stats.Width != 20 || complete.Stats.TotalPixels != 400 || complete.Stats.MaxDistance <= 0 {
		t.Errorf("stats = %+v", complete.Stats)
	}
}

func TestHandleRender_InvalidRequest(t *testing.T) {
	ts := newTestServer(t)
	events := readEvents(t, get(t, ts, "/api/render?width=-3"))
	if len(events) != 1 || events[0][0] != "error" {
		t.Fatalf("events = %v, want a single error", events)
	}
	if !strings.Contains(events[0][1], "width must be between") {
		t.Errorf("error = %s", events[0][1])
	}
}
