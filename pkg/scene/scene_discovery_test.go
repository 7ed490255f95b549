package scene

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"glass_spheres", "Glass Spheres"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseOBJMetadata(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete_metadata.obj",
			content: `# Scene: Glass Room
# Description: Room with a glass sphere
# Group: Rooms
v 0 0 0`,
			expected: SceneInfo{
				ID:          "obj:complete_metadata",
				Name:        "Glass Room",
				Description: "Room with a glass sphere",
				Group:       "Rooms",
				Type:        "obj",
			},
		},
		{
			name:    "no_metadata.obj",
			content: "v 0 0 0\n# Scene: ignored after geometry",
			expected: SceneInfo{
				ID:    "obj:no_metadata",
				Name:  "No Metadata",
				Group: "OBJ Scenes",
				Type:  "obj",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			writeTestFile(t, path, tc.content)

			info, err := ParseOBJMetadata(path)
			if err != nil {
				t.Fatalf("ParseOBJMetadata failed: %v", err)
			}
			tc.expected.FilePath = path
			if diff := cmp.Diff(tc.expected, info); diff != "" {
				t.Errorf("SceneInfo mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListOBJScenes_MissingDirectory(t *testing.T) {
	scenes, err := ListOBJScenes(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(scenes) != 0 {
		t.Errorf("Expected no scenes, got %d", len(scenes))
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "b.obj"), "# Scene: Beta\n# Group: Zeta\n")
	writeTestFile(t, filepath.Join(dir, "a.obj"), "# Scene: Alpha\n# Group: Alpha Group\n")
	writeTestFile(t, filepath.Join(dir, "notes.txt"), "not a scene")

	response, err := ListAllScenes(dir)
	if err != nil {
		t.Fatalf("ListAllScenes failed: %v", err)
	}

	var groups []string
	for _, g := range response.Groups {
		groups = append(groups, g.Name)
	}
	if diff := cmp.Diff([]string{BuiltinGroup, "Alpha Group", "Zeta"}, groups); diff != "" {
		t.Errorf("Group order mismatch (-want +got):\n%s", diff)
	}
	if n := len(response.Groups[0].Scenes); n != len(Names()) {
		t.Errorf("Expected %d built-in scenes, got %d", len(Names()), n)
	}
}

func TestFindScene(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "room.obj")
	writeTestFile(t, path, "v 0 0 0\n")

	tests := []struct {
		id       string
		wantOK   bool
		wantType string
	}{
		{"cornell", true, "builtin"},
		{"obj:room", true, "obj"},
		{"obj:missing", false, ""},
		{"../../etc/passwd", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			info, ok, err := FindScene(tt.id, dir)
			if err != nil {
				t.Fatalf("FindScene failed: %v", err)
			}
			if ok != tt.wantOK || info.Type != tt.wantType {
				t.Errorf("FindScene(%q) = %+v, %v; want type %q, ok %v", tt.id, info, ok, tt.wantType, tt.wantOK)
			}
		})
	}
}
