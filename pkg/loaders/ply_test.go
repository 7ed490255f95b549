package loaders

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// createTestPLY builds a binary PLY square made of one quad and one extra
// vertex element property, optionally with normals and colors
func createTestPLY(t *testing.T, order binary.ByteOrder, includeNormals, includeColors bool) []byte {
	t.Helper()
	var buf bytes.Buffer

	format := "binary_little_endian"
	if order == binary.BigEndian {
		format = "binary_big_endian"
	}
	buf.WriteString("ply\n")
	buf.WriteString("format " + format + " 1.0\n")
	buf.WriteString("comment test square\n")
	buf.WriteString("element vertex 4\n")
	buf.WriteString("property float x\n")
	buf.WriteString("property float y\n")
	buf.WriteString("property float z\n")
	if includeNormals {
		buf.WriteString("property float nx\n")
		buf.WriteString("property float ny\n")
		buf.WriteString("property float nz\n")
	}
	if includeColors {
		buf.WriteString("property uchar red\n")
		buf.WriteString("property uchar green\n")
		buf.WriteString("property uchar blue\n")
	}
	buf.WriteString("element face 1\n")
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("end_header\n")

	vertices := [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	for _, v := range vertices {
		binary.Write(&buf, order, v)
		if includeNormals {
			binary.Write(&buf, order, [3]float32{0, 0, 1})
		}
		if includeColors {
			buf.Write([]byte{255, 128, 0})
		}
	}

	buf.WriteByte(4)
	binary.Write(&buf, order, [4]int32{0, 1, 2, 3})
	return buf.Bytes()
}

func parsePLYBytes(t *testing.T, data []byte) *OBJScene {
	t.Helper()
	mesh, err := ParsePLY(bytes.NewReader(data), "test.ply")
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}
	return mesh
}

func TestParsePLY_Binary(t *testing.T) {
	tests := []struct {
		name    string
		order   binary.ByteOrder
		normals bool
		colors  bool
	}{
		{"little endian", binary.LittleEndian, false, false},
		{"big endian", binary.BigEndian, false, false},
		{"with normals", binary.LittleEndian, true, false},
		{"with skipped colors", binary.LittleEndian, true, true},
	}
	wantVertices := []core.Vec3{
		core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(1, 1, 0), core.NewVec3(0, 1, 0),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := parsePLYBytes(t, createTestPLY(t, tt.order, tt.normals, tt.colors))

			if diff := cmp.Diff(wantVertices, mesh.Vertices); diff != "" {
				t.Errorf("vertices mismatch (-want +got):\n%s", diff)
			}
			wantFaces := []OBJFace{
				{Vertices: [3]int{0, 1, 2}, Normals: [3]int{0, 1, 2}, HasNormals: tt.normals},
				{Vertices: [3]int{0, 2, 3}, Normals: [3]int{0, 2, 3}, HasNormals: tt.normals},
			}
			if diff := cmp.Diff(wantFaces, mesh.Faces); diff != "" {
				t.Errorf("faces mismatch (-want +got):\n%s", diff)
			}
			if tt.normals && len(mesh.Normals) != 4 {
				t.Errorf("got %d normals, want 4", len(mesh.Normals))
			}
			if !tt.normals && len(mesh.Normals) != 0 {
				t.Errorf("got %d normals, want none", len(mesh.Normals))
			}
		})
	}
}

func TestParsePLY_ASCII(t *testing.T) {
	data := `ply
format ascii 1.0
element vertex 3
property double x
property double y
property double z
element edge 1
property int vertex1
property int vertex2
element face 1
property uchar intensity
property list uchar uint vertex_index
end_header
-1 0 -2
1 0 -2
0 1.5 -2
0 1
7 3 0 1 2
`
	mesh := parsePLYBytes(t, []byte(data))

	want := []core.Vec3{core.NewVec3(-1, 0, -2), core.NewVec3(1, 0, -2), core.NewVec3(0, 1.5, -2)}
	if diff := cmp.Diff(want, mesh.Vertices); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
	if len(mesh.Faces) != 1 || mesh.Faces[0].Vertices != [3]int{0, 1, 2} {
		t.Errorf("faces = %+v", mesh.Faces)
	}
	if mesh.Source != "test.ply" || mesh.Faces[0].Material != "" {
		t.Errorf("source %q, material %q", mesh.Source, mesh.Faces[0].Material)
	}
}

func TestParsePLY_Errors(t *testing.T) {
	const vertexHeader = "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n"
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"bad magic", "plx\nformat ascii 1.0\nend_header\n", "magic"},
		{"missing end_header", "ply\nformat ascii 1.0\n", "end_header"},
		{"missing format", "ply\nelement vertex 0\nend_header\n", "format"},
		{"unsupported format", "ply\nformat binary_middle_endian 1.0\nend_header\n", "unsupported PLY format"},
		{"property before element", "ply\nformat ascii 1.0\nproperty float x\nend_header\n", "before any element"},
		{"unknown type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n", "unknown type"},
		{"bad count", "ply\nformat ascii 1.0\nelement vertex many\nend_header\n", "element count"},
		{"missing coordinate", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nend_header\n1\n", "missing property"},
		{"truncated body", vertexHeader + "end_header\n0 0 0\n1 0\n", "vertex 1"},
		{"bad number", vertexHeader + "end_header\n0 0 zero\n", "invalid number"},
		{
			"index out of range",
			vertexHeader + "element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 9\n",
			"out of range",
		},
		{
			"list length beyond count type",
			vertexHeader + "element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n1e300 0 1 2\n",
			"invalid list length",
		},
		{
			"list length beyond data",
			vertexHeader + "element face 1\nproperty list uint int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n1000000000 0 1 2\n",
			"face 0",
		},
		{
			"degenerate face",
			vertexHeader + "element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n2 0 1\n",
			"at least 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePLY(strings.NewReader(tt.data), "bad.ply")
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), "bad.ply") {
				t.Errorf("error %q does not name the source", err)
			}
		})
	}
}

func TestParsePLY_TruncatedBinary(t *testing.T) {
	data := createTestPLY(t, binary.LittleEndian, false, false)
	if _, err := ParsePLY(bytes.NewReader(data[:len(data)-3]), "short.ply"); err == nil {
		t.Error("expected error for truncated binary body")
	}
}

func TestLoadPLY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.ply")
	writeFile(t, path, string(createTestPLY(t, binary.LittleEndian, true, false)))

	mesh, err := LoadPLY(path)
	if err != nil {
		t.Fatalf("LoadPLY failed: %v", err)
	}
	if len(mesh.Faces) != 2 || mesh.Source != path {
		t.Errorf("got %d faces from %q", len(mesh.Faces), mesh.Source)
	}

	if _, err := LoadPLY(filepath.Join(t.TempDir(), "missing.ply")); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestPLYTypeSize(t *testing.T) {
	tests := map[string]int{
		"char": 1, "uchar": 1, "uint8": 1,
		"short": 2, "uint16": 2,
		"int": 4, "float": 4, "float32": 4,
		"double": 8, "float64": 8,
		"string": 0,
	}
	for dataType, want := range tests {
		if got := plyTypeSize(dataType); got != want {
			t.Errorf("plyTypeSize(%q) = %d, want %d", dataType, got, want)
		}
	}
}
