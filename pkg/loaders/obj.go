package loaders

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// OBJFace is one triangle of a (possibly fan-triangulated) polygon.
// Indices are zero-based into OBJScene.Vertices and OBJScene.Normals.
type OBJFace struct {
	Vertices   [3]int
	Normals    [3]int // Valid only when HasNormals is set
	HasNormals bool
	Material   string // Active usemtl name, empty before the first usemtl
	Line       int
}

// OBJSphere is an S record: a sphere with the material active at that point
type OBJSphere struct {
	Center   core.Vec3
	Radius   float64
	Material string
	Line     int
}

// OBJLight is a P record: a point light
type OBJLight struct {
	Position  core.Vec3
	Intensity core.Vec3
}

// OBJScene contains the raw data parsed from an OBJ scene file
type OBJScene struct {
	Source       string
	Vertices     []core.Vec3
	Normals      []core.Vec3
	Faces        []OBJFace
	Spheres      []OBJSphere
	Lights       []OBJLight
	MaterialLibs []string // mtllib arguments, in file order
	Materials    []material.Material
}

// objParser holds the running state while reading an OBJ file
type objParser struct {
	scene       *OBJScene
	material    string
	lineNum     int
	polygon     []int
	polyNormals []int
}

// ParseOBJ parses OBJ content from an io.Reader. Material libraries are
// recorded but not loaded; see LoadOBJ.
func ParseOBJ(reader io.Reader, source string) (*OBJScene, error) {
	p := &objParser{scene: &OBJScene{Source: source}}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		p.lineNum++
		if err := p.processLine(scanner.Text()); err != nil {
			return nil, lineError(source, p.lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", source)
	}

	return p.scene, nil
}

// LoadOBJ loads an OBJ scene file together with the material libraries it
// references, resolved relative to the OBJ file's directory
func LoadOBJ(filename string) (*OBJScene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open OBJ file")
	}
	defer file.Close()

	scene, err := ParseOBJ(file, filename)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(filename)
	for _, lib := range scene.MaterialLibs {
		materials, err := LoadMTL(filepath.Join(dir, lib))
		if err != nil {
			return nil, errors.Wrapf(err, "loading material library %q", lib)
		}
		scene.Materials = append(scene.Materials, materials...)
	}

	return scene, nil
}

func (p *objParser) processLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseVec3(fields)
		if err != nil {
			return err
		}
		p.scene.Vertices = append(p.scene.Vertices, v)

	case "vn":
		n, err := parseVec3(fields)
		if err != nil {
			return err
		}
		p.scene.Normals = append(p.scene.Normals, n)

	case "f":
		return p.processFace(fields[1:])

	case "S":
		values, err := parseFloats(fields, 4)
		if err != nil {
			return err
		}
		if values[3] <= 0 {
			return errors.Errorf("sphere radius must be positive, got %g", values[3])
		}
		p.scene.Spheres = append(p.scene.Spheres, OBJSphere{
			Center:   core.NewVec3(values[0], values[1], values[2]),
			Radius:   values[3],
			Material: p.material,
			Line:     p.lineNum,
		})

	case "P":
		values, err := parseFloats(fields, 6)
		if err != nil {
			return err
		}
		p.scene.Lights = append(p.scene.Lights, OBJLight{
			Position:  core.NewVec3(values[0], values[1], values[2]),
			Intensity: core.NewVec3(values[3], values[4], values[5]),
		})

	case "mtllib":
		if len(fields) < 2 {
			return errors.New("mtllib requires a file name")
		}
		p.scene.MaterialLibs = append(p.scene.MaterialLibs, fields[1])

	case "usemtl":
		if len(fields) < 2 {
			return errors.New("usemtl requires a material name")
		}
		p.material = fields[1]
	}

	return nil
}

// processFace resolves the vertex tokens of an f record and fan-triangulates
// the polygon as (0, i, i+1)
func (p *objParser) processFace(tokens []string) error {
	if len(tokens) < 3 {
		return errors.Errorf("face requires at least 3 vertices, got %d", len(tokens))
	}

	p.polygon = p.polygon[:0]
	p.polyNormals = p.polyNormals[:0]
	allNormals := true

	for _, token := range tokens {
		vi, ni, err := p.parseFaceToken(token)
		if err != nil {
			return errors.Wrapf(err, "face vertex %q", token)
		}
		p.polygon = append(p.polygon, vi)
		p.polyNormals = append(p.polyNormals, ni)
		if ni < 0 {
			allNormals = false
		}
	}

	for i := 1; i < len(p.polygon)-1; i++ {
		face := OBJFace{
			Vertices: [3]int{p.polygon[0], p.polygon[i], p.polygon[i+1]},
			Material: p.material,
			Line:     p.lineNum,
		}
		if allNormals {
			face.Normals = [3]int{p.polyNormals[0], p.polyNormals[i], p.polyNormals[i+1]}
			face.HasNormals = true
		}
		p.scene.Faces = append(p.scene.Faces, face)
	}
	return nil
}

// parseFaceToken handles v, v/t, v//n and v/t/n tokens. The returned normal
// index is -1 when the token has none.
func (p *objParser) parseFaceToken(token string) (int, int, error) {
	parts := strings.Split(token, "/")
	if len(parts) > 3 {
		return 0, 0, errors.New("too many components")
	}

	vi, err := resolveIndex(parts[0], len(p.scene.Vertices))
	if err != nil {
		return 0, 0, errors.Wrap(err, "vertex index")
	}

	ni := -1
	if len(parts) == 3 && parts[2] != "" {
		if ni, err = resolveIndex(parts[2], len(p.scene.Normals)); err != nil {
			return 0, 0, errors.Wrap(err, "normal index")
		}
	}
	return vi, ni, nil
}

// resolveIndex converts a 1-based or negative (relative to count) OBJ index
// into a zero-based index
func resolveIndex(s string, count int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case idx > 0:
		idx--
	case idx < 0:
		idx += count
	default:
		return 0, errors.New("index 0 is not valid")
	}
	if idx < 0 || idx >= count {
		return 0, errors.Errorf("index %s out of range (%d defined)", s, count)
	}
	return idx, nil
}

// parseFloats reads exactly n numbers following a record keyword
func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n+1 {
		return nil, errors.Errorf("%s requires %d values, got %d", fields[0], n, len(fields)-1)
	}
	values := make([]float64, n)
	for i := range values {
		f, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s value %d", fields[0], i+1)
		}
		values[i] = f
	}
	return values, nil
}
