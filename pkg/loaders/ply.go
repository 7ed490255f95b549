package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name      string
	Type      string // Scalar type, or the element type of a list
	IsList    bool
	CountType string // For list properties, the type of the length prefix
}

// PLYElement is an element declaration with its properties in file order
type PLYElement struct {
	Name  string
	Count int
	Props []PLYProperty
}

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	Version  string
	Elements []PLYElement
}

// LoadPLY loads a PLY mesh. Faces use no material and vertex normals are
// used for smooth shading when every vertex carries nx, ny and nz.
func LoadPLY(filename string) (*OBJScene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PLY file")
	}
	defer file.Close()

	return ParsePLY(file, filename)
}

// ParsePLY reads a PLY mesh from r
func ParsePLY(r io.Reader, source string) (*OBJScene, error) {
	br := bufio.NewReader(r)
	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: header", source)
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		scanner := bufio.NewScanner(br)
		scanner.Split(bufio.ScanWords)
		values = &plyASCIIReader{scanner: scanner}
	case "binary_little_endian":
		values = &plyBinaryReader{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &plyBinaryReader{r: br, order: binary.BigEndian}
	default:
		return nil, errors.Errorf("%s: unsupported PLY format %q", source, header.Format)
	}

	mesh := &OBJScene{Source: source}
	for _, elem := range header.Elements {
		var err error
		switch elem.Name {
		case "vertex":
			err = readPLYVertices(values, elem, mesh)
		case "face":
			err = readPLYFaces(values, elem, mesh)
		default:
			err = skipPLYElement(values, elem)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s: element %s", source, elem.Name)
		}
	}
	return mesh, nil
}

// parsePLYHeader reads up to and including end_header
func parsePLYHeader(r *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var current *PLYElement

	for lineNum := 1; ; lineNum++ {
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, errors.New("missing end_header")
			}
			return nil, err
		}
		parts := strings.Fields(line)

		if lineNum == 1 {
			if len(parts) != 1 || parts[0] != "ply" {
				return nil, errors.New("missing ply magic number")
			}
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, errors.Errorf("line %d: invalid format line", lineNum)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, errors.Errorf("line %d: invalid element line", lineNum)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, errors.Errorf("line %d: invalid element count %q", lineNum, parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
			current = &header.Elements[len(header.Elements)-1]
		case "property":
			if current == nil {
				return nil, errors.Errorf("line %d: property before any element", lineNum)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNum)
			}
			current.Props = append(current.Props, prop)
		case "end_header":
			if header.Format == "" {
				return nil, errors.New("missing format line")
			}
			return header, nil
		default:
			return nil, errors.Errorf("line %d: unknown header keyword %q", lineNum, parts[0])
		}
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) >= 1 && parts[0] == "list" {
		if len(parts) != 4 {
			return PLYProperty{}, errors.New("invalid list property definition")
		}
		if plyTypeSize(parts[1]) == 0 || plyTypeSize(parts[2]) == 0 {
			return PLYProperty{}, errors.Errorf("unknown type in list property %q", parts[3])
		}
		return PLYProperty{Name: parts[3], Type: parts[2], IsList: true, CountType: parts[1]}, nil
	}
	if len(parts) != 2 {
		return PLYProperty{}, errors.New("invalid property definition")
	}
	if plyTypeSize(parts[0]) == 0 {
		return PLYProperty{}, errors.Errorf("unknown type %q for property %q", parts[0], parts[1])
	}
	return PLYProperty{Name: parts[1], Type: parts[0]}, nil
}

// plyTypeSize returns the byte size of a scalar type, or 0 if unknown
func plyTypeSize(dataType string) int {
	switch dataType {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

// plyValueReader yields successive scalar values of the body
type plyValueReader interface {
	next(dataType string) (float64, error)
}

type plyASCIIReader struct {
	scanner *bufio.Scanner
}

func (r *plyASCIIReader) next(dataType string) (float64, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	v, err := strconv.ParseFloat(r.scanner.Text(), 64)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", r.scanner.Text())
	}
	return v, nil
}

type plyBinaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (r *plyBinaryReader) next(dataType string) (float64, error) {
	b := r.buf[:plyTypeSize(dataType)]
	if _, err := io.ReadFull(r.r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	switch dataType {
	case "char", "int8":
		return float64(int8(b[0])), nil
	case "uchar", "uint8":
		return float64(b[0]), nil
	case "short", "int16":
		return float64(int16(r.order.Uint16(b))), nil
	case "ushort", "uint16":
		return float64(r.order.Uint16(b)), nil
	case "int", "int32":
		return float64(int32(r.order.Uint32(b))), nil
	case "uint", "uint32":
		return float64(r.order.Uint32(b)), nil
	case "float", "float32":
		return float64(math.Float32frombits(r.order.Uint32(b))), nil
	default:
		return math.Float64frombits(r.order.Uint64(b)), nil
	}
}

// readPLYList reads a length-prefixed list property
func readPLYList(values plyValueReader, prop PLYProperty) ([]float64, error) {
	n, err := values.next(prop.CountType)
	if err != nil {
		return nil, err
	}
	if n < 0 || n != math.Trunc(n) || n > plyCountLimit(prop.CountType) {
		return nil, errors.Errorf("invalid list length %v for count type %s", n, prop.CountType)
	}
	// Grow as values arrive; the declared length is untrusted
	count := int(n)
	list := make([]float64, 0, min(count, 16))
	for range count {
		v, err := values.next(prop.Type)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

// plyCountLimit returns the largest list length a count type can encode
func plyCountLimit(countType string) float64 {
	switch countType {
	case "char", "int8":
		return math.MaxInt8
	case "uchar", "uint8":
		return math.MaxUint8
	case "short", "int16":
		return math.MaxInt16
	case "ushort", "uint16":
		return math.MaxUint16
	case "int", "int32":
		return math.MaxInt32
	default:
		return math.MaxUint32
	}
}

func readPLYVertices(values plyValueReader, elem PLYElement, mesh *OBJScene) error {
	index := map[string]int{}
	for i, prop := range elem.Props {
		if !prop.IsList {
			index[prop.Name] = i
		}
	}
	for _, name := range []string{"x", "y", "z"} {
		if _, ok := index[name]; !ok {
			return errors.Errorf("missing property %q", name)
		}
	}
	_, hasNX := index["nx"]
	_, hasNY := index["ny"]
	_, hasNZ := index["nz"]
	hasNormals := hasNX && hasNY && hasNZ

	row := make([]float64, len(elem.Props))
	for v := 0; v < elem.Count; v++ {
		for i, prop := range elem.Props {
			if prop.IsList {
				if _, err := readPLYList(values, prop); err != nil {
					return errors.Wrapf(err, "vertex %d", v)
				}
				continue
			}
			val, err := values.next(prop.Type)
			if err != nil {
				return errors.Wrapf(err, "vertex %d", v)
			}
			row[i] = val
		}
		mesh.Vertices = append(mesh.Vertices, core.NewVec3(row[index["x"]], row[index["y"]], row[index["z"]]))
		if hasNormals {
			mesh.Normals = append(mesh.Normals, core.NewVec3(row[index["nx"]], row[index["ny"]], row[index["nz"]]))
		}
	}
	return nil
}

func readPLYFaces(values plyValueReader, elem PLYElement, mesh *OBJScene) error {
	hasNormals := len(mesh.Normals) > 0 && len(mesh.Normals) == len(mesh.Vertices)

	for f := 0; f < elem.Count; f++ {
		var indices []int
		for _, prop := range elem.Props {
			if !prop.IsList {
				if _, err := values.next(prop.Type); err != nil {
					return errors.Wrapf(err, "face %d", f)
				}
				continue
			}
			list, err := readPLYList(values, prop)
			if err != nil {
				return errors.Wrapf(err, "face %d", f)
			}
			if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
				continue
			}
			for _, v := range list {
				i := int(v)
				if i < 0 || i >= len(mesh.Vertices) {
					return errors.Errorf("face %d: vertex index %d out of range", f, i)
				}
				indices = append(indices, i)
			}
		}
		if len(indices) < 3 {
			return errors.Errorf("face %d: needs at least 3 vertices, got %d", f, len(indices))
		}

		// Fan triangulation
		for i := 1; i+1 < len(indices); i++ {
			tri := [3]int{indices[0], indices[i], indices[i+1]}
			mesh.Faces = append(mesh.Faces, OBJFace{Vertices: tri, Normals: tri, HasNormals: hasNormals})
		}
	}
	return nil
}

func skipPLYElement(values plyValueReader, elem PLYElement) error {
	for n := 0; n < elem.Count; n++ {
		for _, prop := range elem.Props {
			var err error
			if prop.IsList {
				_, err = readPLYList(values, prop)
			} else {
				_, err = values.next(prop.Type)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
