package loaders

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// ParseMTL parses a material library. Materials are returned in the order
// they are declared; a later newmtl with a repeated name overrides the
// earlier one when added to a material.Table. Unknown records are ignored.
func ParseMTL(reader io.Reader, source string) ([]material.Material, error) {
	var materials []material.Material
	var current *material.Material

	scanner := bufio.NewScanner(reader)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return nil, lineError(source, lineNum, errors.New("newmtl requires a name"))
			}
			materials = append(materials, material.New(fields[1]))
			current = &materials[len(materials)-1]
			continue
		}

		var err error
		switch fields[0] {
		case "Ka", "Kd", "Ks", "Ke", "al":
			if current == nil {
				return nil, lineError(source, lineNum, errors.Errorf("%s before newmtl", fields[0]))
			}
			var v core.Vec3
			if v, err = parseVec3(fields); err != nil {
				break
			}
			switch fields[0] {
			case "Ka":
				current.Ambient = v
			case "Kd":
				current.Diffuse = v
			case "Ks":
				current.Specular = v
			case "Ke":
				current.Intensity = v
			case "al":
				current.Albedo = material.Albedo{v.X, v.Y, v.Z}
			}
		case "Ns", "Ni":
			if current == nil {
				return nil, lineError(source, lineNum, errors.Errorf("%s before newmtl", fields[0]))
			}
			var f float64
			if f, err = parseScalar(fields); err != nil {
				break
			}
			if fields[0] == "Ns" {
				current.SpecularExponent = f
			} else {
				current.RefractionIndex = f
			}
		}
		if err != nil {
			return nil, lineError(source, lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", source)
	}

	return materials, nil
}

// LoadMTL loads and parses a material library file
func LoadMTL(filename string) ([]material.Material, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open MTL file")
	}
	defer file.Close()

	return ParseMTL(file, filename)
}

// parseVec3 reads the three numbers following a record keyword
func parseVec3(fields []string) (core.Vec3, error) {
	values, err := parseFloats(fields, 3)
	if err != nil {
		return core.Vec3{}, err
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

// parseScalar reads the single number following a record keyword
func parseScalar(fields []string) (float64, error) {
	values, err := parseFloats(fields, 1)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

// lineError prefixes err with its source location
func lineError(source string, line int, err error) error {
	return errors.Wrapf(err, "%s:%d", source, line)
}
