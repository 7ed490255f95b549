package scene

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// BuiltinGroup is the group name of scenes constructed in code
const BuiltinGroup = "Built-in Scenes"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Name passed to Create for built-ins, "obj:<file>" for files
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "obj"
	FilePath    string `json:"filePath"`    // Path to the OBJ file (obj type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse is the grouped scene listing
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// ListOBJScenes scans dir for .obj files and reads their header metadata.
// A missing directory yields an empty list.
func ListOBJScenes(dir string) ([]SceneInfo, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read scenes directory")
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.obj"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan scenes directory")
	}

	var scenes []SceneInfo
	for _, filePath := range files {
		info, err := ParseOBJMetadata(filePath)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseOBJMetadata extracts metadata from the leading comment block of an
// OBJ file. Recognized keys are "# Scene:", "# Description:" and "# Group:".
func ParseOBJMetadata(filePath string) (SceneInfo, error) {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	info := SceneInfo{
		ID:       "obj:" + base,
		Name:     titleCase(base),
		Group:    "OBJ Scenes",
		Type:     "obj",
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, errors.Wrapf(err, "failed to open %s", filePath)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#") {
			break
		}
		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))

		switch {
		case strings.HasPrefix(content, "Scene:"):
			info.Name = strings.TrimSpace(strings.TrimPrefix(content, "Scene:"))
		case strings.HasPrefix(content, "Description:"):
			info.Description = strings.TrimSpace(strings.TrimPrefix(content, "Description:"))
		case strings.HasPrefix(content, "Group:"):
			info.Group = strings.TrimSpace(strings.TrimPrefix(content, "Group:"))
		}
	}

	return info, errors.Wrapf(scanner.Err(), "reading %s", filePath)
}

// BuiltinScenes returns info for every built-in scene, sorted by name
func BuiltinScenes() []SceneInfo {
	var scenes []SceneInfo
	for _, name := range Names() {
		scenes = append(scenes, SceneInfo{
			ID:          name,
			Name:        titleCase(name),
			Description: builtins[name].description,
			Group:       BuiltinGroup,
			Type:        "builtin",
		})
	}
	return scenes
}

// ListAllScenes returns built-in scenes and the OBJ scenes found in dir,
// grouped by category with built-ins first
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	objScenes, err := ListOBJScenes(dir)
	if err != nil {
		return response, err
	}

	groupMap := make(map[string][]SceneInfo)
	for _, info := range append(BuiltinScenes(), objScenes...) {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for name := range groupMap {
		if name != BuiltinGroup {
			groupNames = append(groupNames, name)
		}
	}
	sort.Strings(groupNames)
	groupNames = append([]string{BuiltinGroup}, groupNames...)

	for _, name := range groupNames {
		if scenes, ok := groupMap[name]; ok {
			response.Groups = append(response.Groups, SceneGroup{Name: name, Scenes: scenes})
		}
	}
	return response, nil
}

// FindScene looks up a scene by ID among the built-ins and the OBJ scenes in dir
func FindScene(id, dir string) (SceneInfo, bool, error) {
	if IsBuiltin(id) {
		for _, info := range BuiltinScenes() {
			if info.ID == id {
				return info, true, nil
			}
		}
	}

	objScenes, err := ListOBJScenes(dir)
	if err != nil {
		return SceneInfo{}, false, err
	}
	for _, info := range objScenes {
		if info.ID == id {
			return info, true, nil
		}
	}
	return SceneInfo{}, false, nil
}

// CreateFromInfo builds the scene a SceneInfo describes
func CreateFromInfo(info SceneInfo, cameraOverrides ...geometry.CameraConfig) (*Preset, error) {
	if info.Type == "obj" {
		return NewOBJScene(info.FilePath, cameraOverrides...)
	}
	return Create(info.ID, cameraOverrides...)
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
