package renderer

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode selects what a render encodes in each pixel
type Mode int

const (
	// ModeFull traces full light transport and tone maps the result
	ModeFull Mode = iota
	// ModeDepth shows primary hit distance, normalized to the farthest hit
	ModeDepth
	// ModeNormal shows the primary hit normal remapped to [0, 1]
	ModeNormal
)

var modeNames = map[Mode]string{
	ModeFull:   "full",
	ModeDepth:  "depth",
	ModeNormal: "normal",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode converts a mode name into a Mode
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for mode, modeName := range modeNames {
		if modeName == name {
			return mode, nil
		}
	}
	return ModeFull, errors.Errorf("unknown render mode %q (want full, depth or normal)", s)
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, errors.Errorf("unknown render mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
