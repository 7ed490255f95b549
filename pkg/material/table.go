package material

import "sort"

// Handle is a stable reference into a Table
type Handle int

// NoHandle marks an unset material reference
const NoHandle Handle = -1

// Table owns every material of a scene. Primitives refer to entries by
// Handle, so handles stay valid as the table grows. Once a scene is built
// the table is only read.
type Table struct {
	materials []Material
	byName    map[string]Handle
}

// NewTable creates an empty material table
func NewTable() *Table {
	return &Table{byName: make(map[string]Handle)}
}

// Add stores m and returns its handle. A material with a name already in
// the table replaces the earlier definition and keeps its handle.
func (t *Table) Add(m Material) Handle {
	if h, ok := t.byName[m.Name]; ok {
		t.materials[h] = m
		return h
	}
	h := Handle(len(t.materials))
	t.materials = append(t.materials, m)
	t.byName[m.Name] = h
	return h
}

// Get returns the material for h, or nil if h does not resolve
func (t *Table) Get(h Handle) *Material {
	if !t.Valid(h) {
		return nil
	}
	return &t.materials[h]
}

// Valid reports whether h refers to a material in the table
func (t *Table) Valid(h Handle) bool {
	return h >= 0 && int(h) < len(t.materials)
}

// Lookup finds a material handle by name
func (t *Table) Lookup(name string) (Handle, bool) {
	h, ok := t.byName[name]
	return h, ok
}

// Len returns the number of materials
func (t *Table) Len() int {
	return len(t.materials)
}

// Names returns the material names in sorted order
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
