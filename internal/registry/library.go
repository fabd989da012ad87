package registry

import (
	"fmt"
	"sort"
)

// Library maps voxel ids to their type definitions.
// Ids without a definition behave like empty space: transparent and meshless.
type Library struct {
	voxels    map[int]*Voxel
	names     map[string]int
	atlasSize int
}

// NewLibrary creates an empty library whose UV helpers address an
// atlasSize x atlasSize tile atlas.
func NewLibrary(atlasSize int) *Library {
	if atlasSize <= 0 {
		atlasSize = 1
	}
	return &Library{
		voxels:    make(map[int]*Voxel),
		names:     make(map[string]int),
		atlasSize: atlasSize,
	}
}

func (l *Library) AtlasSize() int { return l.atlasSize }

// CreateVoxel defines a new voxel type and returns it for further setup.
// An existing definition with the same id is replaced.
func (l *Library) CreateVoxel(id int, name string) *Voxel {
	if id < 0 || id >= MaxVoxelTypes {
		panic(fmt.Sprintf("registry: voxel id %d out of range [0,%d)", id, MaxVoxelTypes))
	}
	v := newVoxel(id, name, l.atlasSize)
	l.Register(v)
	return v
}

// Register installs a voxel built elsewhere. It panics on an out-of-range id
// or a definition Validate rejects.
func (l *Library) Register(v *Voxel) {
	if v.ID < 0 || v.ID >= MaxVoxelTypes {
		panic(fmt.Sprintf("registry: voxel id %d out of range [0,%d)", v.ID, MaxVoxelTypes))
	}
	if err := v.Validate(); err != nil {
		panic(err.Error())
	}
	if old, ok := l.voxels[v.ID]; ok && l.names[old.Name] == v.ID {
		delete(l.names, old.Name)
	}
	if v.atlasSize == 0 {
		v.atlasSize = l.atlasSize
	}
	l.voxels[v.ID] = v
	if v.Name != "" {
		l.names[v.Name] = v.ID
	}
}

// Has reports whether an id is defined.
func (l *Library) Has(id int) bool {
	_, ok := l.voxels[id]
	return ok
}

// Get returns the definition of an id, or nil.
func (l *Library) Get(id int) *Voxel {
	return l.voxels[id]
}

// Lookup finds a voxel id by name.
func (l *Library) Lookup(name string) (int, bool) {
	id, ok := l.names[name]
	return id, ok
}

// IsTransparent reports whether light and visibility pass through an id.
func (l *Library) IsTransparent(id int) bool {
	v, ok := l.voxels[id]
	return !ok || v.Transparent
}

// IDs returns all defined ids in ascending order.
func (l *Library) IDs() []int {
	ids := make([]int, 0, len(l.voxels))
	for id := range l.voxels {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (l *Library) Len() int { return len(l.voxels) }
