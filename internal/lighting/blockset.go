package lighting

import (
	"sort"

	"voxelkit/internal/world"
)

// BlockSet is a set of block coordinates, used to report which blocks a
// lighting pass wrote to.
type BlockSet map[world.Vec3i]struct{}

func (s BlockSet) Add(bpos world.Vec3i) { s[bpos] = struct{}{} }

func (s BlockSet) Has(bpos world.Vec3i) bool {
	_, ok := s[bpos]
	return ok
}

// Merge adds every element of other to s.
func (s BlockSet) Merge(other BlockSet) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Sorted returns the coordinates in z, x, y order.
func (s BlockSet) Sorted() []world.Vec3i {
	out := make([]world.Vec3i, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	return out
}
