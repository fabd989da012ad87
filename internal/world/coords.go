package world

import "fmt"

const (
	// Block dimensions. Blocks are cubes so that every axis folds the same way.
	BlockSizePow2 = 4
	BlockSize     = 1 << BlockSizePow2
	BlockVolume   = BlockSize * BlockSize * BlockSize
)

// Vec3i is an integer voxel or block coordinate.
type Vec3i struct {
	X, Y, Z int
}

// V3 is shorthand for Vec3i{x, y, z}.
func V3(x, y, z int) Vec3i {
	return Vec3i{X: x, Y: y, Z: z}
}

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3i) Sub(o Vec3i) Vec3i { return Vec3i{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3i) Mul(s int) Vec3i   { return Vec3i{v.X * s, v.Y * s, v.Z * s} }

// ContainedIn reports whether v lies in the half-open box [min, max).
func (v Vec3i) ContainedIn(min, max Vec3i) bool {
	return v.X >= min.X && v.Y >= min.Y && v.Z >= min.Z &&
		v.X < max.X && v.Y < max.Y && v.Z < max.Z
}

// ManhattanTo returns the taxicab distance between two coordinates.
func (v Vec3i) ManhattanTo(o Vec3i) int {
	return absInt(v.X-o.X) + absInt(v.Y-o.Y) + absInt(v.Z-o.Z)
}

func (v Vec3i) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// SortMinMax returns a and b reordered so that every component of the first
// result is <= the matching component of the second.
func SortMinMax(a, b Vec3i) (Vec3i, Vec3i) {
	if a.X > b.X {
		a.X, b.X = b.X, a.X
	}
	if a.Y > b.Y {
		a.Y, b.Y = b.Y, a.Y
	}
	if a.Z > b.Z {
		a.Z, b.Z = b.Z, a.Z
	}
	return a, b
}

// VoxelToBlock converts a world voxel position into the coordinate of the block containing it.
func VoxelToBlock(pos Vec3i) Vec3i {
	return Vec3i{
		X: floorDiv(pos.X, BlockSize),
		Y: floorDiv(pos.Y, BlockSize),
		Z: floorDiv(pos.Z, BlockSize),
	}
}

// BlockToVoxel returns the world voxel position of a block's origin.
func BlockToVoxel(bpos Vec3i) Vec3i {
	return bpos.Mul(BlockSize)
}

// VoxelToLocal returns the position of a voxel relative to its block's origin.
func VoxelToLocal(pos Vec3i) Vec3i {
	return Vec3i{
		X: mod(pos.X, BlockSize),
		Y: mod(pos.Y, BlockSize),
		Z: mod(pos.Z, BlockSize),
	}
}

func floorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// MooreNeighbors lists the 26 offsets surrounding a cell.
var MooreNeighbors = func() [26]Vec3i {
	var out [26]Vec3i
	i := 0
	for y := -1; y <= 1; y++ {
		for z := -1; z <= 1; z++ {
			for x := -1; x <= 1; x++ {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				out[i] = Vec3i{x, y, z}
				i++
			}
		}
	}
	return out
}()
