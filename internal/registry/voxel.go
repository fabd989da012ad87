package registry

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxVoxelTypes bounds voxel ids, which are stored in 16-bit channels.
	MaxVoxelTypes = 65536
	// MaxMaterials is the number of material slots a mesher can output.
	MaxMaterials = 8
)

var (
	ErrMaterialID     = errors.New("registry: material id out of range")
	ErrInsideGeometry = errors.New("registry: inside geometry is not a triangle list")
)

// Voxel describes how one voxel id looks and how it interacts with light and culling.
type Voxel struct {
	ID          int
	Name        string
	MaterialID  int
	Transparent bool
	HiddenFaces uint8
	Color       mgl32.Vec4

	// Per-side triangle lists in unit-cube space. A side is only emitted when
	// its neighbor does not cover it.
	SideVertices [SideCount][]mgl32.Vec3
	SideUVs      [SideCount][]mgl32.Vec2

	// Geometry that is always emitted, for shapes that are not cubes.
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	UVs      []mgl32.Vec2

	atlasSize int
}

func newVoxel(id int, name string, atlasSize int) *Voxel {
	return &Voxel{
		ID:        id,
		Name:      name,
		Color:     mgl32.Vec4{1, 1, 1, 1},
		atlasSize: atlasSize,
	}
}

// SetMaterialID assigns the output material slot.
func (v *Voxel) SetMaterialID(id int) error {
	if id < 0 || id >= MaxMaterials {
		return fmt.Errorf("voxel %q: material %d: %w", v.Name, id, ErrMaterialID)
	}
	v.MaterialID = id
	return nil
}

// Validate checks the exported fields that SetMaterialID and
// SetInsideGeometry would otherwise guard.
func (v *Voxel) Validate() error {
	if v.MaterialID < 0 || v.MaterialID >= MaxMaterials {
		return fmt.Errorf("voxel %q: material %d: %w", v.Name, v.MaterialID, ErrMaterialID)
	}
	n := len(v.Vertices)
	if n%3 != 0 || len(v.Normals) != n || len(v.UVs) != n {
		return fmt.Errorf("voxel %q: %d vertices, %d normals, %d uvs: %w",
			v.Name, n, len(v.Normals), len(v.UVs), ErrInsideGeometry)
	}
	return nil
}

// HideFaces marks sides that never occlude a neighbor's face.
func (v *Voxel) HideFaces(sides ...Side) {
	for _, s := range sides {
		v.HiddenFaces |= 1 << uint(s)
	}
}

// IsFaceVisible reports whether the given side of this voxel covers its neighbor.
func (v *Voxel) IsFaceVisible(s Side) bool {
	return v.HiddenFaces&(1<<uint(s)) == 0
}

// HasSideGeometry reports whether any side carries triangles.
func (v *Voxel) HasSideGeometry() bool {
	for _, sv := range v.SideVertices {
		if len(sv) > 0 {
			return true
		}
	}
	return false
}

// SetCubeGeometry fills the side triangle lists with a unit cube of the given
// height. Heights below one make slabs whose top still culls like a full side.
func (v *Voxel) SetCubeGeometry(height float32) *Voxel {
	sy := height
	tables := [SideCount][6]mgl32.Vec3{
		SideLeft: {
			{0, 0, 0}, {0, sy, 0}, {0, sy, 1},
			{0, 0, 0}, {0, sy, 1}, {0, 0, 1},
		},
		SideRight: {
			{1, 0, 0}, {1, sy, 1}, {1, sy, 0},
			{1, 0, 0}, {1, 0, 1}, {1, sy, 1},
		},
		SideBottom: {
			{0, 0, 0}, {1, 0, 1}, {1, 0, 0},
			{0, 0, 0}, {0, 0, 1}, {1, 0, 1},
		},
		SideTop: {
			{0, sy, 0}, {1, sy, 0}, {1, sy, 1},
			{0, sy, 0}, {1, sy, 1}, {0, sy, 1},
		},
		SideBack: {
			{0, 0, 0}, {1, 0, 0}, {1, sy, 0},
			{0, 0, 0}, {1, sy, 0}, {0, sy, 0},
		},
		SideFront: {
			{1, 0, 1}, {0, 0, 1}, {1, sy, 1},
			{0, 0, 1}, {0, sy, 1}, {1, sy, 1},
		},
	}
	for s := range tables {
		v.SideVertices[s] = append(v.SideVertices[s][:0], tables[s][:]...)
	}
	return v
}

// Corner picks inside one atlas tile, inset so that sampling never bleeds
// into the neighboring tile.
var cubeTileUVs = func() [4]mgl32.Vec2 {
	const e = 0.001
	return [4]mgl32.Vec2{{e, e}, {1 - e, e}, {e, 1 - e}, {1 - e, 1 - e}}
}()

// Which tile corner each of the six side vertices uses.
var cubeSideUVOrder = [SideCount][6]int{
	SideLeft:   {2, 0, 1, 2, 1, 3},
	SideRight:  {2, 1, 0, 2, 3, 1},
	SideBottom: {0, 3, 1, 0, 2, 3},
	SideTop:    {0, 1, 3, 0, 3, 2},
	SideBack:   {2, 3, 1, 2, 1, 0},
	SideFront:  {3, 2, 1, 2, 0, 1},
}

// SetCubeUVAllSides maps the same atlas tile on every side.
func (v *Voxel) SetCubeUVAllSides(tile mgl32.Vec2) *Voxel {
	return v.setCubeUVSides([SideCount]mgl32.Vec2{tile, tile, tile, tile, tile, tile})
}

// SetCubeUVTBSSides maps separate tiles for top, bottom, and the four walls.
func (v *Voxel) SetCubeUVTBSSides(top, side, bottom mgl32.Vec2) *Voxel {
	return v.setCubeUVSides([SideCount]mgl32.Vec2{
		SideLeft:   side,
		SideRight:  side,
		SideBottom: bottom,
		SideTop:    top,
		SideBack:   side,
		SideFront:  side,
	})
}

func (v *Voxel) setCubeUVSides(tiles [SideCount]mgl32.Vec2) *Voxel {
	atlas := v.atlasSize
	if atlas <= 0 {
		atlas = 1
	}
	s := 1 / float32(atlas)
	for side := 0; side < SideCount; side++ {
		uvs := make([]mgl32.Vec2, 6)
		for i, c := range cubeSideUVOrder[side] {
			uvs[i] = tiles[side].Add(cubeTileUVs[c]).Mul(s)
		}
		v.SideUVs[side] = uvs
	}
	return v
}

// SetInsideGeometry installs an always-emitted triangle list. All three
// slices must have the same length, a multiple of three. Nil normals or uvs
// are filled with zeros.
func (v *Voxel) SetInsideGeometry(vertices, normals []mgl32.Vec3, uvs []mgl32.Vec2) error {
	n := len(vertices)
	if n%3 != 0 {
		return fmt.Errorf("voxel %q: %d vertices: %w", v.Name, n, ErrInsideGeometry)
	}
	if normals == nil {
		normals = make([]mgl32.Vec3, n)
	}
	if uvs == nil {
		uvs = make([]mgl32.Vec2, n)
	}
	if len(normals) != n || len(uvs) != n {
		return fmt.Errorf("voxel %q: %d vertices, %d normals, %d uvs: %w",
			v.Name, n, len(normals), len(uvs), ErrInsideGeometry)
	}
	v.Vertices = vertices
	v.Normals = normals
	v.UVs = uvs
	return nil
}
