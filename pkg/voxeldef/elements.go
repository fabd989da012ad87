package voxeldef

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxelkit/internal/registry"
)

var faceNames = map[string]registry.Side{
	"up":    registry.SideTop,
	"down":  registry.SideBottom,
	"north": registry.SideBack,
	"south": registry.SideFront,
	"west":  registry.SideLeft,
	"east":  registry.SideRight,
}

// ParseFace accepts both compass names (north, up, ...) and side names (back, top, ...).
func ParseFace(name string) (registry.Side, bool) {
	if s, ok := faceNames[name]; ok {
		return s, true
	}
	return registry.ParseSide(name)
}

// elementGeometry expands box elements into a triangle list, reusing the unit
// cube's winding and tile mapping for every face.
func elementGeometry(def *VoxelDef, tile mgl32.Vec2, atlasSize int) ([]mgl32.Vec3, []mgl32.Vec3, []mgl32.Vec2, error) {
	unit := registry.NewLibrary(atlasSize).CreateVoxel(1, "unit").
		SetCubeGeometry(1).
		SetCubeUVAllSides(tile)

	var vertices, normals []mgl32.Vec3
	var uvs []mgl32.Vec2
	for i, e := range def.Elements {
		lo := mgl32.Vec3(e.From).Mul(1.0 / 16)
		hi := mgl32.Vec3(e.To).Mul(1.0 / 16)
		for a := 0; a < 3; a++ {
			if lo[a] < 0 || hi[a] > 1 || lo[a] >= hi[a] {
				return nil, nil, nil, fmt.Errorf("voxel %q: element %d box %v-%v: %w", def.Name, i, e.From, e.To, ErrInvalid)
			}
		}

		sides := make([]registry.Side, 0, registry.SideCount)
		if len(e.Faces) == 0 {
			for s := registry.Side(0); s < registry.SideCount; s++ {
				sides = append(sides, s)
			}
		}
		for _, name := range e.Faces {
			s, ok := ParseFace(name)
			if !ok {
				return nil, nil, nil, fmt.Errorf("voxel %q: element %d: unknown face %q: %w", def.Name, i, name, ErrInvalid)
			}
			sides = append(sides, s)
		}

		for _, s := range sides {
			n := s.NormalF()
			for j, p := range unit.SideVertices[s] {
				q := mgl32.Vec3{
					lo[0] + p[0]*(hi[0]-lo[0]),
					lo[1] + p[1]*(hi[1]-lo[1]),
					lo[2] + p[2]*(hi[2]-lo[2]),
				}
				vertices = append(vertices, q)
				normals = append(normals, n)
				uvs = append(uvs, unit.SideUVs[s][j])
			}
		}
	}
	return vertices, normals, uvs, nil
}
