package meshing

import "github.com/go-gl/mathgl/mgl32"

// Material is the render description attached to one output surface.
// The mesher only checks whether a slot is configured.
type Material struct {
	Name       string
	BaseColor  mgl32.Vec4
	AlphaBlend bool
}

// Surface is one indexed triangle list sharing a single material.
type Surface struct {
	MaterialID int
	Material   *Material

	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Colors    []mgl32.Vec4 // nil when occlusion baking is off
	Indices   []uint32
}

func (s *Surface) VertexCount() int   { return len(s.Positions) }
func (s *Surface) TriangleCount() int { return len(s.Indices) / 3 }

// Mesh is the result of one Build call: a surface per populated material slot.
type Mesh struct {
	Surfaces []*Surface
}

func (m *Mesh) TriangleCount() int {
	n := 0
	for _, s := range m.Surfaces {
		n += s.TriangleCount()
	}
	return n
}

func (m *Mesh) VertexCount() int {
	n := 0
	for _, s := range m.Surfaces {
		n += s.VertexCount()
	}
	return n
}

// IsEmpty reports whether the mesh has no triangles at all.
func (m *Mesh) IsEmpty() bool {
	return m == nil || m.TriangleCount() == 0
}

// surfaceBuilder accumulates a flat triangle list for one material.
type surfaceBuilder struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	colors    []mgl32.Vec4
	useColors bool
}

func (b *surfaceBuilder) reset(useColors bool) {
	b.positions = b.positions[:0]
	b.normals = b.normals[:0]
	b.uvs = b.uvs[:0]
	b.colors = b.colors[:0]
	b.useColors = useColors
}

func (b *surfaceBuilder) add(pos, normal mgl32.Vec3, uv mgl32.Vec2, color mgl32.Vec4) {
	b.positions = append(b.positions, pos)
	b.normals = append(b.normals, normal)
	b.uvs = append(b.uvs, uv)
	if b.useColors {
		b.colors = append(b.colors, color)
	}
}

func (b *surfaceBuilder) empty() bool { return len(b.positions) == 0 }

type vertexKey struct {
	pos    mgl32.Vec3
	normal mgl32.Vec3
	uv     mgl32.Vec2
	color  mgl32.Vec4
}

// index merges identical vertices and returns the resulting indexed surface.
func (b *surfaceBuilder) index() *Surface {
	s := &Surface{Indices: make([]uint32, 0, len(b.positions))}
	seen := make(map[vertexKey]uint32, len(b.positions)/2)
	for i := range b.positions {
		k := vertexKey{pos: b.positions[i], normal: b.normals[i], uv: b.uvs[i]}
		if b.useColors {
			k.color = b.colors[i]
		}
		idx, ok := seen[k]
		if !ok {
			idx = uint32(len(s.Positions))
			seen[k] = idx
			s.Positions = append(s.Positions, k.pos)
			s.Normals = append(s.Normals, k.normal)
			s.UVs = append(s.UVs, k.uv)
			if b.useColors {
				s.Colors = append(s.Colors, k.color)
			}
		}
		s.Indices = append(s.Indices, idx)
	}
	return s
}
