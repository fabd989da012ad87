package meshing

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxelkit/internal/profiling"
	"voxelkit/internal/registry"
	"voxelkit/internal/world"
)

var (
	ErrNoLibrary   = errors.New("meshing: no voxel library set")
	ErrNoMaterials = errors.New("meshing: no material configured")
)

// DefaultOcclusionDarkness is how dark a fully occluded corner gets.
const DefaultOcclusionDarkness = 0.75

// Mesher turns a padded voxel buffer into culled-face geometry with baked
// ambient occlusion. The outer one-voxel shell of the input is only read as
// neighbor context and never produces geometry.
//
// A Mesher reuses internal scratch space and must not be shared between
// goroutines; use Clone to give each worker its own.
type Mesher struct {
	library   *registry.Library
	materials [registry.MaxMaterials]*Material

	occlusionEnabled  bool
	occlusionDarkness float32

	builders [registry.MaxMaterials]surfaceBuilder
}

// NewMesher creates a mesher with occlusion baking on at the default darkness.
func NewMesher(lib *registry.Library) *Mesher {
	return &Mesher{
		library:           lib,
		occlusionEnabled:  true,
		occlusionDarkness: DefaultOcclusionDarkness,
	}
}

// Clone copies the configuration into a new mesher with its own scratch space.
// The library and materials are shared.
func (m *Mesher) Clone() *Mesher {
	return &Mesher{
		library:           m.library,
		materials:         m.materials,
		occlusionEnabled:  m.occlusionEnabled,
		occlusionDarkness: m.occlusionDarkness,
	}
}

func (m *Mesher) SetLibrary(lib *registry.Library) { m.library = lib }
func (m *Mesher) Library() *registry.Library       { return m.library }

// SetMaterial configures an output slot. A nil material clears it.
func (m *Mesher) SetMaterial(id int, mat *Material) error {
	if id < 0 || id >= registry.MaxMaterials {
		return fmt.Errorf("set material %d: %w", id, registry.ErrMaterialID)
	}
	m.materials[id] = mat
	return nil
}

// Material returns the material in a slot, or nil.
func (m *Mesher) Material(id int) *Material {
	if id < 0 || id >= registry.MaxMaterials {
		return nil
	}
	return m.materials[id]
}

func (m *Mesher) SetOcclusionEnabled(enabled bool) { m.occlusionEnabled = enabled }
func (m *Mesher) OcclusionEnabled() bool           { return m.occlusionEnabled }

// SetOcclusionDarkness sets the corner darkening strength, clamped to [0,1].
func (m *Mesher) SetOcclusionDarkness(darkness float32) {
	m.occlusionDarkness = mgl32.Clamp(darkness, 0, 1)
}

func (m *Mesher) OcclusionDarkness() float32 { return m.occlusionDarkness }

// Build meshes the interior of buf, reading voxel ids from channel ch.
// Vertex positions are relative to the first interior voxel, so a buffer
// copied from BlockToVoxel(b)-1 yields geometry in block-local space.
func (m *Mesher) Build(buf *world.Buffer, ch int) (*Mesh, error) {
	defer profiling.Track("meshing.Build")()

	if m.library == nil {
		return nil, ErrNoLibrary
	}
	configured := false
	for _, mat := range m.materials {
		if mat != nil {
			configured = true
			break
		}
	}
	if !configured {
		return nil, ErrNoMaterials
	}

	for i := range m.builders {
		m.builders[i].reset(m.occlusionEnabled)
	}

	lib := m.library
	size := buf.Size()
	shadeScale := m.occlusionDarkness / 3
	white := mgl32.Vec4{1, 1, 1, 1}

	for z := 1; z < size.Z-1; z++ {
		for x := 1; x < size.X-1; x++ {
			for y := 1; y < size.Y-1; y++ {
				id := int(buf.GetVoxel(x, y, z, ch))
				voxel := lib.Get(id)
				if voxel == nil {
					continue
				}
				checkVoxel(voxel)
				sb := &m.builders[voxel.MaterialID]
				origin := mgl32.Vec3{float32(x - 1), float32(y - 1), float32(z - 1)}

				for side := registry.Side(0); side < registry.SideCount; side++ {
					if !voxel.IsFaceVisible(side) {
						continue
					}
					vertices := voxel.SideVertices[side]
					if len(vertices) == 0 {
						continue
					}
					dx, dy, dz := side.Normal()
					neighbor := int(buf.GetVoxel(x+dx, y+dy, z+dz, ch))
					if !m.faceVisible(voxel, neighbor, side.Opposite()) {
						continue
					}

					var shaded [cornerCount]int
					if m.occlusionEnabled {
						shaded = m.cornerOcclusion(buf, x, y, z, ch, side)
					}

					normal := side.NormalF()
					uvs := voxel.SideUVs[side]
					for i, v := range vertices {
						var uv mgl32.Vec2
						if i < len(uvs) {
							uv = uvs[i]
						}
						color := white
						if m.occlusionEnabled {
							shade := vertexShade(v, side, &shaded, shadeScale)
							g := 1 - shade
							color = mgl32.Vec4{g, g, g, 1}
						}
						sb.add(v.Add(origin), normal, uv, color)
					}
				}

				for i, v := range voxel.Vertices {
					sb.add(v.Add(origin), voxel.Normals[i], voxel.UVs[i], white)
				}
			}
		}
	}

	mesh := &Mesh{}
	for id := range m.builders {
		sb := &m.builders[id]
		if m.materials[id] == nil || sb.empty() {
			continue
		}
		s := sb.index()
		s.MaterialID = id
		s.Material = m.materials[id]
		mesh.Surfaces = append(mesh.Surfaces, s)
	}
	return mesh, nil
}

// faceVisible decides whether a face is exposed given the voxel on the other
// side. otherFace is the neighbor's side that touches the face.
func (m *Mesher) faceVisible(voxel *registry.Voxel, neighborID int, otherFace registry.Side) bool {
	other := m.library.Get(neighborID)
	if other == nil {
		return true
	}
	if other.Transparent && other.ID != voxel.ID {
		return true
	}
	return !other.IsFaceVisible(otherFace)
}

func (m *Mesher) isOpaque(buf *world.Buffer, x, y, z, ch int) bool {
	return !m.library.IsTransparent(int(buf.GetVoxel(x, y, z, ch)))
}

// cornerOcclusion counts, per corner of the given side, how many of the
// surrounding cells block ambient light. Two blocking edges saturate a corner
// regardless of the diagonal cell.
func (m *Mesher) cornerOcclusion(buf *world.Buffer, x, y, z, ch int, side registry.Side) [cornerCount]int {
	var shaded [cornerCount]int
	for _, edge := range sideEdges[side] {
		n := edgeNormals[edge]
		if m.isOpaque(buf, x+n[0], y+n[1], z+n[2], ch) {
			shaded[edgeCorners[edge][0]]++
			shaded[edgeCorners[edge][1]]++
		}
	}
	for _, corner := range sideCorners[side] {
		if shaded[corner] == 2 {
			shaded[corner] = 3
			continue
		}
		n := cornerNormals[corner]
		if m.isOpaque(buf, x+n[0], y+n[1], z+n[2], ch) {
			shaded[corner]++
		}
	}
	return shaded
}

// vertexShade is the strongest corner influence on a vertex, fading linearly
// to zero one unit away from the corner.
func vertexShade(v mgl32.Vec3, side registry.Side, shaded *[cornerCount]int, scale float32) float32 {
	var shade float32
	for _, corner := range sideCorners[side] {
		if shaded[corner] == 0 {
			continue
		}
		k := 1 - cornerPositions[corner].Sub(v).Len()
		if k <= 0 {
			continue
		}
		if s := scale * float32(shaded[corner]) * k; s > shade {
			shade = s
		}
	}
	return shade
}

// checkVoxel panics when a voxel's exported fields were changed after
// registration into something the mesher cannot index.
func checkVoxel(v *registry.Voxel) {
	if err := v.Validate(); err != nil {
		panic(fmt.Sprintf("meshing: voxel %d: %v", v.ID, err))
	}
}
