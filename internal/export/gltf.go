package export

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"voxelkit/internal/meshing"
	"voxelkit/internal/profiling"
	"voxelkit/internal/world"
)

var ErrNothingToExport = errors.New("export: no geometry")

// BlockMesh is a meshed block ready for export. Mesh positions are block-local.
type BlockMesh struct {
	Block world.Vec3i
	Mesh  *meshing.Mesh
}

// Document builds a glTF scene with one node per non-empty block, translated
// to the block origin, and one primitive per surface.
func Document(meshes []BlockMesh) (*gltf.Document, error) {
	defer profiling.Track("export.Document")()

	doc := gltf.NewDocument()
	doc.Asset.Generator = "voxelkit"

	materials := make(map[*meshing.Material]uint32)
	materialIndex := func(s *meshing.Surface) uint32 {
		if idx, ok := materials[s.Material]; ok {
			return idx
		}
		doc.Materials = append(doc.Materials, newMaterial(s))
		idx := uint32(len(doc.Materials) - 1)
		materials[s.Material] = idx
		return idx
	}

	for _, bm := range meshes {
		if bm.Mesh.IsEmpty() {
			continue
		}
		gm := &gltf.Mesh{Name: fmt.Sprintf("block_%d_%d_%d", bm.Block.X, bm.Block.Y, bm.Block.Z)}
		for _, s := range bm.Mesh.Surfaces {
			if s.TriangleCount() == 0 {
				continue
			}
			gm.Primitives = append(gm.Primitives, writeSurface(doc, s, materialIndex(s)))
		}
		doc.Meshes = append(doc.Meshes, gm)

		origin := world.BlockToVoxel(bm.Block)
		node := &gltf.Node{
			Name:        gm.Name,
			Mesh:        gltf.Index(uint32(len(doc.Meshes) - 1)),
			Translation: [3]float32{float32(origin.X), float32(origin.Y), float32(origin.Z)},
		}
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	if len(doc.Nodes) == 0 {
		return nil, ErrNothingToExport
	}
	return doc, nil
}

// WriteGLB exports meshes to a binary glTF file.
func WriteGLB(path string, meshes []BlockMesh) error {
	doc, err := Document(meshes)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeSurface(doc *gltf.Document, s *meshing.Surface, material uint32) *gltf.Primitive {
	positions := make([][3]float32, len(s.Positions))
	for i, p := range s.Positions {
		positions[i] = p
	}
	normals := make([][3]float32, len(s.Normals))
	for i, n := range s.Normals {
		normals[i] = n
	}
	uvs := make([][2]float32, len(s.UVs))
	for i, uv := range s.UVs {
		uvs[i] = uv
	}
	indices := make([]uint32, len(s.Indices))
	copy(indices, s.Indices)

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	uvAccessor := modeler.WriteTextureCoord(doc, uvs)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	attributes := map[string]uint32{
		gltf.POSITION:   uint32(posAccessor),
		gltf.NORMAL:     uint32(normalAccessor),
		gltf.TEXCOORD_0: uint32(uvAccessor),
	}
	if len(s.Colors) == len(s.Positions) && len(s.Colors) > 0 {
		colors := make([][4]float32, len(s.Colors))
		for i, c := range s.Colors {
			colors[i] = c
		}
		attributes[gltf.COLOR_0] = uint32(modeler.WriteColor(doc, colors))
	}

	return &gltf.Primitive{
		Attributes: attributes,
		Indices:    gltf.Index(uint32(indicesAccessor)),
		Material:   gltf.Index(material),
	}
}

func newMaterial(s *meshing.Surface) *gltf.Material {
	base := [4]float32{1, 1, 1, 1}
	name := fmt.Sprintf("material_%d", s.MaterialID)
	blend := false
	if m := s.Material; m != nil {
		if m.BaseColor != ([4]float32{}) {
			base = m.BaseColor
		}
		if m.Name != "" {
			name = m.Name
		}
		blend = m.AlphaBlend
	}
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &base,
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	material := &gltf.Material{Name: name, PBRMetallicRoughness: pbr}
	if blend {
		material.AlphaMode = gltf.AlphaBlend
	} else {
		material.AlphaMode = gltf.AlphaOpaque
	}
	return material
}
