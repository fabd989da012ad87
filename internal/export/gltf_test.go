package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelkit/internal/meshing"
	"voxelkit/internal/registry"
	"voxelkit/internal/world"
)

func singleVoxelMesh(t *testing.T, occlusion bool) *meshing.Mesh {
	t.Helper()
	lib := registry.NewLibrary(1)
	lib.CreateVoxel(1, "stone").SetCubeGeometry(1).SetCubeUVAllSides(mgl32.Vec2{0, 0})

	m := meshing.NewMesher(lib)
	m.SetOcclusionEnabled(occlusion)
	require.NoError(t, m.SetMaterial(0, &meshing.Material{Name: "stone", BaseColor: mgl32.Vec4{0.5, 0.5, 0.5, 1}}))

	buf := world.NewBuffer(3, 3, 3)
	buf.SetVoxel(1, 1, 1, 1, 0)
	mesh, err := m.Build(buf, 0)
	require.NoError(t, err)
	return mesh
}

func TestDocumentNodesPerBlock(t *testing.T) {
	mesh := singleVoxelMesh(t, true)
	doc, err := Document([]BlockMesh{
		{Block: world.V3(0, 0, 0), Mesh: mesh},
		{Block: world.V3(1, -1, 2), Mesh: mesh},
		{Block: world.V3(5, 5, 5), Mesh: &meshing.Mesh{}},
	})
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 2, "empty meshes get no node")
	require.Len(t, doc.Meshes, 2)
	assert.Len(t, doc.Scenes[0].Nodes, 2)
	assert.Equal(t, [3]float32{16, -16, 32}, doc.Nodes[1].Translation)

	require.Len(t, doc.Materials, 1, "shared material written once")
	assert.Equal(t, "stone", doc.Materials[0].Name)
	assert.Equal(t, gltf.AlphaOpaque, doc.Materials[0].AlphaMode)

	prim := doc.Meshes[0].Primitives[0]
	for _, attr := range []string{gltf.POSITION, gltf.NORMAL, gltf.TEXCOORD_0, gltf.COLOR_0} {
		assert.Contains(t, prim.Attributes, attr)
	}
	require.NotNil(t, prim.Indices)
	assert.EqualValues(t, 36, doc.Accessors[*prim.Indices].Count)
}

func TestDocumentWithoutOcclusionHasNoColors(t *testing.T) {
	doc, err := Document([]BlockMesh{{Mesh: singleVoxelMesh(t, false)}})
	require.NoError(t, err)
	assert.NotContains(t, doc.Meshes[0].Primitives[0].Attributes, gltf.COLOR_0)
}

func TestDocumentEmpty(t *testing.T) {
	_, err := Document(nil)
	assert.ErrorIs(t, err, ErrNothingToExport)

	_, err = Document([]BlockMesh{{Mesh: nil}})
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestWriteGLB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.glb")
	require.NoError(t, WriteGLB(path, []BlockMesh{{Mesh: singleVoxelMesh(t, true)}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	doc, err := gltf.Open(path)
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 1)
}
