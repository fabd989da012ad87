package registry

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestUndefinedIDsAreTransparent(t *testing.T) {
	lib := NewLibrary(4)
	lib.CreateVoxel(1, "stone").SetCubeGeometry(1)
	glass := lib.CreateVoxel(2, "glass").SetCubeGeometry(1)
	glass.Transparent = true

	if !lib.IsTransparent(0) {
		t.Errorf("undefined id 0 should be transparent")
	}
	if lib.IsTransparent(1) {
		t.Errorf("stone should be opaque")
	}
	if !lib.IsTransparent(2) {
		t.Errorf("glass should be transparent")
	}
	if id, ok := lib.Lookup("glass"); !ok || id != 2 {
		t.Errorf("Lookup(glass) = %d,%v", id, ok)
	}
}

func TestCreateVoxelRejectsOutOfRangeID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for id %d", MaxVoxelTypes)
		}
	}()
	NewLibrary(1).CreateVoxel(MaxVoxelTypes, "bad")
}

func TestOppositeSides(t *testing.T) {
	for s := Side(0); s < SideCount; s++ {
		if s.Opposite().Opposite() != s {
			t.Errorf("%v: opposite is not an involution", s)
		}
		a := s.NormalF()
		b := s.Opposite().NormalF()
		if !a.Add(b).ApproxEqual(mgl32.Vec3{}) {
			t.Errorf("%v and %v normals do not cancel", s, s.Opposite())
		}
	}
}

func TestHideFaces(t *testing.T) {
	v := NewLibrary(1).CreateVoxel(3, "slab")
	v.HideFaces(SideTop, SideLeft)
	if v.IsFaceVisible(SideTop) || v.IsFaceVisible(SideLeft) {
		t.Fatalf("hidden sides reported visible: %08b", v.HiddenFaces)
	}
	if !v.IsFaceVisible(SideBottom) {
		t.Fatalf("bottom should stay visible")
	}
}

func TestCubeUVStaysInsideTile(t *testing.T) {
	lib := NewLibrary(4)
	v := lib.CreateVoxel(1, "dirt").SetCubeGeometry(1).SetCubeUVAllSides(mgl32.Vec2{2, 1})
	for s := 0; s < SideCount; s++ {
		if len(v.SideUVs[s]) != len(v.SideVertices[s]) {
			t.Fatalf("side %d: %d uvs for %d vertices", s, len(v.SideUVs[s]), len(v.SideVertices[s]))
		}
		for _, uv := range v.SideUVs[s] {
			if uv[0] <= 0.5 || uv[0] >= 0.75 || uv[1] <= 0.25 || uv[1] >= 0.5 {
				t.Fatalf("side %d: uv %v outside tile (2,1)", s, uv)
			}
		}
	}
}

func TestSetMaterialIDRange(t *testing.T) {
	v := NewLibrary(1).CreateVoxel(1, "stone")
	if err := v.SetMaterialID(MaxMaterials); !errors.Is(err, ErrMaterialID) {
		t.Fatalf("SetMaterialID(%d) err = %v", MaxMaterials, err)
	}
	if err := v.SetMaterialID(3); err != nil || v.MaterialID != 3 {
		t.Fatalf("SetMaterialID(3) = %v, id %d", err, v.MaterialID)
	}
}

func TestSetInsideGeometryValidates(t *testing.T) {
	v := NewLibrary(1).CreateVoxel(5, "plant")
	tri := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if err := v.SetInsideGeometry(tri[:2], nil, nil); !errors.Is(err, ErrInsideGeometry) {
		t.Fatalf("expected ErrInsideGeometry, got %v", err)
	}
	if err := v.SetInsideGeometry(tri, nil, nil); err != nil {
		t.Fatalf("SetInsideGeometry: %v", err)
	}
	if len(v.Normals) != 3 || len(v.UVs) != 3 {
		t.Fatalf("defaults not filled: %d normals %d uvs", len(v.Normals), len(v.UVs))
	}
}

func TestRegisterRejectsInvalidVoxel(t *testing.T) {
	cases := map[string]*Voxel{
		"material": {ID: 1, Name: "bad", MaterialID: MaxMaterials},
		"inside":   {ID: 2, Name: "bad", Vertices: make([]mgl32.Vec3, 3), Normals: make([]mgl32.Vec3, 3)},
		"partial":  {ID: 3, Name: "bad", Vertices: make([]mgl32.Vec3, 2), Normals: make([]mgl32.Vec3, 2), UVs: make([]mgl32.Vec2, 2)},
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			lib := NewLibrary(1)
			defer func() {
				if recover() == nil {
					t.Fatalf("Register accepted %+v", v)
				}
				if lib.Has(v.ID) {
					t.Fatalf("rejected voxel was installed")
				}
			}()
			lib.Register(v)
		})
	}

	ok := &Voxel{ID: 4, Name: "ok", MaterialID: MaxMaterials - 1}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	lib := NewLibrary(1)
	lib.Register(ok)
	if lib.Get(4) != ok {
		t.Fatalf("valid voxel not installed")
	}
}

func TestValidateErrors(t *testing.T) {
	v := &Voxel{Name: "bad", MaterialID: -1}
	if err := v.Validate(); !errors.Is(err, ErrMaterialID) {
		t.Fatalf("negative material: err = %v", err)
	}
	v.MaterialID = 0
	v.Vertices = make([]mgl32.Vec3, 3)
	if err := v.Validate(); !errors.Is(err, ErrInsideGeometry) {
		t.Fatalf("missing normals: err = %v", err)
	}
}
