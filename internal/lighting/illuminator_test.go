package lighting

import (
	"errors"
	"testing"

	"voxelkit/internal/registry"
	"voxelkit/internal/world"
)

const (
	solidCh = 0
	lightCh = 1

	idStone = 1
)

func newTestLibrary() *registry.Library {
	lib := registry.NewLibrary(1)
	lib.CreateVoxel(idStone, "stone").SetCubeGeometry(1)
	return lib
}

// newLoadedStore loads every block in [-r, r] on each axis.
func newLoadedStore(r int) *world.BlockStore {
	store := world.NewBlockStore()
	for z := -r; z <= r; z++ {
		for x := -r; x <= r; x++ {
			for y := -r; y <= r; y++ {
				bpos := world.V3(x, y, z)
				b, _ := world.NewBlock(bpos, nil)
				store.SetBlock(bpos, b)
			}
		}
	}
	return store
}

func lightAt(store *world.BlockStore, pos world.Vec3i) Light {
	return Light(store.GetVoxel(pos, lightCh))
}

func TestLightDiminishIncrease(t *testing.T) {
	cases := []struct {
		in, dim, inc Light
	}{
		{0, 0, 0},
		{1, 0, 2},
		{7, 6, 8},
		{13, 12, 14},
		{LightMax, LightMax - 1, LightMax},
	}
	for _, c := range cases {
		if got := c.in.Diminish(); got != c.dim {
			t.Errorf("%d.Diminish() = %d, want %d", c.in, got, c.dim)
		}
		if got := c.in.Increase(); got != c.inc {
			t.Errorf("%d.Increase() = %d, want %d", c.in, got, c.inc)
		}
	}
}

func TestIsolatedSourceFollowsManhattanDistance(t *testing.T) {
	store := newLoadedStore(1)
	il := NewIlluminator(newTestLibrary(), store)
	src := world.V3(3, 5, 7)

	modified, err := il.AddLightSource(solidCh, lightCh, src, LightMax, 0)
	if err != nil {
		t.Fatalf("AddLightSource: %v", err)
	}
	if !modified.Has(world.V3(0, 0, 0)) {
		t.Errorf("source block missing from modified set %v", modified.Sorted())
	}

	for z := -16; z < 32; z++ {
		for x := -16; x < 32; x++ {
			for y := -16; y < 32; y++ {
				pos := world.V3(x, y, z)
				want := int(LightMax) - pos.ManhattanTo(src)
				if want < 0 {
					want = 0
				}
				if got := lightAt(store, pos); int(got) != want {
					t.Fatalf("light at %v = %d, want %d", pos, got, want)
				}
			}
		}
	}
}

func TestOpaqueVoxelsBlockLight(t *testing.T) {
	store := newLoadedStore(1)
	// A wall at x=2 from y,z in [-8,8].
	for z := -8; z <= 8; z++ {
		for y := -8; y <= 8; y++ {
			store.SetVoxel(idStone, world.V3(2, y, z), solidCh)
		}
	}
	il := NewIlluminator(newTestLibrary(), store)
	if _, err := il.AddLightSource(solidCh, lightCh, world.V3(0, 0, 0), 6, 0); err != nil {
		t.Fatalf("AddLightSource: %v", err)
	}

	if got := lightAt(store, world.V3(1, 0, 0)); got != 5 {
		t.Errorf("in front of wall: %d, want 5", got)
	}
	if got := lightAt(store, world.V3(2, 0, 0)); got != 0 {
		t.Errorf("inside wall: %d, want 0", got)
	}
	if got := lightAt(store, world.V3(3, 0, 0)); got != 0 {
		t.Errorf("behind wall: %d, want 0", got)
	}
}

func TestUnloadedBlocksAreSkipped(t *testing.T) {
	store := newLoadedStore(0)
	il := NewIlluminator(newTestLibrary(), store)
	modified, err := il.AddLightSource(solidCh, lightCh, world.V3(0, 0, 0), LightMax, 0)
	if err != nil {
		t.Fatalf("AddLightSource: %v", err)
	}
	if store.BlockCount() != 1 {
		t.Fatalf("spread created blocks: %d loaded", store.BlockCount())
	}
	if len(modified) != 1 {
		t.Fatalf("modified = %v, want only the origin block", modified.Sorted())
	}
	if got := lightAt(store, world.V3(-1, 0, 0)); got != 0 {
		t.Fatalf("light leaked into unloaded block: %d", got)
	}
}

func TestRemovingOneOfTwoSources(t *testing.T) {
	a := world.V3(0, 0, 0)
	b := world.V3(5, 1, 0)
	const level Light = 8

	store := newLoadedStore(1)
	il := NewIlluminator(newTestLibrary(), store)
	for _, src := range []world.Vec3i{a, b} {
		if _, err := il.AddLightSource(solidCh, lightCh, src, level, 0); err != nil {
			t.Fatalf("AddLightSource %v: %v", src, err)
		}
	}
	if got := lightAt(store, world.V3(4, 1, 0)); got != level-1 {
		t.Fatalf("next to b before removal: %d, want %d", got, level-1)
	}

	modified, err := il.RemoveLightSource(solidCh, lightCh, b, 0)
	if err != nil {
		t.Fatalf("RemoveLightSource: %v", err)
	}
	if !modified.Has(world.V3(0, 0, 0)) {
		t.Errorf("modified set %v misses the origin block", modified.Sorted())
	}

	ref := newLoadedStore(1)
	if _, err := NewIlluminator(newTestLibrary(), ref).AddLightSource(solidCh, lightCh, a, level, 0); err != nil {
		t.Fatalf("reference spread: %v", err)
	}

	for z := -12; z <= 12; z++ {
		for x := -12; x <= 16; x++ {
			for y := -12; y <= 12; y++ {
				pos := world.V3(x, y, z)
				if got, want := lightAt(store, pos), lightAt(ref, pos); got != want {
					t.Fatalf("light at %v = %d, single-source field has %d", pos, got, want)
				}
			}
		}
	}
}

func TestRoundLimitReported(t *testing.T) {
	store := newLoadedStore(1)
	il := NewIlluminator(newTestLibrary(), store)

	modified, err := il.AddLightSource(solidCh, lightCh, world.V3(0, 0, 0), LightMax, 3)
	if !errors.Is(err, ErrRoundLimit) {
		t.Fatalf("err = %v, want ErrRoundLimit", err)
	}
	if len(modified) == 0 {
		t.Fatalf("partial modified set is empty")
	}
	if got := lightAt(store, world.V3(3, 0, 0)); got != LightMax-3 {
		t.Errorf("light three hops out = %d, want %d", got, LightMax-3)
	}
	if got := lightAt(store, world.V3(4, 0, 0)); got != 0 {
		t.Errorf("light four hops out = %d, want 0 after 3 rounds", got)
	}
}

// openHoleBesideSource lights the origin behind a stone wall at x=1 spanning
// the loaded area, then clears the wall voxel next to the source. The hole is
// left dark.
func openHoleBesideSource(t *testing.T) (*world.BlockStore, *Illuminator, world.Vec3i) {
	t.Helper()
	store := newLoadedStore(1)
	for z := -16; z < 32; z++ {
		for y := -16; y < 32; y++ {
			store.SetVoxel(idStone, world.V3(1, y, z), solidCh)
		}
	}
	il := NewIlluminator(newTestLibrary(), store)
	if _, err := il.AddLightSource(solidCh, lightCh, world.V3(0, 0, 0), LightMax, 0); err != nil {
		t.Fatalf("AddLightSource: %v", err)
	}
	hole := world.V3(1, 0, 0)
	store.SetVoxel(0, hole, solidCh)
	if got := lightAt(store, hole); got != 0 {
		t.Fatalf("hole starts with light %d, want 0", got)
	}
	return store, il, hole
}

func TestSpreadFromDarkHoleFitsDefaultCap(t *testing.T) {
	store, il, hole := openHoleBesideSource(t)
	if _, err := il.SpreadAmbientLight(solidCh, lightCh, []world.Vec3i{hole}, 0); err != nil {
		t.Fatalf("SpreadAmbientLight with default cap: %v", err)
	}

	ref, refIl, _ := openHoleBesideSource(t)
	if _, err := refIl.SpreadAmbientLight(solidCh, lightCh, []world.Vec3i{hole}, 40); err != nil {
		t.Fatalf("SpreadAmbientLight with cap 40: %v", err)
	}

	if got := lightAt(store, hole); got != LightMax-1 {
		t.Errorf("hole light = %d, want %d", got, LightMax-1)
	}
	if got := lightAt(store, world.V3(13, 0, 0)); got != 1 {
		t.Errorf("light twelve hops past the hole = %d, want 1", got)
	}
	for z := -16; z < 32; z++ {
		for x := -16; x < 32; x++ {
			for y := -16; y < 32; y++ {
				pos := world.V3(x, y, z)
				if got, want := lightAt(store, pos), lightAt(ref, pos); got != want {
					t.Fatalf("light at %v = %d, want %d as with a large cap", pos, got, want)
				}
			}
		}
	}
}

func TestMarkingIsNeverOverwritten(t *testing.T) {
	store := newLoadedStore(0)
	store.SetVoxel(uint16(LightMarking), world.V3(1, 0, 0), lightCh)
	il := NewIlluminator(newTestLibrary(), store)
	if _, err := il.AddLightSource(solidCh, lightCh, world.V3(0, 0, 0), LightMax, 0); err != nil {
		t.Fatalf("AddLightSource: %v", err)
	}
	if got := lightAt(store, world.V3(1, 0, 0)); got != LightMarking {
		t.Fatalf("marking overwritten with %d", got)
	}
}

func TestNotConfigured(t *testing.T) {
	il := NewIlluminator(nil, world.NewBlockStore())
	if _, err := il.SpreadAmbientLight(solidCh, lightCh, []world.Vec3i{{}}, 0); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	il = NewIlluminator(newTestLibrary(), world.NewBlockStore())
	if _, err := il.AddLightSource(solidCh, lightCh, world.V3(0, 0, 0), 4, 0); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("err = %v, want ErrNotLoaded", err)
	}
}

func BenchmarkSpreadFullSource(b *testing.B) {
	lib := newTestLibrary()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		store := newLoadedStore(1)
		il := NewIlluminator(lib, store)
		b.StartTimer()
		if _, err := il.AddLightSource(solidCh, lightCh, world.V3(8, 8, 8), LightMax, 0); err != nil {
			b.Fatal(err)
		}
	}
}
