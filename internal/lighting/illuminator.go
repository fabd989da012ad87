package lighting

import (
	"errors"
	"fmt"

	"voxelkit/internal/profiling"
	"voxelkit/internal/registry"
	"voxelkit/internal/world"
)

var (
	ErrNotConfigured = errors.New("lighting: library or block store not set")
	ErrRoundLimit    = errors.New("lighting: propagation round limit reached")
	ErrNotLoaded     = errors.New("lighting: block not loaded")
)

// Axis neighbors visited by every propagation step.
var dirs = [6]world.Vec3i{
	{X: 0, Y: 0, Z: 1},
	{X: 0, Y: 1, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 0, Z: -1},
	{X: 0, Y: -1, Z: 0},
	{X: -1, Y: 0, Z: 0},
}

// Illuminator spreads and retracts ambient light stored in a channel of a
// block store. Voxel ids in the solid channel decide where light may pass.
//
// It works directly on the store and shares its single-writer rule.
type Illuminator struct {
	library *registry.Library
	store   *world.BlockStore
}

func NewIlluminator(lib *registry.Library, store *world.BlockStore) *Illuminator {
	return &Illuminator{library: lib, store: store}
}

func (il *Illuminator) SetLibrary(lib *registry.Library) { il.library = lib }
func (il *Illuminator) SetStore(store *world.BlockStore) { il.store = store }

// pass carries the modified-block bookkeeping of one public call.
type pass struct {
	il       *Illuminator
	solidCh  int
	lightCh  int
	modified BlockSet
	flagged  *world.Block
}

func (il *Illuminator) newPass(solidCh, lightCh int) (*pass, error) {
	if il.library == nil || il.store == nil {
		return nil, ErrNotConfigured
	}
	checkChannel(solidCh)
	checkChannel(lightCh)
	return &pass{il: il, solidCh: solidCh, lightCh: lightCh, modified: make(BlockSet)}, nil
}

func checkChannel(ch int) {
	if ch < 0 || ch >= world.MaxChannels {
		panic(fmt.Sprintf("lighting: channel %d out of range [0,%d)", ch, world.MaxChannels))
	}
}

// cell resolves a world position to its loaded block and local position.
func (p *pass) cell(pos world.Vec3i) (*world.Block, world.Vec3i) {
	block := p.il.store.GetBlock(world.VoxelToBlock(pos))
	if block == nil {
		return nil, world.Vec3i{}
	}
	return block, world.VoxelToLocal(pos)
}

func (p *pass) light(block *world.Block, local world.Vec3i) Light {
	return lightFromVoxel(block.Voxels.GetVoxelV(local, p.lightCh))
}

func (p *pass) transparent(block *world.Block, local world.Vec3i) bool {
	return p.il.library.IsTransparent(int(block.Voxels.GetVoxelV(local, p.solidCh)))
}

func (p *pass) setLight(block *world.Block, local world.Vec3i, l Light) {
	block.Voxels.SetVoxelV(uint16(l), local, p.lightCh)
	// Consecutive writes mostly land in the same block.
	if block != p.flagged {
		p.modified.Add(block.Pos)
		p.flagged = block
	}
}

// frontier is an ordered set of positions for one propagation round.
type frontier struct {
	list []world.Vec3i
	seen map[world.Vec3i]struct{}
}

func newFrontier() *frontier {
	return &frontier{seen: make(map[world.Vec3i]struct{})}
}

func (f *frontier) add(pos world.Vec3i) {
	if _, ok := f.seen[pos]; ok {
		return
	}
	f.seen[pos] = struct{}{}
	f.list = append(f.list, pos)
}

func roundCap(rounds int) int {
	if rounds <= 0 {
		return int(LightMax)
	}
	return rounds
}

// SpreadAmbientLight propagates light outward from the given positions until
// nothing changes or the round cap is exhausted. rounds <= 0 means LightMax,
// which is enough for any field seeded with legal light levels. On
// ErrRoundLimit the returned set still lists every block written so far.
func (il *Illuminator) SpreadAmbientLight(solidCh, lightCh int, from []world.Vec3i, rounds int) (BlockSet, error) {
	defer profiling.Track("lighting.Spread")()
	p, err := il.newPass(solidCh, lightCh)
	if err != nil {
		return nil, err
	}
	if err := p.spread(from, roundCap(rounds)); err != nil {
		return p.modified, err
	}
	return p.modified, nil
}

// spread counts only rounds that write a voxel against the cap. Rounds that
// only forward to brighter neighbors climb in level and end on their own.
func (p *pass) spread(from []world.Vec3i, rounds int) error {
	current := from
	for counted := 0; len(current) > 0; {
		if counted == rounds {
			return fmt.Errorf("spread stopped with %d voxels pending after %d rounds: %w", len(current), rounds, ErrRoundLimit)
		}
		wrote := false
		next := newFrontier()
		for _, pos := range current {
			block, local := p.cell(pos)
			if block == nil {
				continue
			}
			value := p.light(block, local)
			if value == LightMarking {
				continue
			}
			dim := value.Diminish()
			brighter := value.Increase()

			for _, d := range dirs {
				npos := pos.Add(d)
				nblock, nlocal := p.cell(npos)
				if nblock == nil {
					continue
				}
				neighbor := p.light(nblock, nlocal)
				if neighbor == LightMarking {
					continue
				}
				if neighbor > brighter {
					// Lit by something else; let it spread on its own.
					next.add(npos)
				} else if neighbor < dim && p.transparent(nblock, nlocal) {
					p.setLight(nblock, nlocal, dim)
					next.add(npos)
					wrote = true
				}
			}
		}
		if wrote {
			counted++
		}
		current = next.list
	}
	return nil
}

// RemoveAmbientLight retracts the light that the given positions emitted at
// the given levels. The positions themselves are set to zero. Neighbors lit
// only through them are cleared wave by wave; neighbors at least as bright as
// the light being retracted are kept as reseed points, and a final spread from
// them refills the cleared region with the surviving light.
func (il *Illuminator) RemoveAmbientLight(solidCh, lightCh int, removed map[world.Vec3i]Light, rounds int) (BlockSet, error) {
	defer profiling.Track("lighting.Remove")()
	p, err := il.newPass(solidCh, lightCh)
	if err != nil {
		return nil, err
	}

	type retraction struct {
		pos   world.Vec3i
		value Light
	}
	wave := make([]retraction, 0, len(removed))
	for _, pos := range sortedKeys(removed) {
		block, local := p.cell(pos)
		if block == nil {
			continue
		}
		if p.light(block, local) != 0 {
			p.setLight(block, local, 0)
		}
		wave = append(wave, retraction{pos: pos, value: removed[pos]})
	}

	reseed := newFrontier()
	limit := roundCap(rounds)
	for round := 0; len(wave) > 0; round++ {
		if round == limit {
			return p.modified, fmt.Errorf("retraction stopped with %d voxels pending after %d rounds: %w", len(wave), limit, ErrRoundLimit)
		}
		var next []retraction
		for _, r := range wave {
			for _, d := range dirs {
				npos := r.pos.Add(d)
				nblock, nlocal := p.cell(npos)
				if nblock == nil {
					continue
				}
				neighbor := p.light(nblock, nlocal)
				if neighbor == 0 || neighbor == LightMarking {
					continue
				}
				if neighbor < r.value {
					if !p.transparent(nblock, nlocal) {
						continue
					}
					p.setLight(nblock, nlocal, 0)
					next = append(next, retraction{pos: npos, value: neighbor})
				} else {
					reseed.add(npos)
				}
			}
		}
		wave = next
	}

	// Reseed points cleared by a later wave have nothing left to give.
	points := reseed.list[:0]
	for _, pos := range reseed.list {
		if block, local := p.cell(pos); block != nil && p.light(block, local) != 0 {
			points = append(points, pos)
		}
	}
	if err := p.spread(points, limit); err != nil {
		return p.modified, err
	}
	return p.modified, nil
}

// AddLightSource sets a voxel to the given level and spreads from it.
func (il *Illuminator) AddLightSource(solidCh, lightCh int, pos world.Vec3i, value Light, rounds int) (BlockSet, error) {
	if il.store == nil {
		return nil, ErrNotConfigured
	}
	block := il.store.GetBlock(world.VoxelToBlock(pos))
	if block == nil {
		return nil, fmt.Errorf("light source at %v: %w", pos, ErrNotLoaded)
	}
	if value > LightMax {
		value = LightMax
	}
	checkChannel(lightCh)
	block.Voxels.SetVoxelV(uint16(value), world.VoxelToLocal(pos), lightCh)

	modified, err := il.SpreadAmbientLight(solidCh, lightCh, []world.Vec3i{pos}, rounds)
	if modified != nil {
		modified.Add(block.Pos)
	}
	return modified, err
}

// RemoveLightSource retracts whatever level is currently stored at pos.
func (il *Illuminator) RemoveLightSource(solidCh, lightCh int, pos world.Vec3i, rounds int) (BlockSet, error) {
	if il.store == nil {
		return nil, ErrNotConfigured
	}
	checkChannel(lightCh)
	value := lightFromVoxel(il.store.GetVoxel(pos, lightCh))
	if value == 0 || value == LightMarking {
		return make(BlockSet), nil
	}
	return il.RemoveAmbientLight(solidCh, lightCh, map[world.Vec3i]Light{pos: value}, rounds)
}

func sortedKeys(m map[world.Vec3i]Light) []world.Vec3i {
	set := make(BlockSet, len(m))
	for k := range m {
		set.Add(k)
	}
	return set.Sorted()
}
