package provider

import (
	"voxelkit/internal/profiling"
	"voxelkit/internal/world"
)

// Provider fills the buffer of a block that is about to enter the store.
// Implementations write voxel ids into channel ch and leave other channels alone.
type Provider interface {
	EmergeBlock(out *world.Buffer, blockPos world.Vec3i, ch int)
}

// HeightProvider is implemented by providers that can report terrain height
// without generating a block.
type HeightProvider interface {
	Provider
	HeightAt(x, z int) int
}

// LoadArea emerges every missing block in [minBlock, maxBlock) and installs it
// in the store. Returns number of blocks generated.
func LoadArea(store *world.BlockStore, p Provider, minBlock, maxBlock world.Vec3i, ch int) int {
	defer profiling.Track("provider.LoadArea")()
	minBlock, maxBlock = world.SortMinMax(minBlock, maxBlock)
	loaded := 0
	var bpos world.Vec3i
	for bpos.Z = minBlock.Z; bpos.Z < maxBlock.Z; bpos.Z++ {
		for bpos.X = minBlock.X; bpos.X < maxBlock.X; bpos.X++ {
			for bpos.Y = minBlock.Y; bpos.Y < maxBlock.Y; bpos.Y++ {
				if store.HasBlock(bpos) {
					continue
				}
				buf := store.NewBlockBuffer()
				p.EmergeBlock(buf, bpos, ch)
				buf.Optimize()
				block, err := world.NewBlock(bpos, buf)
				if err != nil {
					// NewBlockBuffer always has block size.
					panic(err)
				}
				store.SetBlock(bpos, block)
				loaded++
			}
		}
	}
	return loaded
}

// LoadAround loads the blocks within radius of a center block, clamped
// vertically to the columns a HeightProvider says are non-empty.
func LoadAround(store *world.BlockStore, p Provider, center world.Vec3i, radius int, ch int) int {
	hp, ok := p.(HeightProvider)
	if !ok {
		r := world.V3(radius, radius, radius)
		return LoadArea(store, p, center.Sub(r), center.Add(r).Add(world.V3(1, 1, 1)), ch)
	}

	defer profiling.Track("provider.LoadAround")()
	loaded := 0
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			bx, bz := center.X+dx, center.Z+dz
			mid := world.BlockToVoxel(world.V3(bx, 0, bz)).Add(world.V3(world.BlockSize/2, 0, world.BlockSize/2))
			top := world.VoxelToBlock(world.V3(0, hp.HeightAt(mid.X, mid.Z), 0)).Y
			minY := center.Y - radius
			maxY := min(center.Y+radius, top+1)
			if maxY < minY {
				continue
			}
			loaded += LoadArea(store, p, world.V3(bx, minY, bz), world.V3(bx+1, maxY+1, bz+1), ch)
		}
	}
	return loaded
}
