package world

import (
	"errors"
	"fmt"
	"sort"

	"voxelkit/internal/profiling"
)

// ErrNeighborhoodSpan is returned when a buffer copy request does not cover
// exactly NeighborhoodBlocks blocks along every axis.
var ErrNeighborhoodSpan = errors.New("world: copy footprint does not span the block neighborhood")

// NeighborhoodBlocks is how many blocks per axis a padded block copy touches:
// the block itself plus one on each side for the one-voxel border.
const NeighborhoodBlocks = 3

// BlockStore is a sparse map of blocks keyed by block coordinate.
//
// It is not safe for concurrent use: even reads update the one-slot cache.
// Owners must serialize access, typically from a single world goroutine.
type BlockStore struct {
	blocks   map[Vec3i]*Block
	defaults [MaxChannels]uint16

	// Most recently touched block. Scans tend to hit the same block many
	// times in a row, which skips the map lookup.
	last *Block
}

// NewBlockStore creates an empty store.
func NewBlockStore() *BlockStore {
	return &BlockStore{
		blocks: make(map[Vec3i]*Block),
	}
}

// SetDefaultVoxel sets the value read from a channel wherever no block exists.
// Blocks created afterwards also start with this value.
func (s *BlockStore) SetDefaultVoxel(value uint16, ch int) {
	checkChannel(ch)
	s.defaults[ch] = value
}

func (s *BlockStore) DefaultVoxel(ch int) uint16 {
	checkChannel(ch)
	return s.defaults[ch]
}

// GetVoxel returns the value at a world position, or the channel default if
// the block is not loaded.
func (s *BlockStore) GetVoxel(pos Vec3i, ch int) uint16 {
	checkChannel(ch)
	block := s.GetBlock(VoxelToBlock(pos))
	if block == nil {
		return s.defaults[ch]
	}
	return block.Voxels.GetVoxelV(VoxelToLocal(pos), ch)
}

// SetVoxel writes a value at a world position, creating the block if needed.
func (s *BlockStore) SetVoxel(value uint16, pos Vec3i, ch int) {
	checkChannel(ch)
	bpos := VoxelToBlock(pos)
	block := s.GetBlock(bpos)
	if block == nil {
		block = s.createBlock(bpos)
	}
	block.Voxels.SetVoxelV(value, VoxelToLocal(pos), ch)
}

// GetBlock returns the block at a block coordinate, or nil.
func (s *BlockStore) GetBlock(bpos Vec3i) *Block {
	if s.last != nil && s.last.Pos == bpos {
		return s.last
	}
	if block, ok := s.blocks[bpos]; ok {
		s.last = block
		return block
	}
	return nil
}

// SetBlock installs a block, replacing any previous one at that coordinate.
func (s *BlockStore) SetBlock(bpos Vec3i, block *Block) {
	if block == nil {
		s.RemoveBlock(bpos)
		return
	}
	block.Pos = bpos
	if s.last == nil || s.last.Pos == bpos {
		s.last = block
	}
	s.blocks[bpos] = block
}

// SetBlockBuffer attaches a buffer to the block at bpos, creating the block
// if it does not exist yet.
func (s *BlockStore) SetBlockBuffer(bpos Vec3i, buf *Buffer) error {
	if buf == nil {
		return fmt.Errorf("set block buffer %v: nil buffer", bpos)
	}
	block := s.GetBlock(bpos)
	if block == nil {
		b, err := NewBlock(bpos, buf)
		if err != nil {
			return err
		}
		s.SetBlock(bpos, b)
		return nil
	}
	if buf.Size() != (Vec3i{BlockSize, BlockSize, BlockSize}) {
		return fmt.Errorf("block %v: got %v: %w", bpos, buf.Size(), ErrBlockSize)
	}
	block.Voxels = buf
	return nil
}

// HasBlock checks if a block exists without touching the cache.
func (s *BlockStore) HasBlock(bpos Vec3i) bool {
	_, ok := s.blocks[bpos]
	return ok
}

// IsBlockSurrounded reports whether all 26 neighbors of a block are loaded.
func (s *BlockStore) IsBlockSurrounded(bpos Vec3i) bool {
	for _, d := range MooreNeighbors {
		if !s.HasBlock(bpos.Add(d)) {
			return false
		}
	}
	return true
}

// SetBlockNode associates an opaque render handle with a block, creating the
// block if needed.
func (s *BlockStore) SetBlockNode(bpos Vec3i, node any) {
	block := s.GetBlock(bpos)
	if block == nil {
		block = s.createBlock(bpos)
	}
	block.Node = node
}

// BlockNode returns the render handle of a block, or nil.
func (s *BlockStore) BlockNode(bpos Vec3i) any {
	block := s.GetBlock(bpos)
	if block == nil {
		return nil
	}
	return block.Node
}

// GetBufferCopy fills dst with the voxels of one channel starting at world
// position minPos. Loaded blocks are copied and missing ones are filled with
// the channel default. The footprint must cover a full block neighborhood,
// which is what a padded meshing buffer needs.
func (s *BlockStore) GetBufferCopy(minPos Vec3i, dst *Buffer, ch int) error {
	defer profiling.Track("world.GetBufferCopy")()
	checkChannel(ch)

	maxPos := minPos.Add(dst.Size())
	minBlock := VoxelToBlock(minPos)
	maxBlock := VoxelToBlock(maxPos.Sub(Vec3i{1, 1, 1})).Add(Vec3i{1, 1, 1})
	span := maxBlock.Sub(minBlock)
	if span != (Vec3i{NeighborhoodBlocks, NeighborhoodBlocks, NeighborhoodBlocks}) {
		return fmt.Errorf("copy from %v size %v spans %v blocks: %w", minPos, dst.Size(), span, ErrNeighborhoodSpan)
	}

	var bpos Vec3i
	for bpos.Z = minBlock.Z; bpos.Z < maxBlock.Z; bpos.Z++ {
		for bpos.X = minBlock.X; bpos.X < maxBlock.X; bpos.X++ {
			for bpos.Y = minBlock.Y; bpos.Y < maxBlock.Y; bpos.Y++ {
				offset := BlockToVoxel(bpos)
				block := s.GetBlock(bpos)
				if block != nil {
					dst.CopyAreaFrom(block.Voxels, minPos.Sub(offset), maxPos.Sub(offset), Vec3i{}, ch)
				} else {
					rel := offset.Sub(minPos)
					dst.FillArea(s.defaults[ch], rel, rel.Add(Vec3i{BlockSize, BlockSize, BlockSize}), ch)
				}
			}
		}
	}
	return nil
}

// GetBufferCopyChannels runs GetBufferCopy once per channel.
func (s *BlockStore) GetBufferCopyChannels(minPos Vec3i, dst *Buffer, channels ...int) error {
	for _, ch := range channels {
		if err := s.GetBufferCopy(minPos, dst, ch); err != nil {
			return err
		}
	}
	return nil
}

// RemoveBlocksNotInArea evicts every block whose coordinate lies outside the
// box [min, max). Returns number of removed blocks.
func (s *BlockStore) RemoveBlocksNotInArea(min, max Vec3i) int {
	defer profiling.Track("world.RemoveBlocksNotInArea")()
	min, max = SortMinMax(min, max)
	removed := 0
	for bpos, block := range s.blocks {
		if bpos.ContainedIn(min, max) {
			continue
		}
		if block == s.last {
			s.last = nil
		}
		delete(s.blocks, bpos)
		removed++
	}
	return removed
}

// BlockCount returns the number of loaded blocks.
func (s *BlockStore) BlockCount() int {
	return len(s.blocks)
}

// BlockPositions returns the coordinates of all loaded blocks in a stable order.
func (s *BlockStore) BlockPositions() []Vec3i {
	keys := make([]Vec3i, 0, len(s.blocks))
	for k := range s.blocks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	return keys
}

// ForEachBlock calls fn for each loaded block in BlockPositions order.
func (s *BlockStore) ForEachBlock(fn func(*Block)) {
	for _, bpos := range s.BlockPositions() {
		fn(s.blocks[bpos])
	}
}

// NewBlockBuffer returns an empty block-sized buffer whose channels start at
// the store defaults.
func (s *BlockStore) NewBlockBuffer() *Buffer {
	buf := &Buffer{}
	buf.SetDefaultValues(s.defaults)
	buf.Create(BlockSize, BlockSize, BlockSize)
	return buf
}

func (s *BlockStore) createBlock(bpos Vec3i) *Block {
	block := &Block{Pos: bpos, Voxels: s.NewBlockBuffer()}
	s.blocks[bpos] = block
	s.last = block
	return block
}

// RemoveBlock evicts a single block. Returns false if it was not loaded.
func (s *BlockStore) RemoveBlock(bpos Vec3i) bool {
	if _, ok := s.blocks[bpos]; !ok {
		return false
	}
	if s.last != nil && s.last.Pos == bpos {
		s.last = nil
	}
	delete(s.blocks, bpos)
	return true
}

func checkChannel(ch int) {
	if ch < 0 || ch >= MaxChannels {
		panic(fmt.Sprintf("world: channel %d out of range [0,%d)", ch, MaxChannels))
	}
}
