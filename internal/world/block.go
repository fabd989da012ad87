package world

import (
	"errors"
	"fmt"
)

// ErrBlockSize is returned when a buffer handed to a block is not BlockSize^3.
var ErrBlockSize = errors.New("world: buffer size does not match block size")

// Block is one cubic chunk of the world. It owns exactly one buffer.
type Block struct {
	Pos    Vec3i
	Voxels *Buffer

	// Node is an opaque handle to whatever the host renders this block with.
	// The store keeps it alongside the block and never looks inside.
	Node any
}

// NewBlock creates a block at the given block coordinate. When buf is nil a
// fresh buffer is allocated.
func NewBlock(pos Vec3i, buf *Buffer) (*Block, error) {
	if buf == nil {
		buf = NewBuffer(BlockSize, BlockSize, BlockSize)
	} else if buf.Size() != (Vec3i{BlockSize, BlockSize, BlockSize}) {
		return nil, fmt.Errorf("block %v: got %v: %w", pos, buf.Size(), ErrBlockSize)
	}
	return &Block{Pos: pos, Voxels: buf}, nil
}

// Origin returns the world voxel position of the block's (0,0,0) cell.
func (b *Block) Origin() Vec3i {
	return BlockToVoxel(b.Pos)
}
