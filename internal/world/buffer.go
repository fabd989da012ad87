package world

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// MaxChannels is the number of independent scalar planes a Buffer can hold.
const MaxChannels = 8

// channel holds one plane of voxel data.
// data is nil while the channel is uniform, in which case every cell reads defval.
type channel struct {
	data   []uint16
	defval uint16
}

// Buffer is dense voxel storage organized in optional 16-bit channels.
// Cells are stored in [z][x][y] order so vertical scans stay contiguous.
type Buffer struct {
	channels [MaxChannels]channel
	defaults [MaxChannels]uint16
	size     Vec3i
}

// NewBuffer creates a buffer of the given size with every channel uniform zero.
func NewBuffer(sx, sy, sz int) *Buffer {
	b := &Buffer{}
	b.Create(sx, sy, sz)
	return b
}

// Create (re)allocates the buffer. Previous channel data is discarded and
// every channel goes back to its configured default value.
func (b *Buffer) Create(sx, sy, sz int) {
	if sx < 0 || sy < 0 || sz < 0 {
		panic(fmt.Sprintf("voxel buffer: invalid size (%d,%d,%d)", sx, sy, sz))
	}
	b.size = Vec3i{sx, sy, sz}
	b.Clear()
}

// Clear drops all channel data and restores the default values.
func (b *Buffer) Clear() {
	for i := range b.channels {
		b.channels[i] = channel{defval: b.defaults[i]}
	}
}

// ClearChannel makes a channel uniform with the given value.
func (b *Buffer) ClearChannel(ch int, value uint16) {
	b.checkChannel(ch)
	b.channels[ch] = channel{defval: value}
}

// SetDefaultValues configures the values channels take on Create or Clear.
func (b *Buffer) SetDefaultValues(values [MaxChannels]uint16) {
	b.defaults = values
}

func (b *Buffer) Size() Vec3i { return b.size }

func (b *Buffer) Volume() int { return b.size.X * b.size.Y * b.size.Z }

// IsAllocated reports whether a channel currently owns dense storage.
func (b *Buffer) IsAllocated(ch int) bool {
	b.checkChannel(ch)
	return b.channels[ch].data != nil
}

// Default returns the uniform value of a channel. For dense channels this is
// the value the array was materialized from.
func (b *Buffer) Default(ch int) uint16 {
	b.checkChannel(ch)
	return b.channels[ch].defval
}

// ValidatePos reports whether a coordinate lies inside the buffer.
func (b *Buffer) ValidatePos(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 &&
		x < b.size.X && y < b.size.Y && z < b.size.Z
}

// index folds a position into the flat array offset, keeping y contiguous.
func (b *Buffer) index(x, y, z int) int {
	return (z*b.size.X+x)*b.size.Y + y
}

func (b *Buffer) GetVoxel(x, y, z, ch int) uint16 {
	b.checkChannel(ch)
	b.checkPos(x, y, z)
	c := &b.channels[ch]
	if c.data == nil {
		return c.defval
	}
	return c.data[b.index(x, y, z)]
}

func (b *Buffer) GetVoxelV(pos Vec3i, ch int) uint16 {
	return b.GetVoxel(pos.X, pos.Y, pos.Z, ch)
}

// SetVoxel writes one cell. Writing a uniform channel's own value keeps it uniform.
func (b *Buffer) SetVoxel(value uint16, x, y, z, ch int) {
	b.checkChannel(ch)
	b.checkPos(x, y, z)
	c := &b.channels[ch]
	if c.data == nil {
		if c.defval == value {
			return
		}
		b.allocate(ch)
	}
	c.data[b.index(x, y, z)] = value
}

func (b *Buffer) SetVoxelV(value uint16, pos Vec3i, ch int) {
	b.SetVoxel(value, pos.X, pos.Y, pos.Z, ch)
}

// Fill sets every cell of a channel to value, releasing its storage.
func (b *Buffer) Fill(value uint16, ch int) {
	b.checkChannel(ch)
	b.channels[ch] = channel{defval: value}
}

// FillArea sets every cell in [min, max) to value. The box is sorted and
// clamped to the buffer, so out-of-range parts are ignored.
func (b *Buffer) FillArea(value uint16, min, max Vec3i, ch int) {
	b.checkChannel(ch)
	min, max = SortMinMax(min, max)
	min = clampVec(min, Vec3i{}, b.size)
	max = clampVec(max, Vec3i{}, b.size)
	if min.X >= max.X || min.Y >= max.Y || min.Z >= max.Z {
		return
	}
	if min == (Vec3i{}) && max == b.size {
		b.Fill(value, ch)
		return
	}

	c := &b.channels[ch]
	if c.data == nil {
		if c.defval == value {
			return
		}
		b.allocate(ch)
	}
	for z := min.Z; z < max.Z; z++ {
		for x := min.X; x < max.X; x++ {
			row := b.index(x, min.Y, z)
			fillRow(c.data[row:row+max.Y-min.Y], value)
		}
	}
}

// IsUniform reports whether every cell of the channel holds the same value.
func (b *Buffer) IsUniform(ch int) bool {
	b.checkChannel(ch)
	c := &b.channels[ch]
	if c.data == nil {
		return true
	}
	v := c.data[0]
	for _, d := range c.data[1:] {
		if d != v {
			return false
		}
	}
	return true
}

// Optimize releases every dense channel that turned out homogeneous.
// Observable values never change; only the storage representation does.
func (b *Buffer) Optimize() {
	for i := range b.channels {
		c := &b.channels[i]
		if c.data != nil && b.IsUniform(i) {
			v := c.defval
			if len(c.data) > 0 {
				v = c.data[0]
			}
			*c = channel{defval: v}
		}
	}
}

// CopyFrom copies a whole channel from a buffer of the same size.
func (b *Buffer) CopyFrom(other *Buffer, ch int) {
	b.checkChannel(ch)
	if other.size != b.size {
		panic(fmt.Sprintf("voxel buffer: copy between sizes %v and %v", other.size, b.size))
	}
	src := &other.channels[ch]
	dst := &b.channels[ch]
	if src.data == nil {
		*dst = channel{defval: src.defval}
		return
	}
	if dst.data == nil {
		dst.data = make([]uint16, len(src.data))
	}
	copy(dst.data, src.data)
	dst.defval = src.defval
}

// CopyAreaFrom copies the cells [srcMin, srcMax) of other into this buffer so
// that srcMin lands on dstMin. The region is clamped against both buffers,
// so partial overlaps copy what they can and never fail.
func (b *Buffer) CopyAreaFrom(other *Buffer, srcMin, srcMax, dstMin Vec3i, ch int) {
	b.checkChannel(ch)
	srcMin, srcMax = SortMinMax(srcMin, srcMax)

	s0 := [3]int{srcMin.X, srcMin.Y, srcMin.Z}
	s1 := [3]int{srcMax.X, srcMax.Y, srcMax.Z}
	d0 := [3]int{dstMin.X, dstMin.Y, dstMin.Z}
	srcSize := [3]int{other.size.X, other.size.Y, other.size.Z}
	dstSize := [3]int{b.size.X, b.size.Y, b.size.Z}

	for a := 0; a < 3; a++ {
		if s0[a] < 0 {
			d0[a] -= s0[a]
			s0[a] = 0
		}
		if s1[a] > srcSize[a] {
			s1[a] = srcSize[a]
		}
		if d0[a] < 0 {
			s0[a] -= d0[a]
			d0[a] = 0
		}
		if d0[a]+(s1[a]-s0[a]) > dstSize[a] {
			s1[a] = s0[a] + dstSize[a] - d0[a]
		}
		if s1[a] <= s0[a] {
			return
		}
	}

	src := &other.channels[ch]
	if src.data == nil {
		dmin := Vec3i{d0[0], d0[1], d0[2]}
		dmax := dmin.Add(Vec3i{s1[0] - s0[0], s1[1] - s0[1], s1[2] - s0[2]})
		b.FillArea(src.defval, dmin, dmax, ch)
		return
	}

	dst := &b.channels[ch]
	if dst.data == nil {
		b.allocate(ch)
	}
	rowLen := s1[1] - s0[1]
	for z := s0[2]; z < s1[2]; z++ {
		for x := s0[0]; x < s1[0]; x++ {
			si := other.index(x, s0[1], z)
			di := b.index(x-s0[0]+d0[0], d0[1], z-s0[2]+d0[2])
			copy(dst.data[di:di+rowLen], src.data[si:si+rowLen])
		}
	}
}

// Hash digests the buffer contents. The digest depends on the storage
// representation, so callers comparing snapshots should Optimize first.
func (b *Buffer) Hash() uint64 {
	h := xxhash.New()
	var tmp [8]byte
	binary.LittleEndian.PutUint16(tmp[0:], uint16(b.size.X))
	binary.LittleEndian.PutUint16(tmp[2:], uint16(b.size.Y))
	binary.LittleEndian.PutUint16(tmp[4:], uint16(b.size.Z))
	h.Write(tmp[:6])
	for i := range b.channels {
		c := &b.channels[i]
		if c.data == nil {
			tmp[0] = 0
			binary.LittleEndian.PutUint16(tmp[1:], c.defval)
			h.Write(tmp[:3])
			continue
		}
		tmp[0] = 1
		h.Write(tmp[:1])
		row := make([]byte, 2*len(c.data))
		for j, v := range c.data {
			binary.LittleEndian.PutUint16(row[2*j:], v)
		}
		h.Write(row)
	}
	return h.Sum64()
}

// allocate materializes a channel's dense array filled with its current default.
func (b *Buffer) allocate(ch int) {
	c := &b.channels[ch]
	c.data = make([]uint16, b.Volume())
	if c.defval != 0 {
		fillRow(c.data, c.defval)
	}
}

func (b *Buffer) checkChannel(ch int) {
	if ch < 0 || ch >= MaxChannels {
		panic(fmt.Sprintf("voxel buffer: channel %d out of range [0,%d)", ch, MaxChannels))
	}
}

func (b *Buffer) checkPos(x, y, z int) {
	if !b.ValidatePos(x, y, z) {
		panic(fmt.Sprintf("voxel buffer: position (%d,%d,%d) outside size %v", x, y, z, b.size))
	}
}

func fillRow(row []uint16, v uint16) {
	for i := range row {
		row[i] = v
	}
}

func clampVec(v, lo, hi Vec3i) Vec3i {
	return Vec3i{clampInt(v.X, lo.X, hi.X), clampInt(v.Y, lo.Y, hi.Y), clampInt(v.Z, lo.Z, hi.Z)}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
