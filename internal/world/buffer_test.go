package world

import "testing"

func TestBufferSetGet(t *testing.T) {
	b := NewBuffer(4, 5, 6)
	if b.IsAllocated(0) {
		t.Fatal("fresh channel should be uniform")
	}
	b.SetVoxel(0, 1, 2, 3, 0)
	if b.IsAllocated(0) {
		t.Fatal("writing the uniform value should not allocate")
	}

	b.SetVoxel(42, 3, 4, 5, 2)
	if got := b.GetVoxel(3, 4, 5, 2); got != 42 {
		t.Fatalf("GetVoxel = %d, want 42", got)
	}
	if got := b.GetVoxel(3, 4, 4, 2); got != 0 {
		t.Fatalf("neighbor changed to %d", got)
	}
	if !b.IsAllocated(2) || b.IsAllocated(1) {
		t.Fatal("only the written channel should be dense")
	}
}

func TestBufferIndexKeepsYContiguous(t *testing.T) {
	b := NewBuffer(3, 4, 5)
	if b.index(0, 1, 0)-b.index(0, 0, 0) != 1 {
		t.Fatal("y should be the fastest axis")
	}
	if b.index(1, 0, 0)-b.index(0, 0, 0) != 4 {
		t.Fatal("x stride should be size y")
	}
	if b.index(0, 0, 1)-b.index(0, 0, 0) != 12 {
		t.Fatal("z stride should be size x * size y")
	}
}

func TestBufferPanicsOutOfRange(t *testing.T) {
	b := NewBuffer(2, 2, 2)
	for name, fn := range map[string]func(){
		"channel":  func() { b.GetVoxel(0, 0, 0, MaxChannels) },
		"negative": func() { b.SetVoxel(1, -1, 0, 0, 0) },
		"past end": func() { b.GetVoxel(0, 2, 0, 0) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			fn()
		})
	}
}

func TestBufferDefaults(t *testing.T) {
	b := &Buffer{}
	var defaults [MaxChannels]uint16
	defaults[1] = 7
	b.SetDefaultValues(defaults)
	b.Create(2, 2, 2)
	if got := b.GetVoxel(1, 1, 1, 1); got != 7 {
		t.Fatalf("default = %d, want 7", got)
	}

	b.SetVoxel(3, 0, 0, 0, 1)
	if got := b.GetVoxel(1, 0, 0, 1); got != 7 {
		t.Fatalf("allocation lost default: %d", got)
	}
	b.Clear()
	if b.IsAllocated(1) || b.GetVoxel(0, 0, 0, 1) != 7 {
		t.Fatal("Clear should restore the default")
	}
}

func TestBufferOptimizeIsTransparent(t *testing.T) {
	b := NewBuffer(3, 3, 3)
	for z := 0; z < 3; z++ {
		for x := 0; x < 3; x++ {
			for y := 0; y < 3; y++ {
				b.SetVoxel(5, x, y, z, 0)
			}
		}
	}
	if !b.IsAllocated(0) {
		t.Fatal("cell writes should have allocated channel 0")
	}
	b.SetVoxel(5, 0, 0, 0, 1)
	b.SetVoxel(9, 1, 1, 1, 2)

	before := snapshot(b)
	b.Optimize()
	after := snapshot(b)

	if before != after {
		t.Fatal("Optimize changed observable values")
	}
	if b.IsAllocated(0) {
		t.Fatal("uniform channel 0 should be released")
	}
	if !b.IsAllocated(1) || !b.IsAllocated(2) {
		t.Fatal("mixed channels must stay dense")
	}
	if b.GetVoxel(2, 2, 2, 0) != 5 {
		t.Fatal("released channel lost its value")
	}
}

func snapshot(b *Buffer) [MaxChannels][27]uint16 {
	var out [MaxChannels][27]uint16
	for ch := 0; ch < MaxChannels; ch++ {
		i := 0
		for z := 0; z < 3; z++ {
			for x := 0; x < 3; x++ {
				for y := 0; y < 3; y++ {
					out[ch][i] = b.GetVoxel(x, y, z, ch)
					i++
				}
			}
		}
	}
	return out
}

func TestBufferIsUniform(t *testing.T) {
	b := NewBuffer(2, 2, 2)
	if !b.IsUniform(0) {
		t.Fatal("fresh channel is uniform")
	}
	b.SetVoxel(1, 0, 0, 0, 0)
	if b.IsUniform(0) {
		t.Fatal("one differing cell")
	}
	b.Fill(1, 0)
	if !b.IsUniform(0) || b.IsAllocated(0) {
		t.Fatal("Fill should leave a uniform channel")
	}
}

func TestBufferFillAreaClamps(t *testing.T) {
	b := NewBuffer(4, 4, 4)
	b.FillArea(3, V3(2, 2, 2), V3(-5, 9, 1), 0)

	count := 0
	for z := 0; z < 4; z++ {
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				if b.GetVoxel(x, y, z, 0) == 3 {
					count++
				}
			}
		}
	}
	// x in [0,2), y in [2,4), z in [1,2)
	if count != 4 {
		t.Fatalf("filled %d cells, want 4", count)
	}
}

func TestBufferCopyAreaFromClamped(t *testing.T) {
	src := NewBuffer(4, 4, 4)
	for z := 0; z < 4; z++ {
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				src.SetVoxel(uint16(1+x+4*y+16*z), x, y, z, 0)
			}
		}
	}

	dst := NewBuffer(3, 3, 3)
	// Source box overhangs src; destination start overhangs dst.
	dst.CopyAreaFrom(src, V3(2, 2, 2), V3(6, 6, 6), V3(1, 1, 1), 0)

	if got, want := dst.GetVoxel(1, 1, 1, 0), src.GetVoxel(2, 2, 2, 0); got != want {
		t.Fatalf("dst(1,1,1) = %d, want %d", got, want)
	}
	if got, want := dst.GetVoxel(2, 2, 2, 0), src.GetVoxel(3, 3, 3, 0); got != want {
		t.Fatalf("dst(2,2,2) = %d, want %d", got, want)
	}
	if got := dst.GetVoxel(0, 0, 0, 0); got != 0 {
		t.Fatalf("cell outside the copy changed to %d", got)
	}

	// Entirely outside: no-op.
	dst.CopyAreaFrom(src, V3(10, 10, 10), V3(12, 12, 12), V3(0, 0, 0), 0)
	if dst.GetVoxel(0, 0, 0, 0) != 0 {
		t.Fatal("disjoint copy wrote data")
	}
}

func TestBufferCopyAreaFromUniformSource(t *testing.T) {
	src := NewBuffer(2, 2, 2)
	src.Fill(6, 0)
	dst := NewBuffer(4, 4, 4)
	dst.CopyAreaFrom(src, V3(0, 0, 0), V3(2, 2, 2), V3(2, 2, 2), 0)
	if dst.GetVoxel(3, 3, 3, 0) != 6 || dst.GetVoxel(1, 1, 1, 0) != 0 {
		t.Fatal("uniform source should fill only the target box")
	}
}

func TestBufferHash(t *testing.T) {
	a := NewBuffer(4, 4, 4)
	b := NewBuffer(4, 4, 4)
	if a.Hash() != b.Hash() {
		t.Fatal("equal buffers hash differently")
	}
	a.SetVoxel(1, 1, 1, 1, 0)
	if a.Hash() == b.Hash() {
		t.Fatal("different contents, same hash")
	}

	a.SetVoxel(0, 1, 1, 1, 0)
	a.Optimize()
	if a.Hash() != b.Hash() {
		t.Fatal("optimized buffer should hash like a fresh one")
	}
	if NewBuffer(4, 4, 5).Hash() == b.Hash() {
		t.Fatal("size should be part of the hash")
	}
}

func BenchmarkBufferSetVoxel(b *testing.B) {
	buf := NewBuffer(BlockSize, BlockSize, BlockSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.SetVoxel(uint16(i), i%BlockSize, (i/BlockSize)%BlockSize, (i/(BlockSize*BlockSize))%BlockSize, 0)
	}
}
