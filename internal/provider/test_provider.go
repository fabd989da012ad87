package provider

import (
	"math"

	"voxelkit/internal/world"
)

// Mode selects the pattern a TestProvider generates.
type Mode int

const (
	ModeFlat Mode = iota
	ModeWaves
)

func (m Mode) String() string {
	switch m {
	case ModeFlat:
		return "flat"
	case ModeWaves:
		return "waves"
	default:
		return "unknown"
	}
}

// ParseMode maps "flat" or "waves" to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "flat":
		return ModeFlat, true
	case "waves":
		return ModeWaves, true
	}
	return ModeFlat, false
}

// TestProvider generates simple analytic terrain, handy for checking meshing
// and lighting without noise.
//
// Flat fills everything below PatternOffset.Y. Waves fills below a height
// field of amplitude PatternSize.Y whose periods along x and z are
// PatternSize.X and PatternSize.Z, shifted by PatternOffset.
type TestProvider struct {
	Mode          Mode
	VoxelType     uint16
	PatternSize   world.Vec3i
	PatternOffset world.Vec3i
}

func NewTestProvider() *TestProvider {
	return &TestProvider{
		Mode:        ModeFlat,
		VoxelType:   1,
		PatternSize: world.V3(10, 10, 10),
	}
}

func (p *TestProvider) EmergeBlock(out *world.Buffer, blockPos world.Vec3i, ch int) {
	switch p.Mode {
	case ModeWaves:
		p.generateWaves(out, blockPos, ch)
	default:
		p.generateFlat(out, blockPos, ch)
	}
}

// HeightAt returns the first empty world y above the pattern at column (x, z).
func (p *TestProvider) HeightAt(x, z int) int {
	if p.Mode != ModeWaves {
		return p.PatternOffset.Y
	}
	return p.wavesHeight(x, z)
}

func (p *TestProvider) generateFlat(out *world.Buffer, blockPos world.Vec3i, ch int) {
	size := out.Size()
	top := p.PatternOffset.Y - world.BlockToVoxel(blockPos).Y
	if top <= 0 {
		return
	}
	top = min(top, size.Y)
	out.FillArea(p.VoxelType, world.V3(0, 0, 0), world.V3(size.X, top, size.Z), ch)
}

func (p *TestProvider) generateWaves(out *world.Buffer, blockPos world.Vec3i, ch int) {
	size := out.Size()
	origin := world.BlockToVoxel(blockPos)
	for z := 0; z < size.Z; z++ {
		for x := 0; x < size.X; x++ {
			top := p.wavesHeight(origin.X+x, origin.Z+z) - origin.Y
			if top <= 0 {
				continue
			}
			top = min(top, size.Y)
			out.FillArea(p.VoxelType, world.V3(x, 0, z), world.V3(x+1, top, z+1), ch)
		}
	}
}

func (p *TestProvider) wavesHeight(x, z int) int {
	amplitude := float64(p.PatternSize.Y)
	px := float64(max(p.PatternSize.X, 1))
	pz := float64(max(p.PatternSize.Z, 1))
	fx := float64(x+p.PatternOffset.X) / px
	fz := float64(z+p.PatternOffset.Z) / pz
	h := 0.5 * amplitude * (math.Cos(fx) + math.Sin(fz))
	return int(math.Floor(h)) + p.PatternOffset.Y
}
