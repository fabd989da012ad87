package provider

import (
	"math"

	"github.com/aquilax/go-perlin"

	"voxelkit/internal/world"
)

// NoiseProvider generates perlin heightmap terrain with optional water and caves.
type NoiseProvider struct {
	Seed       int64
	Scale      float64
	BaseHeight int
	Amplitude  float64

	SurfaceID uint16
	FillID    uint16
	WaterID   uint16 // 0 disables water
	SeaLevel  int

	// Cells where 3D noise exceeds CaveThreshold are carved out.
	// Values >= 1 disable caves.
	CaveThreshold float64
	CaveScale     float64

	height *perlin.Perlin
	caves  *perlin.Perlin
}

// NewNoiseProvider creates a generator with default settings.
func NewNoiseProvider(seed int64) *NoiseProvider {
	p := &NoiseProvider{
		Seed:          seed,
		Scale:         1.0 / 64.0,
		BaseHeight:    0,
		Amplitude:     24,
		SurfaceID:     2,
		FillID:        1,
		SeaLevel:      -4,
		CaveThreshold: 1,
		CaveScale:     1.0 / 24.0,
	}
	p.Reseed(seed)
	return p
}

// Reseed rebuilds the noise sources. Call it after changing Seed.
func (p *NoiseProvider) Reseed(seed int64) {
	p.Seed = seed
	// alpha 2 / beta 2 / 3 octaves gives smooth rolling hills.
	p.height = perlin.NewPerlin(2, 2, 3, seed)
	p.caves = perlin.NewPerlin(2, 2, 2, seed+1)
}

// HeightAt computes the surface height (world y of the top solid voxel plus one) at x, z.
func (p *NoiseProvider) HeightAt(x, z int) int {
	n := p.height.Noise2D(float64(x)*p.Scale, float64(z)*p.Scale)
	return p.BaseHeight + int(math.Floor(n*p.Amplitude))
}

func (p *NoiseProvider) carved(x, y, z int) bool {
	if p.CaveThreshold >= 1 {
		return false
	}
	s := p.CaveScale
	return p.caves.Noise3D(float64(x)*s, float64(y)*s, float64(z)*s) > p.CaveThreshold
}

func (p *NoiseProvider) EmergeBlock(out *world.Buffer, blockPos world.Vec3i, ch int) {
	size := out.Size()
	origin := world.BlockToVoxel(blockPos)
	for z := 0; z < size.Z; z++ {
		for x := 0; x < size.X; x++ {
			wx, wz := origin.X+x, origin.Z+z
			height := p.HeightAt(wx, wz)
			for y := 0; y < size.Y; y++ {
				wy := origin.Y + y
				var id uint16
				switch {
				case wy < height-1:
					id = p.FillID
				case wy == height-1:
					id = p.SurfaceID
				case p.WaterID != 0 && wy < p.SeaLevel:
					id = p.WaterID
				}
				if id != 0 && id != p.WaterID && p.carved(wx, wy, wz) {
					id = 0
				}
				if id != 0 {
					out.SetVoxel(id, x, y, z, ch)
				}
			}
		}
	}
}
