package config

import (
	"fmt"

	"voxelkit/internal/provider"
	"voxelkit/internal/world"
)

// GeneratorConfig selects and tunes the voxel provider.
type GeneratorConfig struct {
	Mode string `yaml:"mode"` // flat, waves or noise
	Seed int64  `yaml:"seed"`

	VoxelType     uint16 `yaml:"voxel_type"`
	PatternSize   [3]int `yaml:"pattern_size"`
	PatternOffset [3]int `yaml:"pattern_offset"`

	BaseHeight int     `yaml:"base_height"`
	Amplitude  float64 `yaml:"amplitude"`
	SurfaceID  uint16  `yaml:"surface_id"`
	FillID     uint16  `yaml:"fill_id"`
	WaterID    uint16  `yaml:"water_id"`
	SeaLevel   int     `yaml:"sea_level"`
	Caves      bool    `yaml:"caves"`
}

func defaultGenerator() GeneratorConfig {
	return GeneratorConfig{
		Mode:        "flat",
		VoxelType:   1,
		PatternSize: [3]int{10, 10, 10},
		Amplitude:   24,
		SurfaceID:   2,
		FillID:      1,
		SeaLevel:    -4,
	}
}

func (g *GeneratorConfig) Validate() error {
	if g.Mode == "noise" {
		return nil
	}
	if _, ok := provider.ParseMode(g.Mode); !ok {
		return fmt.Errorf("unknown generator mode %q: %w", g.Mode, ErrInvalid)
	}
	for _, s := range g.PatternSize {
		if s <= 0 {
			return fmt.Errorf("pattern size %v must be positive: %w", g.PatternSize, ErrInvalid)
		}
	}
	return nil
}

// NewProvider builds the provider the settings describe.
func (g *GeneratorConfig) NewProvider() (provider.Provider, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if g.Mode == "noise" {
		p := provider.NewNoiseProvider(g.Seed)
		p.BaseHeight = g.BaseHeight
		p.Amplitude = g.Amplitude
		p.SurfaceID = g.SurfaceID
		p.FillID = g.FillID
		p.WaterID = g.WaterID
		p.SeaLevel = g.SeaLevel
		if g.Caves {
			p.CaveThreshold = 0.35
		}
		return p, nil
	}
	mode, _ := provider.ParseMode(g.Mode)
	p := provider.NewTestProvider()
	p.Mode = mode
	p.VoxelType = g.VoxelType
	p.PatternSize = world.V3(g.PatternSize[0], g.PatternSize[1], g.PatternSize[2])
	p.PatternOffset = world.V3(g.PatternOffset[0], g.PatternOffset[1], g.PatternOffset[2])
	return p, nil
}
