package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"voxelkit/internal/lighting"
	"voxelkit/internal/meshing"
	"voxelkit/internal/registry"
	"voxelkit/internal/world"
)

var ErrInvalid = errors.New("config: invalid value")

// Config describes one bake run: which blocks to load, how to light them, and
// where to write the result.
type Config struct {
	Library   string          `yaml:"library"`
	Area      Area            `yaml:"area"`
	Channels  Channels        `yaml:"channels"`
	Generator GeneratorConfig `yaml:"generator"`
	Lighting  LightingConfig  `yaml:"lighting"`
	Mesher    MesherConfig    `yaml:"mesher"`
	Output    OutputConfig    `yaml:"output"`
}

// Area is the half-open box [Min, Max) of block coordinates. A positive
// Radius selects the cube around Center instead, loaded only up to the
// terrain surface.
type Area struct {
	Min    [3]int `yaml:"min"`
	Max    [3]int `yaml:"max"`
	Center [3]int `yaml:"center"`
	Radius int    `yaml:"radius"`
}

func (a Area) Bounds() (world.Vec3i, world.Vec3i) {
	if a.Radius > 0 {
		c := a.CenterBlock()
		r := world.V3(a.Radius, a.Radius, a.Radius)
		return c.Sub(r), c.Add(r).Add(world.V3(1, 1, 1))
	}
	return world.SortMinMax(world.V3(a.Min[0], a.Min[1], a.Min[2]), world.V3(a.Max[0], a.Max[1], a.Max[2]))
}

func (a Area) CenterBlock() world.Vec3i {
	return world.V3(a.Center[0], a.Center[1], a.Center[2])
}

type Channels struct {
	Type  int `yaml:"type"`
	Light int `yaml:"light"`
}

type LightSource struct {
	Pos   [3]int `yaml:"pos"`
	Level int    `yaml:"level"`
}

type LightingConfig struct {
	Enabled bool          `yaml:"enabled"`
	Rounds  int           `yaml:"rounds"` // 0 means enough to reach LightMax
	Sources []LightSource `yaml:"sources"`
}

type MaterialConfig struct {
	ID         int        `yaml:"id"`
	Name       string     `yaml:"name"`
	Color      [4]float32 `yaml:"color"`
	AlphaBlend bool       `yaml:"alpha_blend"`
}

type MesherConfig struct {
	Occlusion bool             `yaml:"occlusion"`
	Darkness  float32          `yaml:"darkness"`
	Workers   int              `yaml:"workers"`
	QueueSize int              `yaml:"queue_size"`
	Materials []MaterialConfig `yaml:"materials"`
}

type OutputConfig struct {
	GLB        string `yaml:"glb"`
	SlicePNG   string `yaml:"slice_png"`
	SliceY     int    `yaml:"slice_y"`
	SliceScale int    `yaml:"slice_scale"`
}

// Default returns a small flat test scene.
func Default() *Config {
	return &Config{
		Area:      Area{Min: [3]int{-1, -1, -1}, Max: [3]int{2, 1, 2}},
		Channels:  Channels{Type: 0, Light: 1},
		Generator: defaultGenerator(),
		Lighting: LightingConfig{
			Enabled: true,
			Sources: []LightSource{{Pos: [3]int{8, 2, 8}, Level: int(lighting.LightMax)}},
		},
		Mesher: MesherConfig{
			Occlusion: true,
			Darkness:  meshing.DefaultOcclusionDarkness,
			Workers:   4,
			QueueSize: 64,
		},
		Output: OutputConfig{GLB: "out.glb", SliceScale: 8},
	}
}

// Load reads a YAML file over the defaults, then normalizes and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize orders the area corners and clamps tunables to usable ranges.
func (c *Config) Normalize() {
	if c.Area.Radius < 0 {
		c.Area.Radius = 0
	}
	min, max := c.Area.Bounds()
	c.Area.Min = [3]int{min.X, min.Y, min.Z}
	c.Area.Max = [3]int{max.X, max.Y, max.Z}

	if c.Mesher.Workers < 1 {
		c.Mesher.Workers = 1
	}
	if c.Mesher.Workers > 64 {
		c.Mesher.Workers = 64
	}
	if c.Mesher.QueueSize < 1 {
		c.Mesher.QueueSize = c.Mesher.Workers * 4
	}
	if c.Output.SliceScale < 1 {
		c.Output.SliceScale = 1
	}
	for i := range c.Lighting.Sources {
		if c.Lighting.Sources[i].Level > int(lighting.LightMax) {
			c.Lighting.Sources[i].Level = int(lighting.LightMax)
		}
	}
}

func (c *Config) Validate() error {
	for _, ch := range []int{c.Channels.Type, c.Channels.Light} {
		if ch < 0 || ch >= world.MaxChannels {
			return fmt.Errorf("channel %d not in [0,%d): %w", ch, world.MaxChannels, ErrInvalid)
		}
	}
	if c.Lighting.Enabled && c.Channels.Type == c.Channels.Light {
		return fmt.Errorf("type and light share channel %d: %w", c.Channels.Type, ErrInvalid)
	}
	if c.Mesher.Darkness < 0 || c.Mesher.Darkness > 1 {
		return fmt.Errorf("occlusion darkness %v not in [0,1]: %w", c.Mesher.Darkness, ErrInvalid)
	}
	for i, src := range c.Lighting.Sources {
		if src.Level < 1 {
			return fmt.Errorf("light source %d: level %d: %w", i, src.Level, ErrInvalid)
		}
	}
	seen := make(map[int]bool, len(c.Mesher.Materials))
	for _, m := range c.Mesher.Materials {
		if m.ID < 0 || m.ID >= registry.MaxMaterials {
			return fmt.Errorf("material id %d not in [0,%d): %w", m.ID, registry.MaxMaterials, ErrInvalid)
		}
		if seen[m.ID] {
			return fmt.Errorf("material %d configured twice: %w", m.ID, ErrInvalid)
		}
		seen[m.ID] = true
	}
	return c.Generator.Validate()
}

// MeshMaterials converts the configured materials, or a single white opaque
// material in slot 0 when none are listed.
func (c *Config) MeshMaterials() map[int]*meshing.Material {
	out := make(map[int]*meshing.Material, len(c.Mesher.Materials))
	for _, m := range c.Mesher.Materials {
		color := m.Color
		if color == ([4]float32{}) {
			color = [4]float32{1, 1, 1, 1}
		}
		out[m.ID] = &meshing.Material{Name: m.Name, BaseColor: color, AlphaBlend: m.AlphaBlend}
	}
	if len(out) == 0 {
		out[0] = &meshing.Material{Name: "default", BaseColor: [4]float32{1, 1, 1, 1}}
	}
	return out
}
