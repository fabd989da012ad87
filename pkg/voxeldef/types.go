package voxeldef

// Document is the on-disk description of a voxel library.
// YAML is the primary format; JSON documents parse as well.
type Document struct {
	AtlasSize int        `yaml:"atlas_size" json:"atlas_size"`
	Voxels    []VoxelDef `yaml:"voxels" json:"voxels"`
}

type VoxelDef struct {
	ID     int    `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Parent string `yaml:"parent" json:"parent"`

	Material    *int        `yaml:"material" json:"material"`
	Transparent *bool       `yaml:"transparent" json:"transparent"`
	HiddenFaces []string    `yaml:"hidden_faces" json:"hidden_faces"`
	Color       *[4]float32 `yaml:"color" json:"color"`

	Geometry *Geometry `yaml:"geometry" json:"geometry"`
	UV       *UV       `yaml:"uv" json:"uv"`

	// Elements are boxes in 0-16 units emitted as inside geometry.
	Elements []Element `yaml:"elements" json:"elements"`
}

type Geometry struct {
	Type   string   `yaml:"type" json:"type"` // "cube" or "none"
	Height *float32 `yaml:"height" json:"height"`
}

// UV selects atlas tiles. Either All, or Top/Side/Bottom.
type UV struct {
	All    *[2]float32 `yaml:"all" json:"all"`
	Top    *[2]float32 `yaml:"top" json:"top"`
	Side   *[2]float32 `yaml:"side" json:"side"`
	Bottom *[2]float32 `yaml:"bottom" json:"bottom"`
}

type Element struct {
	From  [3]float32 `yaml:"from" json:"from"`
	To    [3]float32 `yaml:"to" json:"to"`
	Faces []string   `yaml:"faces" json:"faces"` // empty means all six
}
