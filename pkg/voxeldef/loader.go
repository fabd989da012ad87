package voxeldef

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"voxelkit/internal/registry"
)

var ErrInvalid = errors.New("voxeldef: invalid definition")

// Load reads a voxel library from a YAML or JSON file.
func Load(path string) (*registry.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read voxel definitions: %w", err)
	}
	lib, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// Parse validates and decodes a document, then builds the library it describes.
func Parse(data []byte) (*registry.Library, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not unmarshal voxel definitions: %w", err)
	}
	return Build(&doc)
}

// Build turns a decoded document into a library. Entries may name a parent
// entry; unset fields are inherited from it.
func Build(doc *Document) (*registry.Library, error) {
	byName := make(map[string]*VoxelDef, len(doc.Voxels))
	seenIDs := make(map[int]string, len(doc.Voxels))
	for i := range doc.Voxels {
		def := &doc.Voxels[i]
		if def.Name == "" {
			return nil, fmt.Errorf("voxel #%d has no name: %w", i, ErrInvalid)
		}
		if def.ID <= 0 || def.ID >= registry.MaxVoxelTypes {
			return nil, fmt.Errorf("voxel %q: id %d not in [1,%d): %w", def.Name, def.ID, registry.MaxVoxelTypes, ErrInvalid)
		}
		if other, dup := seenIDs[def.ID]; dup {
			return nil, fmt.Errorf("voxel %q: id %d already used by %q: %w", def.Name, def.ID, other, ErrInvalid)
		}
		if _, dup := byName[def.Name]; dup {
			return nil, fmt.Errorf("voxel %q defined twice: %w", def.Name, ErrInvalid)
		}
		seenIDs[def.ID] = def.Name
		byName[def.Name] = def
	}

	resolved := make(map[string]*VoxelDef, len(byName))
	lib := registry.NewLibrary(doc.AtlasSize)
	for i := range doc.Voxels {
		def, err := resolve(doc.Voxels[i].Name, byName, resolved, nil)
		if err != nil {
			return nil, err
		}
		if err := apply(lib, def); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

func resolve(name string, byName, resolved map[string]*VoxelDef, chain []string) (*VoxelDef, error) {
	if def, ok := resolved[name]; ok {
		return def, nil
	}
	for _, n := range chain {
		if n == name {
			return nil, fmt.Errorf("voxel %q: parent cycle %v: %w", name, append(chain, name), ErrInvalid)
		}
	}
	src, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("voxel %q: unknown parent %q: %w", chain[len(chain)-1], name, ErrInvalid)
	}
	def := *src
	if def.Parent != "" {
		parent, err := resolve(def.Parent, byName, resolved, append(chain, name))
		if err != nil {
			return nil, err
		}
		inherit(&def, parent)
	}
	resolved[name] = &def
	return &def, nil
}

func inherit(def, parent *VoxelDef) {
	if def.Material == nil {
		def.Material = parent.Material
	}
	if def.Transparent == nil {
		def.Transparent = parent.Transparent
	}
	if len(def.HiddenFaces) == 0 {
		def.HiddenFaces = parent.HiddenFaces
	}
	if def.Color == nil {
		def.Color = parent.Color
	}
	if def.Geometry == nil {
		def.Geometry = parent.Geometry
	}
	if def.UV == nil {
		def.UV = parent.UV
	}
	if len(def.Elements) == 0 {
		def.Elements = parent.Elements
	}
}

func apply(lib *registry.Library, def *VoxelDef) error {
	v := lib.CreateVoxel(def.ID, def.Name)
	if def.Material != nil {
		if err := v.SetMaterialID(*def.Material); err != nil {
			return err
		}
	}
	if def.Transparent != nil {
		v.Transparent = *def.Transparent
	}
	if def.Color != nil {
		v.Color = mgl32.Vec4(*def.Color)
	}
	for _, name := range def.HiddenFaces {
		side, ok := ParseFace(name)
		if !ok {
			return fmt.Errorf("voxel %q: unknown face %q: %w", def.Name, name, ErrInvalid)
		}
		v.HideFaces(side)
	}

	if def.Geometry != nil {
		switch def.Geometry.Type {
		case "cube", "":
			height := float32(1)
			if def.Geometry.Height != nil {
				height = *def.Geometry.Height
			}
			v.SetCubeGeometry(height)
		case "none":
		default:
			return fmt.Errorf("voxel %q: unknown geometry %q: %w", def.Name, def.Geometry.Type, ErrInvalid)
		}
	}

	tile := mgl32.Vec2{}
	if uv := def.UV; uv != nil {
		switch {
		case uv.All != nil:
			tile = mgl32.Vec2(*uv.All)
			v.SetCubeUVAllSides(tile)
		case uv.Side != nil:
			tile = mgl32.Vec2(*uv.Side)
			top, bottom := tile, tile
			if uv.Top != nil {
				top = mgl32.Vec2(*uv.Top)
			}
			if uv.Bottom != nil {
				bottom = mgl32.Vec2(*uv.Bottom)
			}
			v.SetCubeUVTBSSides(top, tile, bottom)
		default:
			return fmt.Errorf("voxel %q: uv needs all or side: %w", def.Name, ErrInvalid)
		}
	}

	if len(def.Elements) > 0 {
		vertices, normals, uvs, err := elementGeometry(def, tile, lib.AtlasSize())
		if err != nil {
			return err
		}
		if err := v.SetInsideGeometry(vertices, normals, uvs); err != nil {
			return err
		}
	}
	return nil
}
