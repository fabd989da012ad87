// Package debugview renders horizontal slices of a block store to images.
package debugview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"voxelkit/internal/registry"
	"voxelkit/internal/world"
)

// Palette maps voxel ids to colors. Ids without an entry are drawn magenta.
type Palette map[uint16]color.RGBA

var missing = color.RGBA{R: 255, B: 255, A: 255}

// PaletteFor assigns a color to every defined id in lib. Voxels with a tint
// use it; the rest get a hue spread by id.
func PaletteFor(lib *registry.Library) Palette {
	p := Palette{0: {}}
	for _, id := range lib.IDs() {
		v := lib.Get(id)
		if v.Color != (mgl32.Vec4{1, 1, 1, 1}) {
			p[uint16(id)] = color.RGBA{
				R: uint8(v.Color[0] * 255),
				G: uint8(v.Color[1] * 255),
				B: uint8(v.Color[2] * 255),
				A: 255,
			}
			continue
		}
		p[uint16(id)] = hue(float64(id) * 0.618033988749895)
	}
	return p
}

func hue(h float64) color.RGBA {
	h = (h - math.Floor(h)) * 6
	x := uint8(255 * (1 - math.Abs(math.Mod(h, 2)-1)))
	switch int(h) {
	case 0:
		return color.RGBA{255, x, 0, 255}
	case 1:
		return color.RGBA{x, 255, 0, 255}
	case 2:
		return color.RGBA{0, 255, x, 255}
	case 3:
		return color.RGBA{0, x, 255, 255}
	case 4:
		return color.RGBA{x, 0, 255, 255}
	default:
		return color.RGBA{255, 0, x, 255}
	}
}

// SliceImage draws the voxels at height y between min and max (X and Z used,
// inclusive). Pixel (0,0) is (min.X, min.Z).
func SliceImage(store *world.BlockStore, y int, min, max world.Vec3i, ch int, pal Palette) *image.RGBA {
	min, max = world.SortMinMax(min, max)
	img := image.NewRGBA(image.Rect(0, 0, max.X-min.X+1, max.Z-min.Z+1))
	for z := min.Z; z <= max.Z; z++ {
		for x := min.X; x <= max.X; x++ {
			v := store.GetVoxel(world.V3(x, y, z), ch)
			c, ok := pal[v]
			if !ok {
				c = missing
			}
			img.SetRGBA(x-min.X, z-min.Z, c)
		}
	}
	return img
}

// LightImage draws light levels at height y as grayscale.
func LightImage(store *world.BlockStore, y int, min, max world.Vec3i, ch int) *image.Gray {
	min, max = world.SortMinMax(min, max)
	img := image.NewGray(image.Rect(0, 0, max.X-min.X+1, max.Z-min.Z+1))
	for z := min.Z; z <= max.Z; z++ {
		for x := min.X; x <= max.X; x++ {
			level := store.GetVoxel(world.V3(x, y, z), ch) & 0x0f
			img.SetGray(x-min.X, z-min.Z, color.Gray{Y: uint8(level * 17)})
		}
	}
	return img
}

// Upscale enlarges src by an integer factor without filtering.
func Upscale(src image.Image, factor int) *image.RGBA {
	if factor < 1 {
		factor = 1
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// Label writes text in the top-left corner.
func Label(img draw.Image, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(2, basicfont.Face7x13.Ascent+1),
	}
	d.DrawString(text)
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
