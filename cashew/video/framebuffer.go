package video

import (
	"image"
	"image/color"

	"github.com/cespare/xxhash"
)

// GBColor is a packed 0xAARRGGBB color.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFF989898
	DarkGreyColor  GBColor = 0xFF4C4C4C
	BlackColor     GBColor = 0xFF000000
)

// RGBA converts to an image color.
func (c GBColor) RGBA() color.RGBA {
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: uint8(c >> 24)}
}

// Shades maps the four monochrome shades, lightest first.
type Shades [4]GBColor

// DefaultShades is the grey ramp used for every monochrome layer.
var DefaultShades = Shades{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// ColorTable resolves color mode pixels, see memory.Palettes.
type ColorTable interface {
	Color(index uint8) uint16
}

// FrameBuffer collects rendered lines into an RGBA image. It implements LineDrawer.
type FrameBuffer struct {
	img *image.RGBA

	table ColorTable
	// monochrome shades for the background, OBJ0 and OBJ1 layers
	bg, obj0, obj1 Shades
}

// NewFrameBuffer creates a blank, white 160x144 frame buffer.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{
		img:  image.NewRGBA(image.Rect(0, 0, Width, Height)),
		bg:   DefaultShades,
		obj0: DefaultShades,
		obj1: DefaultShades,
	}
	fb.Clear()
	return fb
}

// SetColorTable switches to color mode output; nil goes back to shades.
func (fb *FrameBuffer) SetColorTable(table ColorTable) {
	fb.table = table
}

// SetShades selects the monochrome colors of each layer. Layers can only be
// told apart when the emulator tags pixels with their palette.
func (fb *FrameBuffer) SetShades(bg, obj0, obj1 Shades) {
	fb.bg, fb.obj0, fb.obj1 = bg, obj0, obj1
}

// DrawLine converts a row of palette indices into row line of the image.
func (fb *FrameBuffer) DrawLine(pixels *[Width]uint8, line uint8) {
	if int(line) >= Height {
		return
	}

	for x, pixel := range pixels {
		fb.img.SetRGBA(x, int(line), fb.resolve(pixel))
	}
}

func (fb *FrameBuffer) resolve(pixel uint8) color.RGBA {
	if fb.table != nil {
		return RGB555(fb.table.Color(pixel & 0x3F))
	}

	shades := &fb.obj0
	switch {
	case pixel&TagBG != 0:
		shades = &fb.bg
	case pixel&TagOBJ1 != 0:
		shades = &fb.obj1
	}
	return shades[pixel&0x03].RGBA()
}

// RGB555 expands a table color, red in the top field, to 8 bits per channel.
func RGB555(c uint16) color.RGBA {
	expand := func(v uint16) uint8 {
		v &= 0x1F
		return uint8(v<<3 | v>>2)
	}
	return color.RGBA{R: expand(c >> 10), G: expand(c >> 5), B: expand(c), A: 0xFF}
}

// Clear paints the whole frame white.
func (fb *FrameBuffer) Clear() {
	white := WhiteColor.RGBA()
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			fb.img.SetRGBA(x, y, white)
		}
	}
}

// Image returns the backing image. It is overwritten as lines arrive.
func (fb *FrameBuffer) Image() *image.RGBA {
	return fb.img
}

// Digest hashes the current frame, equal frames giving equal digests.
func (fb *FrameBuffer) Digest() uint64 {
	return xxhash.Sum64(fb.img.Pix)
}
