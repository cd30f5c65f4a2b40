package pngx

import (
	"image"
	"image/color"
	"math"
)

// RGBAQuad is a single opaque-or-translucent color entry, used for both
// decoded palettes and tRNS-adjusted palette alpha.
type RGBAQuad struct {
	R, G, B, A uint8
}

// Palette is an ordered sequence of up to 256 RGBA entries, per spec.md §3.
// This is the "stricter typed version" the spec's Open Questions call for:
// always a sequence of quads, never a flat byte buffer.
type Palette []RGBAQuad

// TransColor is the simple-transparency key parsed from a tRNS chunk for
// color type 0 or 2. Only one of Gray/RGB is meaningful, selected by which
// color type the image declares.
type TransColor struct {
	Present bool
	Gray    uint16
	R, G, B uint16
}

// Metadata holds everything the chunk parser learns from IHDR (and, later,
// PLTE/tRNS/gAMA) before any pixel data is processed. The IHDR-derived
// fields are not changed after IHDR has been parsed; Palette, Trans, and
// Gamma are filled in by the later chunks.
type Metadata struct {
	Width, Height int
	Depth         int
	ColorType     int
	Interlace     int

	HasPalette bool
	HasColor   bool
	HasAlpha   bool

	Palette Palette
	Trans   TransColor
	Gamma   float64 // 0 means unset
}

// bpp is the channel count (not byte count) a pixel of this metadata's
// color type carries, per spec.md's BPP glossary entry.
func (m *Metadata) bpp() int {
	return bppTable[m.ColorType]
}

func deriveColorFlags(m *Metadata) {
	m.HasPalette = m.ColorType&colorFlagPalette != 0
	m.HasColor = m.ColorType&colorFlagColor != 0
	m.HasAlpha = m.ColorType&colorFlagAlpha != 0
}

// Raster is the codec's normalized output: 8-bit RGBA pixels in a flat
// byte buffer, row-major, four bytes per pixel.
type Raster struct {
	Width, Height int
	Pix           []byte // len == 4*Width*Height
	Gamma         float64
}

// NewRaster allocates a zeroed Raster of the given dimensions.
func NewRaster(width, height int) *Raster {
	return &Raster{Width: width, Height: height, Pix: make([]byte, 4*width*height)}
}

// PixOffset returns the index of the first (red) byte of pixel (x, y).
func (r *Raster) PixOffset(x, y int) int {
	return (y*r.Width + x) * 4
}

// Bounds, ColorModel, and At give Raster a thin image.Image conformance
// shim so a decoded raster can be handed directly to anything expecting a
// standard library image, e.g. image/draw, without copying pixels. This is
// a supplemental convenience (SPEC_FULL.md), not part of the core codec
// contract.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// ColorModel and At report color.NRGBA, not color.RGBA: Pix stores straight
// (non-premultiplied) alpha, since normalize.go never premultiplies, and
// color.RGBA/color.RGBAModel are documented as alpha-premultiplied. Using
// them here would feed straight-alpha samples through a premultiplied-aware
// consumer like image/draw.Draw and silently corrupt every partially
// transparent pixel. color.NRGBA is the straight-alpha counterpart, and
// matches the teacher's own image.NRGBA usage throughout
// fumin-png/reader_test.go and writer_test.go.
func (r *Raster) ColorModel() color.Model {
	return color.NRGBAModel
}

func (r *Raster) At(x, y int) color.Color {
	i := r.PixOffset(x, y)
	return color.NRGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: r.Pix[i+3]}
}

// adjustGamma rescales the R, G, and B channels of every pixel by
// sample^(1/(2.2*gamma)), leaving alpha unchanged;
// the operation spec.md's Open Questions name from the original source. A
// gamma of 0 is a documented short-circuit (no adjustment). Negative or
// non-finite gamma is undefined in the source; this codec resolves that
// open question as UnsupportedOption, per spec.md.
func (r *Raster) adjustGamma(gamma float64) error {
	if gamma == 0 {
		return nil
	}
	if gamma < 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return newErr(UnsupportedOption, "gamma %v is not usable for adjustment", gamma)
	}
	exp := 1 / (2.2 * gamma)
	var lut [256]byte
	for i := 0; i < 256; i++ {
		v := math.Pow(float64(i)/255, exp) * 255
		lut[i] = clampByte(math.Round(v))
	}
	for i, b := range r.Pix {
		if i%4 == 3 {
			continue // alpha channel is not gamma-adjusted
		}
		r.Pix[i] = lut[b]
	}
	return nil
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
