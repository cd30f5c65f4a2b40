package pngx

import "io"

// planeRGBA16 is the bitmapper's output: one uint16 per RGBA channel per
// pixel, in the sample's native range (0..2^depth-1). Depths below 16
// still use uint16 storage; the normalizer rescales down to 8 bits for the
// final Raster. Using one representation regardless of depth keeps the
// bitmapper single-pathed without changing any externally observable
// behavior (spec.md's invariants are all stated on the post-normalize
// buffer).
type planeRGBA16 struct {
	width, height int
	pix           []uint16 // len == width*height*4
}

func newPlaneRGBA16(w, h int) *planeRGBA16 {
	return &planeRGBA16{width: w, height: h, pix: make([]uint16, w*h*4)}
}

func (p *planeRGBA16) set(x, y int, r, g, b, a uint16) {
	i := (y*p.width + x) * 4
	p.pix[i+0] = r
	p.pix[i+1] = g
	p.pix[i+2] = b
	p.pix[i+3] = a
}

// bitmap drives the filter engine and pixel expansion over the inflated
// scanline stream, honoring Adam7 interlacing when meta.Interlace == 1. It
// returns the fully populated RGBA16 plane, still in whatever color type
// meta describes (i.e. not yet normalized).
func bitmap(r io.Reader, meta *Metadata) (*planeRGBA16, error) {
	plane := newPlaneRGBA16(meta.Width, meta.Height)
	maxSample := uint16(1<<uint(meta.Depth) - 1)

	expandRow := func(samples []uint16, place func(xInRow int, r, g, b, a uint16)) error {
		bpp := meta.bpp()
		switch meta.ColorType {
		case ctGray:
			for x := 0; x < len(samples); x++ {
				g := samples[x]
				place(x, g, g, g, maxSample)
			}
		case ctTrueColor:
			for x := 0; x < len(samples)/bpp; x++ {
				r0, g0, b0 := samples[x*3], samples[x*3+1], samples[x*3+2]
				place(x, r0, g0, b0, maxSample)
			}
		case ctPaletted:
			for x := 0; x < len(samples); x++ {
				idx := int(samples[x])
				if idx >= len(meta.Palette) {
					return newErr(PaletteIndex, "palette index %d out of range (palette has %d entries)", idx, len(meta.Palette))
				}
				// Palette entries are placed as raw index-carrying pixels
				// here; normalize.go expands them into real RGBA using
				// meta.Palette. We stash the index in the R channel and
				// mark the pixel as paletted via meta.HasPalette so the
				// normalizer knows to reinterpret it.
				place(x, uint16(idx), 0, 0, 0)
			}
		case ctGrayAlpha:
			for x := 0; x < len(samples)/bpp; x++ {
				g, a := samples[x*2], samples[x*2+1]
				place(x, g, g, g, a)
			}
		case ctTrueColorA:
			for x := 0; x < len(samples)/bpp; x++ {
				r0, g0, b0, a0 := samples[x*4], samples[x*4+1], samples[x*4+2], samples[x*4+3]
				place(x, r0, g0, b0, a0)
			}
		}
		return nil
	}

	if meta.Interlace == 0 {
		byteWidth := rowByteWidth(meta.Width, meta.bpp(), meta.Depth)
		dist := filterByteDistance(meta.bpp(), meta.Depth)
		var prev []byte
		buf := make([]byte, byteWidth+1)
		for y := 0; y < meta.Height; y++ {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, truncatedOr(err, "scanline %d", y)
			}
			ftype := buf[0]
			cur := make([]byte, byteWidth)
			copy(cur, buf[1:])
			if err := unfilterRow(ftype, cur, prev, dist); err != nil {
				return nil, err
			}
			samples, err := bitUnpack(cur, meta.Depth, meta.Width*meta.bpp())
			if err != nil {
				return nil, err
			}
			if err := expandRow(samples, func(x int, rr, gg, bb, aa uint16) {
				plane.set(x, y, rr, gg, bb, aa)
			}); err != nil {
				return nil, err
			}
			prev = cur
		}
		return plane, nil
	}

	// Adam7: process each of the seven passes independently, each with its
	// own filter history, writing pixels into the shared plane via the
	// pass geometry.
	for pass := 1; pass <= 7; pass++ {
		pw, ph := adam7PassSize(pass, meta.Width, meta.Height)
		if pw == 0 || ph == 0 {
			continue
		}
		byteWidth := rowByteWidth(pw, meta.bpp(), meta.Depth)
		dist := filterByteDistance(meta.bpp(), meta.Depth)
		var prev []byte
		buf := make([]byte, byteWidth+1)
		for yInPass := 0; yInPass < ph; yInPass++ {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, truncatedOr(err, "pass %d scanline %d", pass, yInPass)
			}
			ftype := buf[0]
			cur := make([]byte, byteWidth)
			copy(cur, buf[1:])
			if err := unfilterRow(ftype, cur, prev, dist); err != nil {
				return nil, err
			}
			samples, err := bitUnpack(cur, meta.Depth, pw*meta.bpp())
			if err != nil {
				return nil, err
			}
			if err := expandRow(samples, func(xInPass int, rr, gg, bb, aa uint16) {
				ax, ay := adam7PixelPos(pass, xInPass, yInPass)
				plane.set(ax, ay, rr, gg, bb, aa)
			}); err != nil {
				return nil, err
			}
			prev = cur
		}
	}
	return plane, nil
}

// rowByteWidth is ceil(width*bpp*depth/8), the number of filtered data
// bytes (excluding the leading filter-type byte) in one scanline.
func rowByteWidth(width, bpp, depth int) int {
	bits := width * bpp * depth
	return (bits + 7) / 8
}

func truncatedOr(err error, format string, args ...any) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return newErr(Truncated, format, args...)
	}
	return err
}
