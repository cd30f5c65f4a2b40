package pngx

// normalize turns a bitmapper plane (still in the source color type, native
// sample range) into the canonical 8-bit RGBA Raster. It never writes back
// through plane.pix: palette expansion in particular needs 4 output bytes
// per 1 input "pixel" and the two buffers cannot alias, per spec.md §9's
// buffer-aliasing redesign note.
func normalize(plane *planeRGBA16, meta *Metadata) (*Raster, error) {
	out := NewRaster(plane.width, plane.height)
	maxIn := uint16(1<<uint(meta.Depth) - 1)

	for y := 0; y < plane.height; y++ {
		for x := 0; x < plane.width; x++ {
			i := (y*plane.width + x) * 4
			r16, g16, b16, a16 := plane.pix[i], plane.pix[i+1], plane.pix[i+2], plane.pix[i+3]

			var r, g, b, a uint8
			switch {
			case meta.HasPalette:
				idx := int(r16)
				if idx >= len(meta.Palette) {
					return nil, newErr(PaletteIndex, "palette index %d out of range (palette has %d entries)", idx, len(meta.Palette))
				}
				q := meta.Palette[idx]
				r, g, b, a = q.R, q.G, q.B, q.A
			default:
				if meta.Trans.Present && transparencyMatches(meta, r16, g16, b16) {
					r, g, b, a = 0, 0, 0, 0
				} else {
					r = rescaleSample(r16, maxIn)
					g = rescaleSample(g16, maxIn)
					b = rescaleSample(b16, maxIn)
					a = rescaleSample(a16, maxIn)
				}
			}

			oi := out.PixOffset(x, y)
			out.Pix[oi+0] = r
			out.Pix[oi+1] = g
			out.Pix[oi+2] = b
			out.Pix[oi+3] = a
		}
	}

	out.Gamma = meta.Gamma
	return out, nil
}

// transparencyMatches reports whether a decoded (non-palette) pixel matches
// the tRNS-keyed transparent color, at the image's native sample scale.
func transparencyMatches(meta *Metadata, r, g, b uint16) bool {
	switch meta.ColorType {
	case ctGray:
		return r == meta.Trans.Gray
	case ctTrueColor:
		return r == meta.Trans.R && g == meta.Trans.G && b == meta.Trans.B
	default:
		return false
	}
}

// rescaleSample maps a sample from [0, maxIn] to [0, 255], rounding to the
// nearest integer. At depth 8 this is the identity.
func rescaleSample(v, maxIn uint16) uint8 {
	if maxIn == 255 {
		return uint8(v)
	}
	return uint8((uint32(v)*255 + uint32(maxIn)/2) / uint32(maxIn))
}
