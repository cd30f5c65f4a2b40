package pngx

import "math"

// packPixels converts a Raster's 8-bit RGBA buffer into the packed
// pre-filter byte stream for the requested output color type, per
// spec.md §4.9. Raster's input is always full RGBA (spec.md §3). Output
// is always 8-bit: validateEncodeOptions rejects any other BitDepth
// before this is ever called, per spec.md §1's "encoder output is 8-bit
// depth" non-goal.
func packPixels(r *Raster, opts EncodeOptions) ([]byte, error) {
	outColorType := opts.OutputColorType
	outBpp, ok := bppTable[outColorType]
	if !ok || outColorType == ctPaletted {
		return nil, newErr(UnsupportedOption, "unsupported output color type %d", outColorType)
	}

	// Fast path, per spec.md §4.9: "if input and output color types
	// match ... the input is used directly." The Raster's own storage is
	// always the ctTrueColorA shape, so this is only ever a true no-op
	// when both the declared input and the requested output are that
	// shape; any other declared InputColorType still needs conversion
	// even if it happens to equal OutputColorType, since we never keep a
	// packed buffer in a narrower shape to copy from.
	if outColorType == ctTrueColorA && opts.InputColorType == ctTrueColorA {
		out := make([]byte, len(r.Pix))
		copy(out, r.Pix)
		return out, nil
	}

	bg := effectiveBackground(opts.BackgroundColor)
	out := make([]byte, r.Width*r.Height*outBpp)
	outHasAlpha := outColorType == ctGrayAlpha || outColorType == ctTrueColorA
	outIsGray := outColorType == ctGray || outColorType == ctGrayAlpha

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			i := r.PixOffset(x, y)
			pr, pg, pb, pa := r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3]
			if !opts.InputHasAlpha {
				pa = 255
			}

			// Alpha-carrying outputs keep the samples as is: there is
			// nothing to collapse. Alpha-less outputs collapse against
			// the background, per spec.md §4.9.
			rr, gg, bb := pr, pg, pb
			if !outHasAlpha {
				rr = compositeAgainstBackground(pr, pa, bg.R)
				gg = compositeAgainstBackground(pg, pa, bg.G)
				bb = compositeAgainstBackground(pb, pa, bg.B)
			}

			outPixel := (y*r.Width + x) * outBpp
			switch {
			case outIsGray && outHasAlpha:
				out[outPixel+0] = grayscaleLuminance(rr, gg, bb)
				out[outPixel+1] = pa
			case outIsGray:
				out[outPixel+0] = grayscaleLuminance(rr, gg, bb)
			case outHasAlpha:
				out[outPixel+0] = rr
				out[outPixel+1] = gg
				out[outPixel+2] = bb
				out[outPixel+3] = pa
			default:
				out[outPixel+0] = rr
				out[outPixel+1] = gg
				out[outPixel+2] = bb
			}
		}
	}
	return out, nil
}

// effectiveBackground resolves EncodeOptions.BackgroundColor to a concrete
// color: nil (absent) becomes white at the output's max sample value, per
// spec.md §3.
func effectiveBackground(bg *RGBAQuad) RGBAQuad {
	if bg == nil {
		return RGBAQuad{R: 255, G: 255, B: 255, A: 255}
	}
	return *bg
}

// compositeAgainstBackground implements spec.md §4.9's alpha-collapse
// formula: out = round(bg*(1-a/max) + sample*(a/max)), clamped to [0,max].
// At 8-bit output max is always 255.
func compositeAgainstBackground(sample, alpha, bg uint8) uint8 {
	if alpha == 255 {
		return sample
	}
	a := float64(alpha) / 255
	v := float64(bg)*(1-a) + float64(sample)*a
	return clampByte(v + 0.5)
}

// grayscaleLuminance implements spec.md §4.9's grayscale reduction:
// round((r+g+b)/3).
func grayscaleLuminance(r, g, b uint8) uint8 {
	return clampByte(math.Round(float64(int(r)+int(g)+int(b)) / 3))
}
