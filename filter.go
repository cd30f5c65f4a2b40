package pngx

// filterByteDistance is the "D" used by Sub/Average/Paeth to look left
// (scanline size comes from rowByteWidth, not from D): at depth 8 it is one pixel
// (bpp bytes); at depth 16 a sample is two bytes so it doubles; below 8 bits
// a pixel doesn't span a whole byte, so the reference distance collapses to
// a single byte. See spec.md §4.5 and the "filter byte distance at low
// depth" design note.
func filterByteDistance(bpp, depth int) int {
	switch {
	case depth == 16:
		return 2 * bpp
	case depth < 8:
		return 1
	default:
		return bpp
	}
}

// unfilterRow reverses one scanline's filter in place. cur holds the raw
// (still-filtered) bytes on entry and the unfiltered bytes on return. prev
// is the previous row's already-unfiltered bytes, or nil for the first row
// of a pass. dist is the byte distance computed by filterByteDistance.
//
// This generalizes fumin-png's Decoder.DecodeRow switch, which hardcodes
// bytesPerPixel to 4 because it only ever decodes color type 6 depth 8.
func unfilterRow(filterType byte, cur, prev []byte, dist int) error {
	switch filterType {
	case ftNone:
		// no-op
	case ftSub:
		for i := dist; i < len(cur); i++ {
			cur[i] += cur[i-dist]
		}
	case ftUp:
		if prev != nil {
			for i := range cur {
				cur[i] += prev[i]
			}
		}
	case ftAvg:
		for i := 0; i < len(cur); i++ {
			var left, up int
			if i >= dist {
				left = int(cur[i-dist])
			}
			if prev != nil {
				up = int(prev[i])
			}
			cur[i] += uint8((left + up) / 2)
		}
	case ftPaeth:
		for i := 0; i < len(cur); i++ {
			var left, up, upLeft int32
			if i >= dist {
				left = int32(cur[i-dist])
			}
			if prev != nil {
				up = int32(prev[i])
				if i >= dist {
					upLeft = int32(prev[i-dist])
				}
			}
			cur[i] += paeth(left, up, upLeft)
		}
	default:
		return newErr(BadFilterType, "unknown filter type %d", filterType)
	}
	return nil
}

// filterRow computes one forward-filtered scanline into out, the exact
// inverse of unfilterRow. Unlike the decode side, this cannot work in
// place: Sub, Average, and Paeth read raw[i-dist], and if that slot had already been
// overwritten with its filtered value the result would be wrong, so out
// must be a separate buffer from raw.
func filterRow(filterType byte, raw, prev []byte, dist int, out []byte) {
	switch filterType {
	case ftNone:
		copy(out, raw)
	case ftSub:
		for i, v := range raw {
			var left byte
			if i >= dist {
				left = raw[i-dist]
			}
			out[i] = v - left
		}
	case ftUp:
		for i, v := range raw {
			var up byte
			if prev != nil {
				up = prev[i]
			}
			out[i] = v - up
		}
	case ftAvg:
		for i, v := range raw {
			var left, up int
			if i >= dist {
				left = int(raw[i-dist])
			}
			if prev != nil {
				up = int(prev[i])
			}
			out[i] = v - uint8((left+up)/2)
		}
	case ftPaeth:
		for i, v := range raw {
			var left, up, upLeft int32
			if i >= dist {
				left = int32(raw[i-dist])
			}
			if prev != nil {
				up = int32(prev[i])
				if i >= dist {
					upLeft = int32(prev[i-dist])
				}
			}
			out[i] = v - paeth(left, up, upLeft)
		}
	}
}

// filterSignedAbsSum is the heuristic spec.md §4.10 specifies for adaptive
// filter selection: interpret each filtered byte as signed and sum
// absolute values, favoring rows with small, easily-compressed deltas.
func filterSignedAbsSum(row []byte) int {
	sum := 0
	for _, b := range row {
		v := int(int8(b))
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum
}

// applyFilters forward-filters every scanline of a packed pixel buffer,
// either with a fixed filter (ft 0..4) or by picking, per row, whichever of
// the five filters minimizes filterSignedAbsSum (ft == FilterAdaptive).
// The result is (byteWidth+1)*height bytes: a filter-type byte followed by
// the filtered row, per row.
func applyFilters(packed []byte, width, height, bpp, depth int, ft FilterType) []byte {
	byteWidth := rowByteWidth(width, bpp, depth)
	dist := filterByteDistance(bpp, depth)
	out := make([]byte, (byteWidth+1)*height)

	var prev []byte
	trial := make([]byte, byteWidth)
	for y := 0; y < height; y++ {
		raw := packed[y*byteWidth : (y+1)*byteWidth]
		rowOut := out[y*(byteWidth+1) : (y+1)*(byteWidth+1)]

		if ft != FilterAdaptive {
			rowOut[0] = byte(ft)
			filterRow(byte(ft), raw, prev, dist, rowOut[1:])
		} else {
			bestSum := -1
			var bestType byte
			for candidate := byte(0); candidate < nFilter; candidate++ {
				filterRow(candidate, raw, prev, dist, trial)
				sum := filterSignedAbsSum(trial)
				if bestSum == -1 || sum < bestSum {
					bestSum = sum
					bestType = candidate
					copy(rowOut[1:], trial)
				}
			}
			rowOut[0] = bestType
		}
		prev = raw
	}
	return out
}
