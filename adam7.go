package pngx

// adam7Pass describes one of the seven Adam7 interlace passes as the set of
// pixel offsets it covers within each 8x8 block of the full image.
type adam7Pass struct {
	xOffsets []int
	yOffsets []int
}

// adam7Passes is fixed by the PNG spec: seven passes, each picking a subset
// of positions in every 8x8 block, together partitioning the block exactly.
var adam7Passes = [7]adam7Pass{
	{xOffsets: []int{0}, yOffsets: []int{0}},
	{xOffsets: []int{4}, yOffsets: []int{0}},
	{xOffsets: []int{0, 4}, yOffsets: []int{4}},
	{xOffsets: []int{2, 6}, yOffsets: []int{0, 4}},
	{xOffsets: []int{0, 2, 4, 6}, yOffsets: []int{2, 6}},
	{xOffsets: []int{1, 3, 5, 7}, yOffsets: []int{0, 2, 4, 6}},
	{xOffsets: []int{0, 1, 2, 3, 4, 5, 6, 7}, yOffsets: []int{1, 3, 5, 7}},
}

// adam7PassDim computes how many samples along one axis a pass covers, given
// the full-image extent along that axis and the pass's offsets along it.
// Each full 8-pixel block contributes len(offsets) samples; a partial
// trailing block contributes one sample per offset smaller than the
// remainder.
func adam7PassDim(full int, offsets []int) int {
	n := (full / 8) * len(offsets)
	rem := full % 8
	for _, off := range offsets {
		if off < rem {
			n++
		}
	}
	return n
}

// adam7PassSize returns the pixel width and height of pass p (1-indexed, as
// in the PNG spec) for an image of the given full dimensions. Either
// dimension may be 0, meaning the pass is empty and must be skipped.
func adam7PassSize(pass int, width, height int) (w, h int) {
	p := adam7Passes[pass-1]
	return adam7PassDim(width, p.xOffsets), adam7PassDim(height, p.yOffsets)
}

// adam7PixelPos maps a pixel at (xInPass, yInPass) within pass p to its
// absolute (x, y) position in the full image.
func adam7PixelPos(pass int, xInPass, yInPass int) (x, y int) {
	p := adam7Passes[pass-1]
	nx := len(p.xOffsets)
	ny := len(p.yOffsets)
	blockX := xInPass / nx
	offX := p.xOffsets[xInPass%nx]
	blockY := yInPass / ny
	offY := p.yOffsets[yInPass%ny]
	return blockX*8 + offX, blockY*8 + offY
}
