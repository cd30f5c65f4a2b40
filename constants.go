package pngx

// pngHeader is the fixed 8-byte PNG signature every valid stream starts with.
const pngHeader = "\x89PNG\r\n\x1a\n"

// Chunk type codes this codec treats semantically. Anything else is either
// skipped (ancillary) or rejected (critical) by the chunk parser.
const (
	chunkIHDR = "IHDR"
	chunkPLTE = "PLTE"
	chunkIDAT = "IDAT"
	chunkIEND = "IEND"
	chunkTRNS = "tRNS"
	chunkGAMA = "gAMA"
)

// Color type bit flags, as per the PNG spec: bit 0 selects palette use, bit
// 1 selects color (as opposed to grayscale), bit 2 selects an alpha channel.
const (
	colorFlagPalette = 1
	colorFlagColor   = 2
	colorFlagAlpha   = 4
)

// PNG color type values. Only these five are legal in IHDR.
const (
	ctGray       = 0
	ctTrueColor  = 2
	ctPaletted   = 3
	ctGrayAlpha  = 4
	ctTrueColorA = 6
)

// Filter type byte values, one per scanline.
const (
	ftNone  = 0
	ftSub   = 1
	ftUp    = 2
	ftAvg   = 3
	ftPaeth = 4
	nFilter = 5
)

// bppTable maps a color type to the number of channels ("samples per pixel",
// not bytes) a pixel of that type carries.
var bppTable = map[int]int{
	ctGray:       1,
	ctTrueColor:  3,
	ctPaletted:   1,
	ctGrayAlpha:  2,
	ctTrueColorA: 4,
}

// validDepths lists the bit depths IHDR may declare.
var validDepths = map[int]bool{1: true, 2: true, 4: true, 8: true, 16: true}

// gammaScale converts a stored 32-bit gAMA value into the semantic gamma:
// gamma = storedValue / gammaScale.
const gammaScale = 100000
