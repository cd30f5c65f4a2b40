package pngx

// CompressionLevel names the deflate levels EncodeOptions accepts,
// mirroring fumin-png/writer_test.go's NewEncoder(BestSpeed) call shape.
type CompressionLevel int

const (
	DefaultCompression CompressionLevel = -1
	NoCompression      CompressionLevel = 0
	BestSpeed          CompressionLevel = 1
	BestCompression    CompressionLevel = 9
)

// FilterType selects a per-scanline filter strategy for the encoder.
// FilterAdaptive picks, per row, whichever fixed filter minimizes the sum
// of absolute signed byte values, per spec.md §4.10.
type FilterType int

const (
	FilterAdaptive FilterType = -1
	FilterNone     FilterType = ftNone
	FilterSub      FilterType = ftSub
	FilterUp       FilterType = ftUp
	FilterAverage  FilterType = ftAvg
	FilterPaeth    FilterType = ftPaeth
)

// EncodeOptions configures Encode, per spec.md §3.
type EncodeOptions struct {
	// OutputColorType is one of ctGray, ctTrueColor, ctGrayAlpha,
	// ctTrueColorA. Palette output is not required by spec.md and is not
	// implemented.
	OutputColorType int

	// InputColorType must be one of ctGray, ctTrueColor, ctGrayAlpha,
	// ctTrueColorA; validateEncodeOptions checks it against that set the
	// same way it checks OutputColorType, rejecting ctPaletted or anything
	// else out of range as UnsupportedOption.
	//
	// InputColorType and InputHasAlpha describe the semantic color type of
	// the source Raster, per spec.md §3's EncodeOptions entity. A Raster
	// always stores full 8-bit RGBA regardless of what it was decoded
	// from, so these are caller-asserted hints, not something packPixels
	// could derive on its own: InputColorType == ctTrueColorA lets
	// packPixels take the identity fast path spec.md §4.9 describes
	// ("if input and output color types match ... the input is used
	// directly") instead of repacking pixel by pixel, and InputHasAlpha
	// == false tells packPixels the Raster's alpha byte carries no real
	// information, so an alpha-carrying output writes 255 instead of
	// whatever happens to be stored there (e.g. the zero value left by a
	// caller that never set alpha on a freshly allocated Raster). The
	// identity fast path (InputColorType and OutputColorType both
	// ctTrueColorA) copies Pix as is, stored alpha included, whatever
	// InputHasAlpha says.
	InputColorType int
	InputHasAlpha  bool

	// BitDepth is the sample width of the *output*. spec.md §1 scopes
	// 16-bit output out entirely ("encoder output is 8-bit depth"), so
	// this must be 8; anything else is UnsupportedOption.
	BitDepth int

	// FilterType selects a fixed filter, or FilterAdaptive for
	// minimum-sum-of-absolute-values selection per scanline.
	FilterType FilterType

	// Level, Strategy, and ChunkSize configure the deflate collaborator.
	// Strategy is 0 (default: use Level) or compress/flate.HuffmanOnly,
	// the only other value flate's Writer accepts in place of a level —
	// when set, it is passed straight through in place of Level, per
	// SPEC_FULL.md's DOMAIN STACK section.
	Level     CompressionLevel
	Strategy  int
	ChunkSize int // 0 means "one IDAT for the whole stream"

	// BackgroundColor is composited against at the output's max sample
	// value whenever alpha must be collapsed (input has alpha, output
	// does not). A nil BackgroundColor defaults to white (255,255,255),
	// per spec.md §3's "R,G,B at output maxValue when absent" — it is a
	// pointer rather than a bare RGBAQuad precisely so "absent" is
	// distinguishable from an explicitly chosen black.
	BackgroundColor *RGBAQuad

	// Gamma, if non-zero, is written out as a gAMA chunk.
	Gamma float64
}

// DefaultEncodeOptions returns an 8-bit RGBA, adaptively-filtered,
// default-compression configuration — the common case for round-tripping
// a Raster byte for byte.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		OutputColorType: ctTrueColorA,
		InputColorType:  ctTrueColorA,
		InputHasAlpha:   true,
		BitDepth:        8,
		FilterType:      FilterAdaptive,
		Level:           DefaultCompression,
	}
}
