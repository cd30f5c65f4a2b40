package pngx

import (
	"bytes"
	"testing"
)

// TestEncodeChunkSizeSplitsIDAT is spec.md §4.11: a small ChunkSize forces
// the encoder to split its compressed stream across multiple IDATs, and a
// compliant decoder (this package's own, via chunkParser.Read) must still
// reassemble it byte for byte.
func TestEncodeChunkSizeSplitsIDAT(t *testing.T) {
	r := checkerRaster(20, 20)
	opts := EncodeOptions{
		OutputColorType: ctTrueColorA,
		BitDepth:        8,
		FilterType:      FilterAdaptive,
		Level:           DefaultCompression,
		ChunkSize:       16, // deliberately tiny: forces many IDATs
	}
	encoded, err := Encode(r, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	idatCount := bytes.Count(encoded, []byte(chunkIDAT))
	if idatCount < 2 {
		t.Fatalf("got %d IDAT chunks, want at least 2 with ChunkSize=16", idatCount)
	}

	decoded, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded.Pix, r.Pix) {
		t.Fatalf("round trip mismatch with split IDATs")
	}
}

// TestEncodeRejectsUnsupportedInputColorType checks that validateEncodeOptions
// catches an out-of-range InputColorType (here, ctPaletted, which packPixels
// never supports as a source shape) instead of letting packPixels mis-pack
// pixels against an assumption it can't back up.
func TestEncodeRejectsUnsupportedInputColorType(t *testing.T) {
	r := checkerRaster(2, 2)
	opts := EncodeOptions{
		OutputColorType: ctTrueColorA,
		InputColorType:  ctPaletted,
		BitDepth:        8,
		FilterType:      FilterNone,
	}
	_, err := Encode(r, opts)
	assertKind(t, err, UnsupportedOption)
}
