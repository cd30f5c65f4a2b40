package pngx

import (
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Decoder is the one-shot decode façade: parse the chunk stream, inflate
// the pixel data, unfilter and expand it, and normalize to 8-bit RGBA.
// Compare fumin-png/reader.go's Decoder, which wraps the same three
// concerns (chunk state, zlib, per-row filtering) but hardcodes a single
// color type; this generalizes each stage instead of special-casing one.
type Decoder struct {
	parser *chunkParser
	meta   *Metadata

	// SkippedAncillary lists the 4-byte type codes of ancillary chunks
	// this decoder skipped, in encounter order. Supplemental to spec.md
	// (see SPEC_FULL.md), costs nothing beyond bookkeeping already
	// required to skip a chunk.
	SkippedAncillary []string
}

// Decode performs a complete one-shot decode of a PNG byte stream into a
// normalized Raster.
func Decode(r io.Reader) (*Raster, error) {
	d, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	return d.decodeRest()
}

// newDecoder reads the signature and every chunk up to (and including) the
// first IDAT header, leaving the parser positioned to stream pixel data.
func newDecoder(r io.Reader) (*Decoder, error) {
	p := newChunkParser(r)
	if err := p.checkHeader(); err != nil {
		return nil, err
	}
	meta, err := p.parseUntilIDAT()
	if err != nil {
		return nil, err
	}
	return &Decoder{parser: p, meta: meta}, nil
}

// decodeRest inflates and processes the pixel stream and finalizes chunk
// parsing. It is split out from Decode so the streaming façade in
// stream.go can share it against a pipe-fed reader.
func (d *Decoder) decodeRest() (*Raster, error) {
	zr, err := zlib.NewReader(d.parser)
	if err != nil {
		return nil, wrapDecompressionErr(err)
	}

	plane, err := bitmap(zr, d.meta)
	if err != nil {
		return nil, wrapDecompressionErr(err)
	}

	raster, err := normalize(plane, d.meta)
	if err != nil {
		return nil, err
	}

	if err := d.parser.finish(); err != nil {
		return nil, err
	}
	d.SkippedAncillary = d.parser.skippedAncillary

	if d.meta.Interlace == 0 {
		if err := d.parser.checkNoTrailingData(); err != nil {
			return nil, err
		}
	}

	return raster, nil
}

// wrapDecompressionErr classifies an error surfaced while pulling bytes
// through zlib: our own typed errors (chunk truncation, bad filter type,
// ...) pass through unchanged; anything else is a genuine failure of the
// deflate collaborator and is reported as DecompressionFailed, per
// spec.md §7.
func wrapDecompressionErr(err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return newErr(DecompressionFailed, "%v", err)
}
