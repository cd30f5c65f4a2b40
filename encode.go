package pngx

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Encoder is the encode façade, mirroring the API shape
// fumin-png/writer_test.go exercises (NewEncoder(BestSpeed).Encode(w, img))
// even though the writer source itself wasn't part of the retrieved
// slice. The teacher's single compression-level knob is generalized here
// to the full EncodeOptions spec.md §3 describes.
type Encoder struct {
	opts EncodeOptions
}

// NewEncoder returns an Encoder using default output settings (truecolor
// with alpha, adaptive filtering) at the given compression level.
func NewEncoder(level CompressionLevel) *Encoder {
	opts := DefaultEncodeOptions()
	opts.Level = level
	return &Encoder{opts: opts}
}

// NewEncoderWithOptions returns an Encoder configured exactly by opts.
func NewEncoderWithOptions(opts EncodeOptions) *Encoder {
	return &Encoder{opts: opts}
}

// Encode writes r to w as a complete PNG stream.
func (e *Encoder) Encode(w io.Writer, r *Raster) error {
	if err := validateEncodeOptions(e.opts); err != nil {
		return err
	}

	packed, err := packPixels(r, e.opts)
	if err != nil {
		return err
	}

	bpp := bppTable[e.opts.OutputColorType]
	filtered := applyFilters(packed, r.Width, r.Height, bpp, e.opts.BitDepth, e.opts.FilterType)

	compressed, err := deflate(filtered, e.opts.Level, e.opts.Strategy)
	if err != nil {
		return newErr(CompressionFailed, "%v", err)
	}

	if _, err := io.WriteString(w, pngHeader); err != nil {
		return err
	}
	if err := writeIHDR(w, r.Width, r.Height, e.opts.OutputColorType, e.opts.BitDepth); err != nil {
		return err
	}
	if e.opts.Gamma != 0 {
		if err := writeGAMA(w, e.opts.Gamma); err != nil {
			return err
		}
	}
	if err := writeIDATs(w, compressed, e.opts.ChunkSize); err != nil {
		return err
	}
	if err := writeChunk(w, chunkIEND, nil); err != nil {
		return err
	}
	return nil
}

// Encode is the package-level one-shot form: encode(raster, options) ->
// bytes, per spec.md §6.
func Encode(r *Raster, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoderWithOptions(opts).Encode(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func validateEncodeOptions(opts EncodeOptions) error {
	switch opts.OutputColorType {
	case ctGray, ctTrueColor, ctGrayAlpha, ctTrueColorA:
	case ctPaletted:
		return newErr(UnsupportedOption, "palette output is not supported")
	default:
		return newErr(UnsupportedOption, "unknown output color type %d", opts.OutputColorType)
	}
	// InputColorType is a caller-asserted hint (options.go), not derived
	// from the Raster, checked against the same legal set as
	// OutputColorType so an out-of-range value fails fast instead of
	// reaching packPixels' identity-fast-path check.
	switch opts.InputColorType {
	case ctGray, ctTrueColor, ctGrayAlpha, ctTrueColorA:
	case ctPaletted:
		return newErr(UnsupportedOption, "palette input is not supported")
	default:
		return newErr(UnsupportedOption, "unknown input color type %d", opts.InputColorType)
	}
	// spec.md §1's non-goal ("encoder output is 8-bit depth") applies
	// across every output color type; see DESIGN.md's Open Question
	// resolution for the 16-bit palette/grayscale-alpha ambiguity in the
	// original source.
	if opts.BitDepth != 8 {
		return newErr(UnsupportedOption, "encoder output bit depth must be 8, got %d", opts.BitDepth)
	}
	if opts.FilterType < FilterAdaptive || int(opts.FilterType) >= nFilter {
		return newErr(UnsupportedOption, "unknown filter type %d", opts.FilterType)
	}
	if opts.Level < -1 || opts.Level > 9 {
		return newErr(UnsupportedOption, "unsupported compression level %d", opts.Level)
	}
	if opts.Strategy != 0 && opts.Strategy != flate.HuffmanOnly {
		return newErr(UnsupportedOption, "unsupported strategy %d", opts.Strategy)
	}
	return nil
}

// deflate compresses buf with the klauspost/compress zlib collaborator,
// wired in per SPEC_FULL.md's DOMAIN STACK section in place of
// fumin-png's stdlib compress/zlib. klauspost/compress/zlib mirrors the
// standard library's NewWriterLevel signature exactly, so the swap is a
// one-line import change plus the level/strategy plumbing below.
//
// compress/flate's Writer takes a single level-or-strategy argument, not
// two independent knobs: flate.HuffmanOnly (-2) is itself one of the
// values NewWriterLevel accepts in place of a numeric level, the same way
// BestSpeed or BestCompression are. So a non-default Strategy is passed
// straight through as that argument, per SPEC_FULL.md's DOMAIN STACK
// section, and Level is what yields to it, not the other way around —
// there is no level left to combine it with once a strategy is chosen.
func deflate(buf []byte, level CompressionLevel, strategy int) ([]byte, error) {
	effectiveLevel := int(level)
	if strategy != 0 {
		effectiveLevel = strategy
	}
	var out bytes.Buffer
	zw, err := zlib.NewWriterLevel(&out, effectiveLevel)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(buf); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeIHDR(w io.Writer, width, height, colorType, depth int) error {
	var body [13]byte
	binary.BigEndian.PutUint32(body[0:4], uint32(width))
	binary.BigEndian.PutUint32(body[4:8], uint32(height))
	body[8] = byte(depth)
	body[9] = byte(colorType)
	body[10] = 0 // compression method
	body[11] = 0 // filter method
	body[12] = 0 // interlace method: encoder output is always non-interlaced
	return writeChunk(w, chunkIHDR, body[:])
}

func writeGAMA(w io.Writer, gamma float64) error {
	var body [4]byte
	binary.BigEndian.PutUint32(body[:], uint32(gamma*gammaScale))
	return writeChunk(w, chunkGAMA, body[:])
}

func writeIDATs(w io.Writer, compressed []byte, chunkSize int) error {
	if chunkSize <= 0 {
		return writeChunk(w, chunkIDAT, compressed)
	}
	for off := 0; off < len(compressed); off += chunkSize {
		end := off + chunkSize
		if end > len(compressed) {
			end = len(compressed)
		}
		if err := writeChunk(w, chunkIDAT, compressed[off:end]); err != nil {
			return err
		}
	}
	return nil
}

// writeChunk writes one length-prefixed, CRC-suffixed chunk. The CRC folds
// in the type bytes and the body via the same crcWriter used everywhere
// else in this codec, fanned out with io.MultiWriter so the body is
// written to the output and hashed in a single pass.
func writeChunk(w io.Writer, ctype string, data []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}

	cw := newCRCWriter()
	mw := io.MultiWriter(w, cw)
	if _, err := mw.Write([]byte(ctype)); err != nil {
		return err
	}
	if len(data) > 0 {
		if _, err := mw.Write(data); err != nil {
			return err
		}
	}

	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], cw.Sum32())
	_, err := w.Write(crcBuf[:])
	return err
}
