package pngx

import (
	"encoding/binary"
	"io"
)

// Chunk parser stage, in the order spec.md §4.8 requires: IHDR must be
// first, PLTE (if present) precedes IDAT and any tRNS for palette images,
// and IEND is terminal.
const (
	stgStart = iota
	stgSeenIHDR
	stgSeenPLTE
	stgSeenIDAT
	stgSeenIEND
)

// chunkParser drives a raw byte stream through the PNG chunk state machine.
// It generalizes fumin-png's NewDecoder loop (which only recognizes IHDR,
// IDAT, and IEND, skipping everything else unconditionally) into the full
// dispatch spec.md §4.8 requires: PLTE, tRNS, and gAMA all become
// semantically parsed rather than skipped, and unknown chunks are routed
// through the critical/ancillary policy instead of always being ignored.
type chunkParser struct {
	r   io.Reader
	crc *crcWriter

	meta  Metadata
	stage int

	idatRemaining uint32
	sawTRNS       bool
	sawGAMA       bool

	skippedAncillary []string

	tmp [13]byte
}

func newChunkParser(r io.Reader) *chunkParser {
	return &chunkParser{r: r, crc: newCRCWriter()}
}

// checkHeader verifies the 8-byte PNG signature, mirroring
// fumin-png/reader.go's checkHeader.
func (p *chunkParser) checkHeader() error {
	var sig [8]byte
	if _, err := io.ReadFull(p.r, sig[:]); err != nil {
		return truncatedOr(err, "reading PNG signature")
	}
	if string(sig[:]) != pngHeader {
		return newErr(InvalidSignature, "bad PNG signature")
	}
	return nil
}

// readChunkHeader reads the 4-byte big-endian length and 4-byte type of the
// next chunk, resets the running CRC, and folds the type bytes into it.
func (p *chunkParser) readChunkHeader() (length uint32, ctype string, err error) {
	var hdr [8]byte
	if _, err = io.ReadFull(p.r, hdr[:]); err != nil {
		return 0, "", truncatedOr(err, "reading chunk header")
	}
	length = binary.BigEndian.Uint32(hdr[:4])
	typeBytes := hdr[4:8]
	for _, b := range typeBytes {
		if !isChunkTypeByte(b) {
			return 0, "", newErr(InvalidChunkType, "non-ASCII-letter chunk type byte %#x", b)
		}
	}
	ctype = string(typeBytes)
	p.crc.Reset()
	p.crc.Write(typeBytes)
	return length, ctype, nil
}

func isChunkTypeByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// isCritical reports whether a chunk type is critical, per bit 5 of its
// first byte (uppercase => critical, per the PNG spec).
func isCritical(ctype string) bool {
	return ctype[0] >= 'A' && ctype[0] <= 'Z'
}

// verifyChecksum reads the trailing 4-byte CRC and compares it against the
// running checksum, mirroring fumin-png/reader.go's verifyChecksum.
func (p *chunkParser) verifyChecksum() error {
	var tail [4]byte
	if _, err := io.ReadFull(p.r, tail[:]); err != nil {
		return truncatedOr(err, "reading chunk CRC")
	}
	if binary.BigEndian.Uint32(tail[:]) != p.crc.Sum32() {
		return newErr(CRCError, "chunk CRC mismatch")
	}
	return nil
}

// skipChunk discards a chunk's body (folding it into the CRC) and verifies
// its checksum. Used for ancillary chunks this codec has no semantic use
// for, mirroring fumin-png's default case.
func (p *chunkParser) skipChunk(length uint32) error {
	if length > 0x7fffffff {
		return newErr(Truncated, "chunk length %d too large", length)
	}
	var buf [4096]byte
	remaining := length
	for remaining > 0 {
		n, err := io.ReadFull(p.r, buf[:min(len(buf), int(remaining))])
		if err != nil {
			return truncatedOr(err, "skipping chunk body")
		}
		p.crc.Write(buf[:n])
		remaining -= uint32(n)
	}
	return p.verifyChecksum()
}

// checkNoTrailingData reports ExtraData if the underlying stream has bytes
// left after IEND. Callers only invoke this for non-interlaced images, per
// spec.md §7's "non-interlaced expected-size path only" qualifier.
func (p *chunkParser) checkNoTrailingData() error {
	var b [1]byte
	n, err := p.r.Read(b[:])
	if n > 0 {
		return newErr(ExtraData, "bytes remain after IEND")
	}
	if err != nil && err != io.EOF {
		return truncatedOr(err, "checking for trailing data")
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// parseIHDR parses the 13-byte IHDR body, generalized from
// fumin-png/reader.go's single-color-type parseIHDR into the full depth
// and color-type table spec.md §4.8/§3 requires.
func (p *chunkParser) parseIHDR(length uint32) error {
	if length != 13 {
		return newErr(BadIHDR, "IHDR length %d, want 13", length)
	}
	if _, err := io.ReadFull(p.r, p.tmp[:13]); err != nil {
		return truncatedOr(err, "reading IHDR body")
	}
	p.crc.Write(p.tmp[:13])

	w := int32(binary.BigEndian.Uint32(p.tmp[0:4]))
	h := int32(binary.BigEndian.Uint32(p.tmp[4:8]))
	if w <= 0 || h <= 0 {
		return newErr(BadIHDR, "non-positive dimension %dx%d", w, h)
	}
	depth := int(p.tmp[8])
	colorType := int(p.tmp[9])
	compression := p.tmp[10]
	filterMethod := p.tmp[11]
	interlace := int(p.tmp[12])

	if !validDepths[depth] {
		return newErr(BadIHDR, "unsupported bit depth %d", depth)
	}
	if _, ok := bppTable[colorType]; !ok {
		return newErr(BadIHDR, "unsupported color type %d", colorType)
	}
	if !depthAllowedForColorType(depth, colorType) {
		return newErr(BadIHDR, "bit depth %d not valid for color type %d", depth, colorType)
	}
	if compression != 0 {
		return newErr(BadIHDR, "unsupported compression method %d", compression)
	}
	if filterMethod != 0 {
		return newErr(BadIHDR, "unsupported filter method %d", filterMethod)
	}
	if interlace != 0 && interlace != 1 {
		return newErr(BadIHDR, "unsupported interlace method %d", interlace)
	}

	p.meta.Width = int(w)
	p.meta.Height = int(h)
	p.meta.Depth = depth
	p.meta.ColorType = colorType
	p.meta.Interlace = interlace
	deriveColorFlags(&p.meta)

	return p.verifyChecksum()
}

// depthAllowedForColorType enforces the PNG-mandated depth restrictions per
// color type: palette images never exceed 8 bits, and grayscale-alpha/
// truecolor(-alpha) never go below 8.
func depthAllowedForColorType(depth, colorType int) bool {
	switch colorType {
	case ctGray:
		return true // 1,2,4,8,16 all valid
	case ctTrueColor, ctGrayAlpha, ctTrueColorA:
		return depth == 8 || depth == 16
	case ctPaletted:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	default:
		return false
	}
}

// parsePLTE parses a palette chunk: length must be a multiple of 3, each
// entry stored initially opaque.
func (p *chunkParser) parsePLTE(length uint32) error {
	if length == 0 || length%3 != 0 || length > 256*3 {
		return newErr(BadIHDR, "bad PLTE length %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return truncatedOr(err, "reading PLTE body")
	}
	p.crc.Write(buf)

	pal := make(Palette, length/3)
	for i := range pal {
		pal[i] = RGBAQuad{R: buf[i*3], G: buf[i*3+1], B: buf[i*3+2], A: 255}
	}
	p.meta.Palette = pal
	return p.verifyChecksum()
}

// parseGAMA parses the 4-byte gAMA value into the semantic gamma
// (storedValue / gammaScale).
func (p *chunkParser) parseGAMA(length uint32) error {
	if length != 4 {
		return newErr(BadIHDR, "bad gAMA length %d", length)
	}
	var buf [4]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return truncatedOr(err, "reading gAMA body")
	}
	p.crc.Write(buf[:])
	v := binary.BigEndian.Uint32(buf[:])
	p.meta.Gamma = float64(v) / gammaScale
	p.sawGAMA = true
	return p.verifyChecksum()
}

// parseTRNS parses simple transparency: per-palette-entry alpha for
// paletted images, or a keyed transparent sample/triple for grayscale and
// truecolor images.
func (p *chunkParser) parseTRNS(length uint32) error {
	buf := make([]byte, length)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return truncatedOr(err, "reading tRNS body")
	}
	p.crc.Write(buf)

	switch p.meta.ColorType {
	case ctPaletted:
		if int(length) > len(p.meta.Palette) {
			return newErr(BadIHDR, "tRNS length %d exceeds palette size %d", length, len(p.meta.Palette))
		}
		for i, a := range buf {
			p.meta.Palette[i].A = a
		}
	case ctGray:
		if length != 2 {
			return newErr(BadIHDR, "bad tRNS length %d for grayscale", length)
		}
		p.meta.Trans.Present = true
		p.meta.Trans.Gray = binary.BigEndian.Uint16(buf)
	case ctTrueColor:
		if length != 6 {
			return newErr(BadIHDR, "bad tRNS length %d for truecolor", length)
		}
		p.meta.Trans.Present = true
		p.meta.Trans.R = binary.BigEndian.Uint16(buf[0:2])
		p.meta.Trans.G = binary.BigEndian.Uint16(buf[2:4])
		p.meta.Trans.B = binary.BigEndian.Uint16(buf[4:6])
	default:
		return newErr(ChunkOrder, "tRNS not valid for color type %d", p.meta.ColorType)
	}
	p.sawTRNS = true
	return p.verifyChecksum()
}

// parseUntilIDAT dispatches chunks in order until the first IDAT is
// reached, mirroring fumin-png's "for header != IDAT" loop but with the
// full chunk set from spec.md §4.8 made semantic rather than skipped.
func (p *chunkParser) parseUntilIDAT() (*Metadata, error) {
	for {
		length, ctype, err := p.readChunkHeader()
		if err != nil {
			return nil, err
		}

		switch ctype {
		case chunkIHDR:
			if p.stage != stgStart {
				return nil, newErr(ChunkOrder, "IHDR out of order")
			}
			if err := p.parseIHDR(length); err != nil {
				return nil, err
			}
			p.stage = stgSeenIHDR

		case chunkPLTE:
			if p.stage != stgSeenIHDR {
				return nil, newErr(ChunkOrder, "PLTE out of order")
			}
			// PLTE is meaningful for palette images and merely a
			// suggested-palette hint for truecolor ones; we parse it
			// either way and only consult it when ColorType is paletted.
			if err := p.parsePLTE(length); err != nil {
				return nil, err
			}
			p.stage = stgSeenPLTE

		case chunkGAMA:
			if p.stage < stgSeenIHDR {
				return nil, newErr(ChunkOrder, "gAMA before IHDR")
			}
			if p.sawGAMA || p.stage >= stgSeenPLTE || p.stage == stgSeenIDAT {
				return nil, newErr(ChunkOrder, "gAMA out of order")
			}
			if err := p.parseGAMA(length); err != nil {
				return nil, err
			}

		case chunkTRNS:
			if p.stage < stgSeenIHDR {
				return nil, newErr(ChunkOrder, "tRNS before IHDR")
			}
			if p.meta.ColorType == ctPaletted && p.stage < stgSeenPLTE {
				return nil, newErr(ChunkOrder, "tRNS before PLTE for palette image")
			}
			if p.sawTRNS {
				return nil, newErr(ChunkOrder, "duplicate tRNS")
			}
			if err := p.parseTRNS(length); err != nil {
				return nil, err
			}

		case chunkIDAT:
			if p.stage < stgSeenIHDR {
				return nil, newErr(ChunkOrder, "IDAT before IHDR")
			}
			if p.meta.ColorType == ctPaletted && p.stage < stgSeenPLTE {
				return nil, newErr(ChunkOrder, "IDAT before PLTE for palette image")
			}
			p.idatRemaining = length
			p.stage = stgSeenIDAT
			return &p.meta, nil

		case chunkIEND:
			return nil, newErr(ChunkOrder, "IEND before any IDAT")

		default:
			if p.stage < stgSeenIHDR {
				return nil, newErr(ChunkOrder, "chunk %q before IHDR", ctype)
			}
			if isCritical(ctype) {
				return nil, newErr(UnsupportedCritical, "unsupported critical chunk %q", ctype)
			}
			if err := p.skipChunk(length); err != nil {
				return nil, err
			}
			p.skippedAncillary = append(p.skippedAncillary, ctype)
		}
	}
}

// Read presents one or more IDAT chunks as one continuous stream, exactly
// like fumin-png/reader.go's decoder.Read: it hides chunk headers/footers
// between consecutive IDATs from the caller (here, the zlib reader).
func (p *chunkParser) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	for p.idatRemaining == 0 {
		if err := p.verifyChecksum(); err != nil {
			return 0, err
		}
		length, ctype, err := p.readChunkHeader()
		if err != nil {
			return 0, err
		}
		if ctype != chunkIDAT {
			return 0, newErr(Truncated, "expected IDAT, got %q", ctype)
		}
		p.idatRemaining = length
	}
	n, err := p.r.Read(buf[:min(len(buf), int(p.idatRemaining))])
	p.crc.Write(buf[:n])
	p.idatRemaining -= uint32(n)
	return n, err
}

// finish drains whatever remains of the pixel data stream (some encoders
// leave declared-but-unused bytes in the final IDAT) and then walks the
// remaining chunks up to the terminal IEND: further IDAT chunks and
// ancillary chunks are skipped, and an unknown critical chunk is an error. spec.md §4.12 requires this exact tolerance:
// trailing junk within the pixel data itself is not an error.
func (p *chunkParser) finish() error {
	if p.stage == stgSeenIEND {
		return nil
	}
	if p.idatRemaining > 0 {
		if err := p.skipChunk(p.idatRemaining); err != nil {
			return err
		}
		p.idatRemaining = 0
	} else {
		if err := p.verifyChecksum(); err != nil {
			return err
		}
	}

	for {
		length, ctype, err := p.readChunkHeader()
		if err != nil {
			return err
		}
		switch ctype {
		case chunkIDAT:
			if err := p.skipChunk(length); err != nil {
				return err
			}
		case chunkIEND:
			if length != 0 {
				return newErr(BadIHDR, "bad IEND length %d", length)
			}
			if err := p.verifyChecksum(); err != nil {
				return err
			}
			p.stage = stgSeenIEND
			return nil
		default:
			if isCritical(ctype) {
				return newErr(UnsupportedCritical, "unsupported critical chunk %q", ctype)
			}
			if err := p.skipChunk(length); err != nil {
				return err
			}
			p.skippedAncillary = append(p.skippedAncillary, ctype)
		}
	}
}
