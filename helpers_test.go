package pngx

import (
	"bytes"
	"compress/zlib" // deliberately the standard library, not our own encoder, to keep fixtures independent of the code under test
	"encoding/binary"
	"testing"
)

// testChunk is a raw chunk to splice into a hand-built fixture.
type testChunk struct {
	typ  string
	data []byte
}

// writeChunkFixture appends one chunk to buf, computing its CRC with this
// package's own crc32Checksum. That is deliberate, not circular: crc.go is
// verified against known test vectors in crc_test.go, so reusing it here
// means a fixture is byte-for-byte what a compliant encoder would produce.
func writeChunkFixture(buf *bytes.Buffer, ctype string, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf.Write(lenBuf[:])
	buf.WriteString(ctype)
	buf.Write(data)
	sum := crc32Checksum(append([]byte(ctype), data...))
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], sum)
	buf.Write(crcBuf[:])
}

func ihdrBody(width, height, depth, colorType, interlace int) []byte {
	var b [13]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(width))
	binary.BigEndian.PutUint32(b[4:8], uint32(height))
	b[8] = byte(depth)
	b[9] = byte(colorType)
	b[10] = 0
	b[11] = 0
	b[12] = byte(interlace)
	return b[:]
}

// buildFixture assembles a full PNG byte stream: signature, IHDR, any extra
// chunks (PLTE/tRNS/gAMA, already ordered by the caller), one IDAT holding
// the deflated raw (already filter-tagged) scanlines, and IEND.
func buildFixture(t *testing.T, width, height, depth, colorType, interlace int, extra []testChunk, rawScanlines []byte) []byte {
	t.Helper()

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(rawScanlines); err != nil {
		t.Fatalf("deflating fixture: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing fixture deflate stream: %v", err)
	}

	var buf bytes.Buffer
	buf.WriteString(pngHeader)
	writeChunkFixture(&buf, chunkIHDR, ihdrBody(width, height, depth, colorType, interlace))
	for _, c := range extra {
		writeChunkFixture(&buf, c.typ, c.data)
	}
	writeChunkFixture(&buf, chunkIDAT, compressed.Bytes())
	writeChunkFixture(&buf, chunkIEND, nil)
	return buf.Bytes()
}

// noneFilterRows prepends a filter-type-0 byte to each of the given
// already-packed scanlines and concatenates them.
func noneFilterRows(rows [][]byte) []byte {
	var out bytes.Buffer
	for _, row := range rows {
		out.WriteByte(ftNone)
		out.Write(row)
	}
	return out.Bytes()
}

// buildInterlacedRGBA builds a depth-8 truecolor-with-alpha PNG whose pixel
// at (x, y) is pixelAt(x, y), interlaced via Adam7. It exercises the same
// pass geometry (adam7PassSize/adam7PixelPos) that bitmap.go uses to
// reassemble the image, so a round trip through Decode also indirectly
// checks that geometry is self-consistent.
func buildInterlacedRGBA(t *testing.T, width, height int, pixelAt func(x, y int) RGBAQuad) []byte {
	t.Helper()
	var rows [][]byte
	for pass := 1; pass <= 7; pass++ {
		pw, ph := adam7PassSize(pass, width, height)
		if pw == 0 || ph == 0 {
			continue
		}
		for yip := 0; yip < ph; yip++ {
			row := make([]byte, pw*4)
			for xip := 0; xip < pw; xip++ {
				ax, ay := adam7PixelPos(pass, xip, yip)
				q := pixelAt(ax, ay)
				row[xip*4+0] = q.R
				row[xip*4+1] = q.G
				row[xip*4+2] = q.B
				row[xip*4+3] = q.A
			}
			rows = append(rows, row)
		}
	}
	raw := noneFilterRows(rows)
	return buildFixture(t, width, height, 8, ctTrueColorA, 1, nil, raw)
}
