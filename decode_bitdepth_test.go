package pngx

import (
	"bytes"
	"testing"
)

// TestOneBitAllBlack is spec.md §8 scenario 4: a 1-bit-depth all-black
// 1024x1024 grayscale image decodes to opaque black everywhere.
func TestOneBitAllBlack(t *testing.T) {
	const size = 1024
	byteWidth := rowByteWidth(size, bppTable[ctGray], 1)
	rows := make([][]byte, size)
	for y := range rows {
		rows[y] = make([]byte, byteWidth) // all zero bits: gray sample 0
	}
	png := buildFixture(t, size, size, 1, ctGray, 0, nil, noneFilterRows(rows))

	r, err := Decode(bytes.NewReader(png))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Width != size || r.Height != size {
		t.Fatalf("got %dx%d, want %dx%d", r.Width, r.Height, size, size)
	}
	for y := 0; y < size; y += 97 { // sample, not exhaustive, for speed
		for x := 0; x < size; x += 97 {
			i := r.PixOffset(x, y)
			px := r.Pix[i : i+4]
			if px[0] != 0 || px[1] != 0 || px[2] != 0 || px[3] != 0xFF {
				t.Fatalf("pixel (%d,%d) = %v, want opaque black", x, y, px)
			}
		}
	}
}

// TestGrayscaleXorPattern is spec.md §8 scenario 5: a 16x16 8-bit grayscale
// image with g(x,y)=x^y decodes so pixel (x,y) == (g,g,g,255).
func TestGrayscaleXorPattern(t *testing.T) {
	const size = 16
	rows := make([][]byte, size)
	for y := 0; y < size; y++ {
		row := make([]byte, size)
		for x := 0; x < size; x++ {
			row[x] = byte(x ^ y)
		}
		rows[y] = row
	}
	png := buildFixture(t, size, size, 8, ctGray, 0, nil, noneFilterRows(rows))

	r, err := Decode(bytes.NewReader(png))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			g := byte(x ^ y)
			i := r.PixOffset(x, y)
			px := r.Pix[i : i+4]
			if px[0] != g || px[1] != g || px[2] != g || px[3] != 0xFF {
				t.Fatalf("pixel (%d,%d) = %v, want (%d,%d,%d,255)", x, y, px, g, g, g)
			}
		}
	}
}

// TestDecodeSixteenBitTrueColorAlpha is SPEC_FULL.md's supplemented "16-bit
// input decode" feature exercised end to end: Decode() on a depth-16
// truecolor-with-alpha fixture, checked against the exact values
// rescaleSample computes for each 16-bit sample.
func TestDecodeSixteenBitTrueColorAlpha(t *testing.T) {
	// Two pixels, hand-picked to cover the rounding boundary rescaleSample
	// hits at maxIn=65535: v=1 rounds down to 0, v=32767 rounds down to
	// 127, v=32768 rounds up to 128, and v=0/v=65535 are the identity
	// endpoints.
	row := []byte{
		0x80, 0x00, 0xFF, 0xFF, 0x00, 0x00, 0xFF, 0xFF, // R=32768 G=65535 B=0 A=65535
		0x00, 0x00, 0x00, 0x01, 0x7F, 0xFF, 0x00, 0x00, // R=0 G=1 B=32767 A=0
	}
	png := buildFixture(t, 2, 1, 16, ctTrueColorA, 0, nil, noneFilterRows([][]byte{row}))

	r, err := Decode(bytes.NewReader(png))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Width != 2 || r.Height != 1 {
		t.Fatalf("got %dx%d, want 2x1", r.Width, r.Height)
	}

	want := [][4]byte{
		{128, 255, 0, 255},
		{0, 0, 127, 0},
	}
	for x, w := range want {
		i := r.PixOffset(x, 0)
		got := [4]byte{r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3]}
		if got != w {
			t.Fatalf("pixel %d = %v, want %v", x, got, w)
		}
	}
}
