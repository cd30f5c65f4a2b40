package pngx

import "testing"

func TestRescaleSampleIdentityAt8Bit(t *testing.T) {
	for v := uint16(0); v < 256; v++ {
		if got := rescaleSample(v, 255); got != uint8(v) {
			t.Fatalf("rescaleSample(%d, 255) = %d, want %d", v, got, v)
		}
	}
}

func TestRescaleSampleEndpoints(t *testing.T) {
	cases := []struct {
		v, maxIn uint16
		want     uint8
	}{
		{0, 1, 0},
		{1, 1, 255},
		{0, 15, 0},
		{15, 15, 255},
		{0, 65535, 0},
		{65535, 65535, 255},
	}
	for _, c := range cases {
		if got := rescaleSample(c.v, c.maxIn); got != c.want {
			t.Fatalf("rescaleSample(%d, %d) = %d, want %d", c.v, c.maxIn, got, c.want)
		}
	}
}

func TestAdjustGammaZeroIsNoOp(t *testing.T) {
	r := NewRaster(2, 2)
	for i := range r.Pix {
		r.Pix[i] = 128
	}
	before := append([]byte{}, r.Pix...)
	if err := r.adjustGamma(0); err != nil {
		t.Fatalf("adjustGamma(0): %v", err)
	}
	for i := range r.Pix {
		if r.Pix[i] != before[i] {
			t.Fatalf("gamma 0 modified pixel byte %d: %d -> %d", i, before[i], r.Pix[i])
		}
	}
}

func TestAdjustGammaLeavesAlphaAlone(t *testing.T) {
	r := NewRaster(1, 1)
	r.Pix[0], r.Pix[1], r.Pix[2], r.Pix[3] = 100, 100, 100, 200
	if err := r.adjustGamma(1.0); err != nil {
		t.Fatalf("adjustGamma: %v", err)
	}
	if r.Pix[3] != 200 {
		t.Fatalf("alpha channel changed: got %d, want 200", r.Pix[3])
	}
}

func TestAdjustGammaRejectsNegativeAndNonFinite(t *testing.T) {
	r := NewRaster(1, 1)
	if err := r.adjustGamma(-1); err == nil {
		t.Fatalf("adjustGamma(-1): got nil error, want UnsupportedOption")
	} else {
		assertKind(t, err, UnsupportedOption)
	}
}
