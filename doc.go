// Package pngx implements a PNG image decoder and encoder.
//
// It supports the PNG-1.2 color types (grayscale, RGB, palette,
// grayscale-with-alpha, RGBA), bit depths 1, 2, 4, 8, and 16, Adam7
// interlacing, all five scanline filters, simple transparency via tRNS,
// and gAMA. Decoding always produces 8-bit RGBA; encoding always produces
// 8-bit, non-interlaced output. Sixteen-bit encoder output, animated PNG,
// ICC profiles, text/time chunks, and color management beyond the gAMA
// scalar are out of scope.
package pngx
