// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dotmatrix

import "image"

// Size of the cell a digit is drawn in.
const (
	GlyphWidth  = 3
	GlyphHeight = 5
)

// sevenSegDigits uses the GFEDCBA notation: bit 0 is segment A.
var sevenSegDigits = [10]byte{0x3F, 0x06, 0x5B, 0x4F, 0x66, 0x6D, 0x7D, 0x07, 0x7F, 0x6F}

// segmentPixels lists, for segments A to G, the pixels lit inside the 3x5
// cell. Segments are three pixels long and share their end pixels.
var segmentPixels = [7][3]image.Point{
	{{0, 0}, {1, 0}, {2, 0}}, // A
	{{2, 0}, {2, 1}, {2, 2}}, // B
	{{2, 2}, {2, 3}, {2, 4}}, // C
	{{0, 4}, {1, 4}, {2, 4}}, // D
	{{0, 2}, {0, 3}, {0, 4}}, // E
	{{0, 0}, {0, 1}, {0, 2}}, // F
	{{0, 2}, {1, 2}, {2, 2}}, // G
}

// glyphPixels calls fn for every pixel offset lit by digit. Offsets may be
// reported more than once.
func glyphPixels(digit int, fn func(p image.Point)) {
	pattern := sevenSegDigits[digit]
	for seg, pixels := range segmentPixels {
		if pattern&(1<<seg) == 0 {
			continue
		}
		for _, p := range pixels {
			fn(p)
		}
	}
}
