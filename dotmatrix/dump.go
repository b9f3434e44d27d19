// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dotmatrix

import "strings"

// DumpBuffer renders the frame buffer as text, one line per row. Lit LEDs
// are drawn as "X", unit boundaries with "+".
func (d *Dev) DumpBuffer() string {
	return d.buffer.String()
}

func (f *Frame) String() string {
	var b strings.Builder
	for y := range Height {
		if y == unitSize {
			b.WriteString(strings.Repeat("+ ", Width+1))
			b.WriteString("\n")
		}
		for x := range Width {
			if x == unitSize {
				b.WriteString("+ ")
			}
			if f.Pixel(x, y) {
				b.WriteString("X ")
			} else {
				b.WriteString(". ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
