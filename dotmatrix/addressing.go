// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dotmatrix

import "github.com/GermanBionicSystems/ledmatrix/max7219"

// Geometry of the matrix: a 2x2 arrangement of 8x8 units.
const (
	Width  = 16
	Height = 16
	Chips  = 4

	unitSize = 8
	unitsX   = Width / unitSize
)

// cell locates one LED inside the chain.
type cell struct {
	chip    int
	digit   int
	segment int
}

// toCell maps a pixel to its chip, digit register and segment bit. Chips
// are numbered left to right then top to bottom, digit registers are rows
// and the leftmost column of a unit is the DP segment (bit 7).
//
// Coordinates are not range checked.
func toCell(x, y int) cell {
	return cell{
		chip:    x/unitSize + unitsX*(y/unitSize),
		digit:   y % unitSize,
		segment: unitSize - 1 - x%unitSize,
	}
}

// fromCell is the inverse of toCell.
func fromCell(c cell) (int, int) {
	x := (c.chip%unitsX)*unitSize + unitSize - 1 - c.segment
	y := (c.chip/unitsX)*unitSize + c.digit
	return x, y
}

// Frame is the content of the four chips' digit registers, indexed by
// logical chip then digit.
type Frame [Chips][max7219.Digits]byte

// Pixel reports whether the LED at (x, y) is on in f.
func (f *Frame) Pixel(x, y int) bool {
	c := toCell(x, y)
	return f[c.chip][c.digit]&(1<<c.segment) != 0
}

func (f *Frame) set(x, y int, on bool) {
	c := toCell(x, y)
	if on {
		f[c.chip][c.digit] |= 1 << c.segment
	} else {
		f[c.chip][c.digit] &^= 1 << c.segment
	}
}
