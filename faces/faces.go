// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package faces draws the clock, calendar and thermometer screens of a
// 16x16 dotmatrix.
//
// Faces only modify the frame buffer. They overwrite the pixels they own and
// leave the others alone, so the caller clears the canvas when switching
// from one face to another and flushes after drawing.
package faces

import (
	"time"

	"periph.io/x/conn/v3/physic"
)

// Canvas is the subset of *dotmatrix.Dev the faces draw on.
type Canvas interface {
	SetPixel(x, y int, on bool)
	SetDigit(x, y, digit int)
}

// twoDigits draws n%100 with two glyphs at (x0, y) and (x1, y).
func twoDigits(c Canvas, x0, x1, y, n int) {
	n %= 100
	c.SetDigit(x0, y, n/10)
	c.SetDigit(x1, y, n%10)
}

// Clock draws hours and minutes as digits and the seconds as a ring running
// clockwise along the border from the top left corner.
func Clock(c Canvas, t time.Time) {
	twoDigits(c, 2, 6, 2, t.Hour())
	twoDigits(c, 7, 11, 9, t.Minute())
	secs := t.Second()
	for i := range 60 {
		on := i <= secs
		switch {
		case i <= 15:
			c.SetPixel(i, 0, on)
		case i <= 30:
			c.SetPixel(15, i-15, on)
		case i <= 45:
			c.SetPixel(45-i, 15, on)
		default:
			c.SetPixel(0, 60-i, on)
		}
	}
	// Quarter marks.
	c.SetPixel(15, 0, true)
	c.SetPixel(15, 15, true)
	c.SetPixel(0, 15, true)
}

// BinaryClock draws hours, minutes and seconds as three columns of 2x2
// bits, least significant at the bottom.
func BinaryClock(c Canvas, t time.Time) {
	columns := [...]struct{ x, v int }{{2, t.Hour()}, {7, t.Minute()}, {12, t.Second()}}
	for _, col := range columns {
		for bit := 0; bit <= 6; bit++ {
			on := col.v&(1<<bit) != 0
			y := 14 - 2*bit
			c.SetPixel(col.x, y, on)
			c.SetPixel(col.x+1, y, on)
			c.SetPixel(col.x, y+1, on)
			c.SetPixel(col.x+1, y+1, on)
		}
	}
}

// DateOrder selects whether the day or the month comes first.
type DateOrder int

const (
	DMY DateOrder = iota
	MDY
)

func (o DateOrder) String() string {
	if o == MDY {
		return "MDY"
	}
	return "DMY"
}

// Date draws the day of month and month on the top row, a bar with one
// step per day of the week (Monday is 1) in the middle and the year at
// the bottom.
func Date(c Canvas, t time.Time, order DateOrder) {
	day, month := t.Day(), int(t.Month())
	if order == MDY {
		day, month = month, day
	}
	twoDigits(c, 0, 4, 0, day)
	twoDigits(c, 9, 13, 0, month)

	dow := int(t.Weekday())
	if dow == 0 {
		dow = 7
	}
	for i := 1; i <= 7; i++ {
		c.SetPixel(2*i-1, 7, i <= dow)
		c.SetPixel(2*i-1, 8, i <= dow)
	}

	year := t.Year()
	twoDigits(c, 0, 4, 11, year/100)
	twoDigits(c, 9, 13, 11, year)
}

// Temperature draws t in degrees Celsius with one decimal, followed by
// "°C". Only the magnitude of the two last integer digits fits.
func Temperature(c Canvas, t physic.Temperature) {
	tenths := int64(t-physic.ZeroCelsius) / int64(100*physic.MilliKelvin)
	if tenths < 0 {
		tenths = -tenths
	}
	twoDigits(c, 1, 5, 10, int(tenths/10))
	c.SetPixel(9, 14, true)
	c.SetDigit(11, 10, int(tenths%10))

	// Degree sign.
	c.SetPixel(10, 1, true)
	// C.
	for x := 12; x <= 14; x++ {
		c.SetPixel(x, 1, true)
		c.SetPixel(x, 5, true)
	}
	for y := 2; y <= 4; y++ {
		c.SetPixel(12, y, true)
	}
}
