// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package emulator implements a max7219.Bus backed by four emulated MAX7219
// units wired as a 16x16 dotmatrix, optionally rendered to the terminal
// using ANSI color codes.
//
// Useful while you are waiting for your LED modules to come by mail.
package emulator

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/GermanBionicSystems/ledmatrix/dotmatrix"
	"github.com/GermanBionicSystems/ledmatrix/max7219"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
)

// Unit is the latched state of one emulated chip.
type Unit struct {
	Digits    [max7219.Digits]byte
	Decode    byte
	Intensity byte
	ScanLimit byte
	// Shutdown is true at power on, like the real chip.
	Shutdown bool
	Test     bool
}

// lit returns the value driving the LEDs of digit.
func (u *Unit) lit(digit int) byte {
	switch {
	case u.Test:
		return 0xff
	case u.Shutdown, digit > int(u.ScanLimit):
		return 0
	default:
		return u.Digits[digit]
	}
}

func (u *Unit) latch(w max7219.Word) {
	switch r := w.Register; {
	case r >= max7219.RegDigit0 && r <= max7219.RegDigit7:
		u.Digits[r-max7219.RegDigit0] = w.Data
	case r == max7219.RegDecodeMode:
		u.Decode = w.Data
	case r == max7219.RegIntensity:
		u.Intensity = w.Data & max7219.MaxIntensity
	case r == max7219.RegScanLimit:
		u.ScanLimit = w.Data & 7
	case r == max7219.RegShutdown:
		u.Shutdown = w.Data&1 == 0
	case r == max7219.RegDisplayTest:
		u.Test = w.Data&1 == 1
	}
}

// Opts represents the options available for the emulator.
type Opts struct {
	// Output receives a rendering of the matrix after each strobe. nil
	// disables rendering.
	Output  io.Writer
	Palette *ansi256.Palette

	_ struct{}
}

// Dev emulates the chips of a dotmatrix.
//
// Units are indexed by their position in the chain, 0 being the unit wired
// to the bus master. It is safe to inspect a Dev while another goroutine
// drives it.
type Dev struct {
	mu      sync.Mutex
	shift   [dotmatrix.Chips]max7219.Word
	units   [dotmatrix.Chips]Unit
	words   int
	strobes int

	w       io.Writer
	palette ansi256.Palette
	drawn   bool
	buf     bytes.Buffer
}

// New returns a Dev with all units powered on and in shutdown.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Dev{w: opts.Output, palette: *p}
	for ix := range d.units {
		d.units[ix].Shutdown = true
	}
	return d
}

// NewStdout returns a Dev that renders at the console.
//
// Permits to do local testing of animations.
func NewStdout(p *ansi256.Palette) *Dev {
	return New(&Opts{Output: colorable.NewColorableStdout(), Palette: p})
}

func (d *Dev) String() string {
	return "Emulator"
}

// TransferWord implements max7219.Bus.
//
// The word enters the unit wired to the master; every unit passes its
// previous word down the chain and the last one is lost.
func (d *Dev) TransferWord(register, data byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(d.shift[1:], d.shift[:len(d.shift)-1])
	d.shift[0] = max7219.Word{Register: register, Data: data}
	d.words++
	return nil
}

// Strobe implements max7219.Bus.
func (d *Dev) Strobe() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for ix := range d.units {
		d.units[ix].latch(d.shift[ix])
	}
	d.strobes++
	if d.w == nil {
		return nil
	}
	return d.render()
}

// Unit returns the state of the unit at position ix.
func (d *Dev) Unit(ix int) Unit {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.units[ix]
}

// Counts returns the number of words shifted and strobes received.
func (d *Dev) Counts() (words, strobes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.words, d.strobes
}

// Matrix returns what the LEDs currently show, accounting for shutdown,
// test mode and scan limit.
func (d *Dev) Matrix() dotmatrix.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.matrix()
}

func (d *Dev) matrix() dotmatrix.Frame {
	var f dotmatrix.Frame
	for ix := range d.units {
		for digit := range f[ix] {
			f[ix][digit] = d.units[ix].lit(digit)
		}
	}
	return f
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so it is not corrupted.
func (d *Dev) Halt() error {
	if d.w == nil {
		return nil
	}
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// Off is the color of an unlit LED.
var Off = color.NRGBA{0x20, 0x20, 0x20, 255}

// ledColor returns the color of a lit LED for an intensity in 0..15.
func ledColor(intensity byte) color.NRGBA {
	return color.NRGBA{R: byte(0x40 + int(intensity)*0xbf/int(max7219.MaxIntensity)), A: 255}
}

func (d *Dev) render() error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	if d.drawn {
		fmt.Fprintf(&d.buf, "\033[%dA", dotmatrix.Height)
	}
	f := d.matrix()
	off := d.palette.Block(Off)
	var on [dotmatrix.Chips]string
	for ix := range d.units {
		on[ix] = d.palette.Block(ledColor(d.units[ix].Intensity))
	}
	for y := range dotmatrix.Height {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := range dotmatrix.Width {
			if f.Pixel(x, y) {
				_, _ = d.buf.WriteString(on[x/8+2*(y/8)])
			} else {
				_, _ = d.buf.WriteString(off)
			}
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ max7219.Bus = &Dev{}
var _ conn.Resource = &Dev{}
