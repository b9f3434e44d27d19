// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dotmatrix drives a 16x16 LED matrix made of four cascaded
// MAX7219 8x8 units arranged in a 2x2 square.
//
// Drawing operations only modify an in-memory frame buffer. Flush sends the
// minimal set of register writes needed to bring the chips in line with it,
// packing the updates of all four chips in shared frames.
//
// A Dev is not safe for concurrent use; it is meant to be owned by a single
// polling loop.
package dotmatrix

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/GermanBionicSystems/ledmatrix/max7219"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// DefaultIntensity is the intensity set at startup, before the first
// automatic or manual adjustment.
const DefaultIntensity byte = 0x08

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Intensity:  DefaultIntensity,
	Brightness: DefaultBrightnessOpts,
}

// Opts defines the options for the device.
type Opts struct {
	// Order is the transmission order of the logical units, first shifted
	// out first. Defaults to max7219.ReverseOrder(4): unit 0 is the one
	// wired to the bus master.
	Order []int
	// Intensity set at startup.
	Intensity byte
	// Brightness tunes the automatic brightness mode. Zero fields take the
	// DefaultBrightnessOpts values.
	Brightness BrightnessOpts
	// Observer is notified of transmissions. May be nil.
	Observer Observer
}

// Dev is an open handle to the matrix.
type Dev struct {
	bus   max7219.Bus
	chain *max7219.Chain
	order []int
	obs   Observer

	// buffer is the desired state, shadow what the chips hold.
	buffer Frame
	shadow Frame
	// words is reused to report frames to the observer.
	words [Chips]max7219.Word

	bright brightness
}

// New initializes the chain on bus and returns a blank matrix.
func New(bus max7219.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	order := opts.Order
	if order == nil {
		order = max7219.ReverseOrder(Chips)
	}
	if len(order) != Chips {
		return nil, fmt.Errorf("dotmatrix: need a transmission order for %d units, got %v", Chips, order)
	}
	bo, err := opts.Brightness.withDefaults()
	if err != nil {
		return nil, err
	}
	chain, err := max7219.NewChain(bus, order)
	if err != nil {
		return nil, fmt.Errorf("dotmatrix: %v", err)
	}
	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	d := &Dev{
		bus:    bus,
		chain:  chain,
		order:  chain.Order(),
		obs:    obs,
		bright: brightness{opts: bo, level: Auto},
	}
	if err := chain.Init(opts.Intensity); err != nil {
		return nil, fmt.Errorf("dotmatrix: %v", err)
	}
	obs.IntensityChanged(Auto, opts.Intensity&max7219.MaxIntensity)
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("dotmatrix.Dev{%s}", d.chain)
}

// SetPixel turns the LED at (x, y) on or off in the frame buffer.
func (d *Dev) SetPixel(x, y int, on bool) {
	d.buffer.set(x, y, on)
}

// TestPixel reports the state of (x, y) in the frame buffer, including
// changes not flushed yet.
func (d *Dev) TestPixel(x, y int) bool {
	return d.buffer.Pixel(x, y)
}

// Clear turns every LED off in the frame buffer.
func (d *Dev) Clear() {
	d.buffer = Frame{}
}

// IsEmpty reports whether every LED is off in the frame buffer.
func (d *Dev) IsEmpty() bool {
	return d.buffer == Frame{}
}

// SetDigit draws a 3x5 seven-segment digit with its top left corner at
// (x, y). digit must be in 0..9.
func (d *Dev) SetDigit(x, y, digit int) {
	for i := range GlyphWidth {
		for j := range GlyphHeight {
			d.buffer.set(x+i, y+j, false)
		}
	}
	glyphPixels(digit, func(p image.Point) {
		d.buffer.set(x+p.X, y+p.Y, true)
	})
}

// Buffer returns a copy of the frame buffer.
func (d *Dev) Buffer() Frame {
	return d.buffer
}

// Committed returns a copy of what the chips currently display.
func (d *Dev) Committed() Frame {
	return d.shadow
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// Draw implements display.Drawer.
//
// Pixels of src are thresholded to on/off, then the matrix is flushed.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	delta := sp.Sub(r.Min)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b := image1bit.BitModel.Convert(src.At(x+delta.X, y+delta.Y)).(image1bit.Bit)
			d.buffer.set(x, y, bool(b))
		}
	}
	_, err := d.Flush()
	return err
}

// SetTestMode turns the display test mode on or off. In test mode every LED
// is lit at full intensity regardless of the digit registers.
func (d *Dev) SetTestMode(on bool) error {
	if err := d.chain.TestDisplay(on); err != nil {
		return fmt.Errorf("dotmatrix: %v", err)
	}
	return nil
}

// Halt implements conn.Resource.
//
// It blanks the matrix and puts the chips in shutdown mode. Any later flush
// or intensity change does not wake them up.
func (d *Dev) Halt() error {
	d.Clear()
	if _, err := d.Flush(); err != nil {
		return err
	}
	if err := d.chain.Shutdown(true); err != nil {
		return fmt.Errorf("dotmatrix: %v", err)
	}
	return nil
}

// TestPattern sweeps a cross over the matrix, one row and column at a time,
// waiting delay between steps. The frame buffer is left empty.
func (d *Dev) TestPattern(delay time.Duration) error {
	for i := range Width {
		d.Clear()
		for j := range Height {
			d.SetPixel(i, j, true)
			d.SetPixel(j, i, true)
		}
		if _, err := d.Flush(); err != nil {
			return err
		}
		sleep(delay)
	}
	d.Clear()
	return nil
}

var sleep = time.Sleep

var _ display.Drawer = &Dev{}
var _ conn.Resource = &Dev{}
