// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bitbang implements a max7219.Bus by toggling three GPIO lines of
// the Linux GPIO character device: data (DIN), clock (CLK) and load (CS).
//
// It is slow compared to SPI but works on any pins, like the shiftOut
// routine of microcontroller frameworks.
package bitbang

import (
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/ledmatrix/max7219"
	"github.com/warthog618/go-gpiocdev"
)

// Line is an output line.
//
// It is implemented by *gpiocdev.Line.
type Line interface {
	SetValue(value int) error
	Close() error
}

// Pins identifies the lines to request.
type Pins struct {
	// Chip is the name of the GPIO chip, e.g. "gpiochip0".
	Chip  string
	Data  int
	Clock int
	Load  int
}

// Bus shifts words out MSB first on Data, sampled on the rising edge of
// Clock. Load idles high, is pulled low by the first word of a frame and
// raised by Strobe, which latches the frame.
type Bus struct {
	data, clock, load Line
	// shifting is set while load is low.
	shifting bool
}

// Open requests data and clock as outputs driven low and load driven high.
func Open(p Pins) (*Bus, error) {
	var lines []*gpiocdev.Line
	for i, offset := range []int{p.Data, p.Clock, p.Load} {
		v := 0
		if i == 2 {
			v = 1
		}
		l, err := gpiocdev.RequestLine(p.Chip, offset, gpiocdev.AsOutput(v), gpiocdev.WithConsumer("ledmatrix"))
		if err != nil {
			for _, o := range lines {
				_ = o.Close()
			}
			return nil, fmt.Errorf("bitbang: line %s:%d: %w", p.Chip, offset, err)
		}
		lines = append(lines, l)
	}
	return New(lines[0], lines[1], lines[2])
}

// New returns a Bus on already requested lines. load is driven high.
func New(data, clock, load Line) (*Bus, error) {
	if data == nil || clock == nil || load == nil {
		return nil, errors.New("bitbang: need data, clock and load lines")
	}
	if err := load.SetValue(1); err != nil {
		return nil, fmt.Errorf("bitbang: %w", err)
	}
	return &Bus{data: data, clock: clock, load: load}, nil
}

func (b *Bus) String() string {
	return "bitbang.Bus"
}

// TransferWord implements max7219.Bus.
func (b *Bus) TransferWord(register, data byte) error {
	if !b.shifting {
		if err := b.load.SetValue(0); err != nil {
			return fmt.Errorf("bitbang: %w", err)
		}
		b.shifting = true
	}
	w := uint16(register)<<8 | uint16(data)
	for bit := 15; bit >= 0; bit-- {
		if err := b.data.SetValue(int(w>>bit) & 1); err != nil {
			return fmt.Errorf("bitbang: %w", err)
		}
		if err := b.clock.SetValue(1); err != nil {
			return fmt.Errorf("bitbang: %w", err)
		}
		if err := b.clock.SetValue(0); err != nil {
			return fmt.Errorf("bitbang: %w", err)
		}
	}
	return nil
}

// Strobe implements max7219.Bus.
//
// The chips latch on the rising edge of Load.
func (b *Bus) Strobe() error {
	if err := b.load.SetValue(1); err != nil {
		return fmt.Errorf("bitbang: %w", err)
	}
	b.shifting = false
	return nil
}

// Halt implements conn.Resource.
//
// It releases the lines.
func (b *Bus) Halt() error {
	var errs []error
	for _, l := range []Line{b.data, b.clock, b.load} {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ max7219.Bus = &Bus{}
var _ Line = &gpiocdev.Line{}
