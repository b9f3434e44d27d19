// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package max7219 drives a daisy chain of Maxim MAX7219/MAX7221 LED
// drivers.
//
// Every chip in the chain is a 16 bit shift register. Words shifted into
// the first chip push the previous contents towards the end of the chain,
// and a rising edge on the shared LOAD line latches the word each chip is
// currently holding. A frame is therefore one 2 byte word per chip,
// followed by a single strobe. The word sent first ends up in the chip
// the furthest away from the bus master.
//
// # Datasheet
//
// https://www.analog.com/media/en/technical-documentation/data-sheets/MAX7219-MAX7221.pdf
package max7219

import (
	"errors"
	"fmt"
)

// Register addresses.
const (
	RegNoop        byte = 0x0
	RegDigit0      byte = 0x1
	RegDigit7      byte = 0x8
	RegDecodeMode  byte = 0x9
	RegIntensity   byte = 0xa
	RegScanLimit   byte = 0xb
	RegShutdown    byte = 0xc
	RegDisplayTest byte = 0xf
)

// Digits is the number of digit registers of a single chip.
const Digits = 8

// MaxIntensity is the highest value accepted by the intensity register.
const MaxIntensity byte = 0x0f

// DecodeMode is the mode for handling data. Refer to the datasheet for
// more information.
type DecodeMode byte

const (
	// DecodeB is used for numeric segment displays. E.G. given a binary 0,
	// it would turn on the appropriate segments to display the character 0.
	DecodeB DecodeMode = 0xff
	// DecodeNone is RAW mode, or not decoded. For each byte, bits that are
	// one are turned on in the matrix, and bits that are 0 turn off the
	// led at that row/column.
	DecodeNone DecodeMode = 0
)

// Word is a single register write addressed to one chip.
type Word struct {
	Register byte
	Data     byte
}

// Noop is the word sent to chips that have nothing to do in a frame.
var Noop = Word{Register: RegNoop}

// DigitWord returns the word writing value into digit register digit
// (0 based).
func DigitWord(digit int, value byte) Word {
	return Word{Register: RegDigit0 + byte(digit), Data: value}
}

func (w Word) String() string {
	if w.Register == RegNoop {
		return "noop"
	}
	return fmt.Sprintf("{%#x %#08b}", w.Register, w.Data)
}

// Bus is the write-only transport shared by all the chips of a chain.
//
// TransferWord shifts one 16 bit word, register first, most significant bit
// first. Strobe pulses the LOAD line so every chip latches the word it
// holds. Implementations are not safe for concurrent use.
type Bus interface {
	TransferWord(register, data byte) error
	Strobe() error
}

// Chain is a set of cascaded chips sharing a Bus.
type Chain struct {
	bus Bus
	// order lists logical chip indexes in transmission order: order[0] is
	// shifted out first.
	order []int
	// scratch avoids allocating a frame per SendAll.
	scratch []Word
}

// ReverseOrder returns the transmission order of a chain where logical chip
// 0 is the one wired to the bus master: the last chip is sent first.
func ReverseOrder(units int) []int {
	o := make([]int, units)
	for ix := range units {
		o[ix] = units - 1 - ix
	}
	return o
}

// NewChain returns a Chain of len(order) chips. order maps transmission
// position to logical chip index and must be a permutation of 0..n-1.
func NewChain(bus Bus, order []int) (*Chain, error) {
	if bus == nil {
		return nil, errors.New("max7219: nil bus")
	}
	if len(order) == 0 {
		return nil, errors.New("max7219: invalid value for number of cascaded units")
	}
	seen := make([]bool, len(order))
	for _, chip := range order {
		if chip < 0 || chip >= len(order) || seen[chip] {
			return nil, fmt.Errorf("max7219: invalid transmission order %v", order)
		}
		seen[chip] = true
	}
	o := make([]int, len(order))
	copy(o, order)
	return &Chain{bus: bus, order: o, scratch: make([]Word, len(o))}, nil
}

func (c *Chain) String() string {
	return fmt.Sprintf("max7219.Chain{%d units, order %v}", len(c.order), c.order)
}

// Len returns the number of chips in the chain.
func (c *Chain) Len() int {
	return len(c.order)
}

// Order returns a copy of the transmission order.
func (c *Chain) Order() []int {
	o := make([]int, len(c.order))
	copy(o, c.order)
	return o
}

// SendFrame transmits one word per chip and latches them. words is indexed
// by logical chip.
func (c *Chain) SendFrame(words []Word) error {
	if len(words) != len(c.order) {
		return fmt.Errorf("max7219: frame has %d words for %d units", len(words), len(c.order))
	}
	for _, chip := range c.order {
		if err := c.bus.TransferWord(words[chip].Register, words[chip].Data); err != nil {
			return err
		}
	}
	return c.bus.Strobe()
}

// SendAll writes the same register of every chip in a single frame.
func (c *Chain) SendAll(register, data byte) error {
	for ix := range c.scratch {
		c.scratch[ix] = Word{Register: register, Data: data}
	}
	return c.SendFrame(c.scratch)
}

// Init puts the chain in raw matrix mode: no decoding, the given
// intensity, all 8 digits scanned, test mode off and every digit blanked.
// The chips leave shutdown last so nothing random flashes on power up.
func (c *Chain) Init(intensity byte) error {
	if err := c.SetDecode(DecodeNone); err != nil {
		return err
	}
	if err := c.SetIntensity(intensity); err != nil {
		return err
	}
	if err := c.SendAll(RegScanLimit, Digits-1); err != nil {
		return err
	}
	if err := c.TestDisplay(false); err != nil {
		return err
	}
	for reg := RegDigit0; reg <= RegDigit7; reg++ {
		if err := c.SendAll(reg, 0); err != nil {
			return err
		}
	}
	return c.Shutdown(false)
}

// SetDecode tells the chips whether values should be decoded for a 7
// segment display, or if they should be interpreted literally.
func (c *Chain) SetDecode(mode DecodeMode) error {
	return c.SendAll(RegDecodeMode, byte(mode))
}

// SetIntensity controls the brightness of the display. The allowed range
// for intensity is from 0-15. Keep in mind that the brighter display, the
// more current drawn.
func (c *Chain) SetIntensity(intensity byte) error {
	return c.SendAll(RegIntensity, intensity&MaxIntensity)
}

// TestDisplay turns on the display test mode which sets all LEDs on at
// maximum intensity. Mind the current draw of a full chain.
func (c *Chain) TestDisplay(on bool) error {
	if on {
		return c.SendAll(RegDisplayTest, 1)
	}
	return c.SendAll(RegDisplayTest, 0)
}

// Shutdown blanks the chain while retaining register contents.
func (c *Chain) Shutdown(off bool) error {
	if off {
		return c.SendAll(RegShutdown, 0)
	}
	return c.SendAll(RegShutdown, 1)
}
