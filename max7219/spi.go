// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package max7219

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPIBus is a Bus on a SPI port.
//
// Words are queued until Strobe, which shifts the whole frame out in a
// single transaction. When a load pin is given, it is driven low for the
// transfer and back high afterwards, the rising edge latching the chain.
// Without a load pin the port's chip select plays that role.
type SPIBus struct {
	conn spi.Conn
	load gpio.PinOut
	w    []byte
}

// NewSPI connects to the chain on p. load may be nil.
func NewSPI(p spi.Port, load gpio.PinOut) (*SPIBus, error) {
	if load == gpio.INVALID {
		return nil, errors.New("max7219: use nil for load to use chip select, do not use gpio.INVALID")
	}
	// It works in Mode0, Mode2 and Mode3.
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("max7219: %v", err)
	}
	if load != nil {
		if err := load.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("max7219: %v", err)
		}
	}
	return &SPIBus{conn: c, load: load, w: make([]byte, 0, 8)}, nil
}

func (b *SPIBus) String() string {
	if b.load != nil {
		return fmt.Sprintf("max7219.SPIBus{%s, %s}", b.conn, b.load)
	}
	return fmt.Sprintf("max7219.SPIBus{%s}", b.conn)
}

// TransferWord implements Bus.
func (b *SPIBus) TransferWord(register, data byte) error {
	b.w = append(b.w, register, data)
	return nil
}

// Strobe implements Bus.
func (b *SPIBus) Strobe() error {
	if len(b.w) == 0 {
		return nil
	}
	defer func() { b.w = b.w[:0] }()
	if b.load != nil {
		if err := b.load.Out(gpio.Low); err != nil {
			return err
		}
	}
	if err := b.conn.Tx(b.w, nil); err != nil {
		return err
	}
	if b.load != nil {
		return b.load.Out(gpio.High)
	}
	return nil
}

// Halt implements conn.Resource.
//
// It drops any queued words.
func (b *SPIBus) Halt() error {
	b.w = b.w[:0]
	return nil
}

var _ Bus = &SPIBus{}
var _ conn.Resource = &SPIBus{}
