// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/onewire/onewirereg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/ds18b20"
)

// lightScale is the full scale of the readings fed to the brightness
// controller.
const lightScale = 1023

// conversionDelay is how long a 12 bits DS18B20 conversion takes, rounded
// up.
const conversionDelay = time.Second

// adc is the subset of analog.PinADC used to read the photocell.
type adc interface {
	Range() (analog.Sample, analog.Sample)
	Read() (analog.Sample, error)
}

// scaleLight maps a raw sample to 0..lightScale using the pin range.
func scaleLight(s, top analog.Sample) int {
	if top.Raw <= 0 || s.Raw <= 0 {
		return 0
	}
	if s.Raw >= top.Raw {
		return lightScale
	}
	return int(int64(s.Raw) * lightScale / int64(top.Raw))
}

// runPhotocell reads p every interval and sends the scaled reading on out
// until ctx is done. Read errors are logged and skipped.
func runPhotocell(ctx context.Context, p adc, interval time.Duration, out chan<- int, log zerolog.Logger) {
	_, top := p.Range()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		s, err := p.Read()
		if err != nil {
			log.Warn().Err(err).Msg("photocell")
		} else {
			select {
			case out <- scaleLight(s, top):
			case <-ctx.Done():
				return
			}
		}
		select {
		case <-t.C:
		case <-ctx.Done():
			return
		}
	}
}

// thermometer starts conversions and reads their result.
type thermometer interface {
	Start() error
	LastTemp() (physic.Temperature, error)
}

// runThermometer converts every interval and sends the temperature on out
// until ctx is done.
func runThermometer(ctx context.Context, th thermometer, interval, delay time.Duration, out chan<- physic.Temperature, log zerolog.Logger) {
	for {
		if err := th.Start(); err != nil {
			log.Warn().Err(err).Msg("thermometer")
		} else if !wait(ctx, delay) {
			return
		} else if temp, err := th.LastTemp(); err != nil {
			log.Warn().Err(err).Msg("thermometer")
		} else {
			select {
			case out <- temp:
			case <-ctx.Done():
				return
			}
		}
		if !wait(ctx, interval) {
			return
		}
	}
}

// wait sleeps for d and reports false if ctx was canceled first.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// openPhotocell opens the ADS1115 channel configured in c.
func openPhotocell(c *PhotocellConfig) (adc, func() error, error) {
	bus, err := i2creg.Open(c.I2C)
	if err != nil {
		return nil, nil, fmt.Errorf("photocell: %w", err)
	}
	d, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("photocell: %w", err)
	}
	channels := [...]ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}
	p, err := d.PinForChannel(channels[c.Channel], 5*physic.Volt, 1*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("photocell: %w", err)
	}
	closer := func() error {
		return errors.Join(p.Halt(), bus.Close())
	}
	return p, closer, nil
}

// familyDS18B20 is the family code in the low byte of a DS18B20 address.
const familyDS18B20 = 0x28

// probe is a DS18B20 on a 1-wire bus.
type probe struct {
	bus onewire.Bus
	dev *ds18b20.Dev
}

func (p *probe) Start() error {
	return ds18b20.StartAll(p.bus)
}

func (p *probe) LastTemp() (physic.Temperature, error) {
	return p.dev.LastTemp()
}

// openThermometer opens the first DS18B20 found on the configured bus.
func openThermometer(c *ThermometerConfig) (thermometer, func() error, error) {
	bus, err := onewirereg.Open(c.OneWire)
	if err != nil {
		return nil, nil, fmt.Errorf("thermometer: %w", err)
	}
	addrs, err := bus.Search(false)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("thermometer: %w", err)
	}
	for _, a := range addrs {
		if a&0xff != familyDS18B20 {
			continue
		}
		d, err := ds18b20.New(bus, a, c.Resolution)
		if err != nil {
			bus.Close()
			return nil, nil, fmt.Errorf("thermometer: %w", err)
		}
		return &probe{bus: bus, dev: d}, bus.Close, nil
	}
	bus.Close()
	return nil, nil, fmt.Errorf("thermometer: no DS18B20 on %s", bus)
}
