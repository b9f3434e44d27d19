// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpioutil"
)

type button int

const (
	buttonMode button = iota
	buttonPlus
	buttonMinus
)

func (b button) String() string {
	switch b {
	case buttonMode:
		return "mode"
	case buttonPlus:
		return "plus"
	case buttonMinus:
		return "minus"
	default:
		return "unknown"
	}
}

// press is sent when a button is released, or once while it is held for
// longer than the hold duration. A held button does not send a release
// press.
type press struct {
	b    button
	held bool
}

// pollEdge bounds how long watch blocks, so it notices ctx being canceled.
const pollEdge = 100 * time.Millisecond

// watch sends the presses of an active low button p on out until ctx is
// done. hold 0 disables held presses; the press is then sent on push.
func watch(ctx context.Context, p gpio.PinIn, b button, hold time.Duration, out chan<- press) {
	send := func(v press) bool {
		select {
		case out <- v:
			return true
		case <-ctx.Done():
			return false
		}
	}
	for ctx.Err() == nil {
		if !p.WaitForEdge(pollEdge) || p.Read() != gpio.Low {
			continue
		}
		if hold == 0 {
			if !send(press{b: b}) {
				return
			}
			continue
		}
		pushed := time.Now()
		held := false
		for p.Read() == gpio.Low && ctx.Err() == nil {
			if !held && time.Since(pushed) >= hold {
				held = true
				if !send(press{b: b, held: true}) {
					return
				}
			}
			p.WaitForEdge(10 * time.Millisecond)
		}
		if !held && !send(press{b: b}) {
			return
		}
	}
}

// openButton returns the debounced pin named name, configured as an input
// with the pull-up enabled.
func openButton(name string, debounce time.Duration) (gpio.PinIn, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("button: no pin %q", name)
	}
	if err := p.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("button %s: %w", name, err)
	}
	if debounce == 0 {
		return p, nil
	}
	d, err := gpioutil.Debounce(p, debounce, debounce, gpio.BothEdges)
	if err != nil {
		return nil, fmt.Errorf("button %s: %w", name, err)
	}
	return d, nil
}

// startButtons watches the configured buttons. Only Mode supports held
// presses.
func startButtons(ctx context.Context, c *ButtonsConfig, out chan<- press) error {
	for _, b := range []struct {
		name string
		b    button
		hold time.Duration
	}{
		{c.Mode, buttonMode, c.Hold},
		{c.Plus, buttonPlus, 0},
		{c.Minus, buttonMinus, 0},
	} {
		if b.name == "" {
			continue
		}
		p, err := openButton(b.name, c.Debounce)
		if err != nil {
			return err
		}
		go watch(ctx, p, b.b, b.hold, out)
	}
	return nil
}
