// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dotmatrix

import "github.com/GermanBionicSystems/ledmatrix/max7219"

// Observer is notified of what a Dev sends to the chips. It is meant for
// logging, previews and hardware bring-up; methods are called synchronously
// from Flush and the brightness operations and must not call back into the
// Dev.
type Observer interface {
	// FrameSent is called after each latched frame. words is indexed by
	// logical chip and only valid for the duration of the call.
	FrameSent(frame int, words []max7219.Word)
	// Flushed is called at the end of a successful Flush with the number of
	// frames sent and the state now displayed.
	Flushed(frames int, committed Frame)
	// IntensityChanged is called after the intensity register was written.
	IntensityChanged(level Level, intensity byte)
}

// NopObserver ignores everything.
type NopObserver struct{}

// FrameSent implements Observer.
func (NopObserver) FrameSent(int, []max7219.Word) {}

// Flushed implements Observer.
func (NopObserver) Flushed(int, Frame) {}

// IntensityChanged implements Observer.
func (NopObserver) IntensityChanged(Level, byte) {}

type multiObserver []Observer

// MultiObserver returns an Observer forwarding to each of obs in order.
func MultiObserver(obs ...Observer) Observer {
	m := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multiObserver) FrameSent(frame int, words []max7219.Word) {
	for _, o := range m {
		o.FrameSent(frame, words)
	}
}

func (m multiObserver) Flushed(frames int, committed Frame) {
	for _, o := range m {
		o.Flushed(frames, committed)
	}
}

func (m multiObserver) IntensityChanged(level Level, intensity byte) {
	for _, o := range m {
		o.IntensityChanged(level, intensity)
	}
}

var _ Observer = NopObserver{}
var _ Observer = multiObserver{}
