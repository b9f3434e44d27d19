// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"github.com/GermanBionicSystems/ledmatrix/dotmatrix"
	"github.com/GermanBionicSystems/ledmatrix/max7219"
	"github.com/rs/zerolog"
)

// logObserver traces transmissions. Frames are only logged at trace level.
type logObserver struct {
	log zerolog.Logger
}

func (o *logObserver) FrameSent(frame int, words []max7219.Word) {
	if e := o.log.Trace(); e.Enabled() {
		w := make([]string, len(words))
		for i, v := range words {
			w[i] = v.String()
		}
		e.Int("frame", frame).Strs("words", w).Msg("frame sent")
	}
}

func (o *logObserver) Flushed(frames int, committed dotmatrix.Frame) {
	if frames != 0 {
		o.log.Debug().Int("frames", frames).Msg("flushed")
	}
}

func (o *logObserver) IntensityChanged(level dotmatrix.Level, intensity byte) {
	o.log.Debug().Stringer("level", level).Uint8("intensity", intensity).Msg("intensity")
}

var _ dotmatrix.Observer = &logObserver{}
