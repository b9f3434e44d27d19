// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dotmatrix

import (
	"fmt"

	"github.com/GermanBionicSystems/ledmatrix/max7219"
)

// pending returns, per chip, the number of digit registers that differ
// between the frame buffer and the chips, and the largest of these counts.
func (d *Dev) pending() ([Chips]int, int) {
	var counts [Chips]int
	most := 0
	for chip := range d.buffer {
		for digit := range d.buffer[chip] {
			if d.buffer[chip][digit] != d.shadow[chip][digit] {
				counts[chip]++
			}
		}
		most = max(most, counts[chip])
	}
	return counts, most
}

// Pending returns the number of frames the next Flush will send.
func (d *Dev) Pending() int {
	_, n := d.pending()
	return n
}

// Flush sends the frame buffer to the chips and returns the number of frames
// sent.
//
// Each frame carries one word per chip and updates at most one digit
// register per chip, so the number of frames is the largest number of
// changed registers on a single chip. A chip with fewer changes receives
// no-op words once it is up to date. Registers of a chip are written in
// increasing order.
//
// On error the frame being sent is discarded and the committed state only
// reflects the frames latched before it; the next Flush resends the rest.
func (d *Dev) Flush() (int, error) {
	_, frames := d.pending()
	// next is, per chip, the first register not examined yet. The frame
	// buffer does not change during a flush, so registers before next are
	// already in sync.
	var next [Chips]int
	for frame := range frames {
		var undo [Chips]int
		for ix := range undo {
			undo[ix] = -1
		}
		var old [Chips]byte
		for _, chip := range d.order {
			k := next[chip]
			for k < max7219.Digits && d.buffer[chip][k] == d.shadow[chip][k] {
				k++
			}
			w := max7219.Noop
			if k < max7219.Digits {
				w = max7219.DigitWord(k, d.buffer[chip][k])
			}
			if err := d.bus.TransferWord(w.Register, w.Data); err != nil {
				d.rollback(&undo, &old)
				return frame, fmt.Errorf("dotmatrix: %v", err)
			}
			if k < max7219.Digits {
				undo[chip], old[chip] = k, d.shadow[chip][k]
				d.shadow[chip][k] = w.Data
				k++
			}
			next[chip] = k
			d.words[chip] = w
		}
		if err := d.bus.Strobe(); err != nil {
			d.rollback(&undo, &old)
			return frame, fmt.Errorf("dotmatrix: %v", err)
		}
		d.obs.FrameSent(frame, d.words[:])
	}
	d.obs.Flushed(frames, d.shadow)
	return frames, nil
}

// rollback restores the shadow registers touched by a frame that was not
// latched.
func (d *Dev) rollback(undo *[Chips]int, old *[Chips]byte) {
	for chip, digit := range undo {
		if digit >= 0 {
			d.shadow[chip][digit] = old[chip]
		}
	}
}
