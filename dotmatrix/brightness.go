// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dotmatrix

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/GermanBionicSystems/ledmatrix/max7219"
)

// Level is a manual brightness level in 0..15, or Auto.
type Level int8

// Auto lets the ambient light sensor drive the intensity.
const Auto Level = -1

// MaxLevel is the brightest manual level.
const MaxLevel = Level(max7219.MaxIntensity)

func (l Level) String() string {
	if l == Auto {
		return "auto"
	}
	return strconv.Itoa(int(l))
}

// Event is an input of the brightness adjustment session. Buttons are
// expected to be debounced, one event per press.
type Event int

// Possible events.
const (
	None Event = iota
	Increment
	Decrement
	Confirm
)

func (e Event) String() string {
	switch e {
	case None:
		return "None"
	case Increment:
		return "Increment"
	case Decrement:
		return "Decrement"
	case Confirm:
		return "Confirm"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Result tells the caller what an adjustment step did.
type Result int

// Possible results.
const (
	// Unchanged means the frame buffer was not modified.
	Unchanged Result = iota
	// Changed means the frame buffer was modified and should be flushed.
	Changed
	// Finished means the session is over.
	Finished
)

func (r Result) String() string {
	switch r {
	case Unchanged:
		return "Unchanged"
	case Changed:
		return "Changed"
	case Finished:
		return "Finished"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// DefaultBrightnessOpts matches a photocell divider read by a 10 bit ADC.
var DefaultBrightnessOpts = BrightnessOpts{
	Interval:  50 * time.Millisecond,
	Threshold: 10,
	SensorMin: 0,
	SensorMax: 900,
}

// BrightnessOpts tunes the automatic brightness mode.
type BrightnessOpts struct {
	// Interval is the minimum time between two intensity updates. Zero
	// selects the default.
	Interval time.Duration
	// Threshold is the change in sensor reading up to which the intensity
	// is left alone. Zero selects the default.
	Threshold int
	// SensorMin and SensorMax are the readings mapped to intensity 0 and
	// 15. Readings outside of the range are clamped.
	SensorMin int
	SensorMax int
}

func (o BrightnessOpts) withDefaults() (BrightnessOpts, error) {
	if o.Interval == 0 {
		o.Interval = DefaultBrightnessOpts.Interval
	}
	if o.Threshold == 0 {
		o.Threshold = DefaultBrightnessOpts.Threshold
	}
	if o.SensorMin == 0 && o.SensorMax == 0 {
		o.SensorMin, o.SensorMax = DefaultBrightnessOpts.SensorMin, DefaultBrightnessOpts.SensorMax
	}
	if o.Interval < 0 || o.Threshold < 0 {
		return o, errors.New("dotmatrix: invalid brightness interval or threshold")
	}
	if o.SensorMax <= o.SensorMin {
		return o, fmt.Errorf("dotmatrix: invalid sensor range [%d, %d]", o.SensorMin, o.SensorMax)
	}
	return o, nil
}

// intensity maps a sensor reading onto 0..15.
func (o *BrightnessOpts) intensity(reading int) byte {
	v := (reading - o.SensorMin) * int(max7219.MaxIntensity) / (o.SensorMax - o.SensorMin)
	return byte(min(max(v, 0), int(max7219.MaxIntensity)))
}

// Where the level is drawn during an adjustment session.
var (
	levelTens   = [2]int{4, 5}
	levelUnits  = [2]int{9, 5}
	levelRegion = [4]int{4, 5, 12, 10} // x0, y0, x1, y1; exclusive
	corners     = [...][2]int{
		{0, 0}, {0, 1}, {1, 0},
		{15, 0}, {14, 0}, {15, 1},
		{0, 15}, {0, 14}, {1, 15},
		{15, 15}, {15, 14}, {14, 15},
	}
)

type brightness struct {
	opts       BrightnessOpts
	level      Level
	adjusting  bool
	lastRead   int
	lastUpdate time.Time
}

// Brightness returns the current level.
func (d *Dev) Brightness() Level {
	return d.bright.level
}

// Adjusting reports whether a brightness adjustment session is running.
func (d *Dev) Adjusting() bool {
	return d.bright.adjusting
}

// SetBrightness sets the level without going through an adjustment session,
// e.g. to restore a saved setting. Manual levels are applied immediately;
// Auto takes effect on the next PollAutomaticBrightness.
func (d *Dev) SetBrightness(l Level) error {
	if l != Auto && (l < 0 || l > MaxLevel) {
		return fmt.Errorf("dotmatrix: invalid brightness level %d", l)
	}
	d.bright.level = l
	if l == Auto {
		return nil
	}
	return d.setIntensity(byte(l))
}

// BeginAdjustment starts a brightness adjustment session: corner markers
// are drawn, as well as the level unless it is Auto. It returns Changed, or
// Unchanged if a session is already running.
func (d *Dev) BeginAdjustment() Result {
	if d.bright.adjusting {
		return Unchanged
	}
	d.bright.adjusting = true
	for _, c := range corners {
		d.SetPixel(c[0], c[1], true)
	}
	if d.bright.level != Auto {
		d.drawLevel()
	}
	return Changed
}

// StepAdjustment feeds one event to the running session.
//
// Increment and Decrement step the level, wrapping through Auto: 15 goes to
// Auto, Auto to 0, and the other way around. Confirm ends the session and
// returns Finished. Events received outside a session are ignored.
func (d *Dev) StepAdjustment(e Event) (Result, error) {
	if !d.bright.adjusting {
		return Unchanged, nil
	}
	l := d.bright.level
	switch e {
	case Increment:
		switch l {
		case Auto:
			l = 0
		case MaxLevel:
			l = Auto
		default:
			l++
		}
	case Decrement:
		switch l {
		case Auto:
			l = MaxLevel
		case 0:
			l = Auto
		default:
			l--
		}
	case Confirm:
		d.bright.adjusting = false
		return Finished, nil
	default:
		return Unchanged, nil
	}
	d.bright.level = l
	if l == Auto {
		for x := levelRegion[0]; x < levelRegion[2]; x++ {
			for y := levelRegion[1]; y < levelRegion[3]; y++ {
				d.SetPixel(x, y, false)
			}
		}
		return Changed, nil
	}
	d.drawLevel()
	return Changed, d.setIntensity(byte(l))
}

func (d *Dev) drawLevel() {
	l := int(d.bright.level)
	d.SetDigit(levelTens[0], levelTens[1], l/10)
	d.SetDigit(levelUnits[0], levelUnits[1], l%10)
}

// PollAutomaticBrightness feeds an ambient light reading taken at now.
//
// It only acts in Auto mode, at most once per Interval, and only when the
// reading moved by more than Threshold since the last applied one. The last
// applied reading starts at 0 and survives manual levels, so a dim room at
// startup keeps the intensity set by New. The frame buffer is not touched.
func (d *Dev) PollAutomaticBrightness(reading int, now time.Time) error {
	b := &d.bright
	if b.level != Auto || now.Sub(b.lastUpdate) < b.opts.Interval {
		return nil
	}
	if delta := reading - b.lastRead; delta <= b.opts.Threshold && delta >= -b.opts.Threshold {
		return nil
	}
	if err := d.setIntensity(b.opts.intensity(reading)); err != nil {
		return err
	}
	b.lastRead = reading
	b.lastUpdate = now
	return nil
}

func (d *Dev) setIntensity(v byte) error {
	if err := d.chain.SetIntensity(v); err != nil {
		return fmt.Errorf("dotmatrix: %v", err)
	}
	d.obs.IntensityChanged(d.bright.level, v)
	return nil
}
