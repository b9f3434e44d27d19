// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"math/rand"
	"time"

	"github.com/GermanBionicSystems/ledmatrix/dotmatrix"
	"github.com/GermanBionicSystems/ledmatrix/faces"
	"github.com/GermanBionicSystems/ledmatrix/life"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
)

type mode int

const (
	modeLife mode = iota
	modeClock
	modeDate
	modeTemperature
	numModes
)

func (m mode) String() string {
	switch m {
	case modeLife:
		return "life"
	case modeClock:
		return "clock"
	case modeDate:
		return "date"
	case modeTemperature:
		return "temperature"
	default:
		return "unknown"
	}
}

// input is what happened since the previous step.
type input struct {
	// Presses, one per push.
	mode, plus, minus bool
	// modeHeld is set once when Mode has been held long enough.
	modeHeld bool
	// light is the photocell reading, valid if hasLight.
	light    int
	hasLight bool
	// temp is a new temperature, valid if hasTemp.
	temp    physic.Temperature
	hasTemp bool
}

// app runs the screens on the matrix. It is driven by a single loop calling
// step.
type app struct {
	d        *dotmatrix.Dev
	log      zerolog.Logger
	game     *life.Game
	modes    ModesConfig
	order    faces.DateOrder
	interval time.Duration
	// autoStyle alternates binary each time the clock is shown.
	autoStyle bool
	// saveLevel is called when an adjustment session ends. May be nil.
	saveLevel func(dotmatrix.Level) error

	mode    mode
	since   time.Time
	binary  bool
	temp    physic.Temperature
	hasTemp bool
}

func newApp(d *dotmatrix.Dev, cfg *Config, rnd *rand.Rand, log zerolog.Logger) *app {
	order, _ := cfg.dateOrder()
	a := &app{
		d:         d,
		log:       log,
		game:      life.New(d, rnd),
		modes:     cfg.Modes,
		order:     order,
		interval:  life.Interval(cfg.Life.Speed),
		autoStyle: cfg.Clock.AutoStyle,
		binary:    cfg.Clock.Binary,
		mode:      numModes - 1,
	}
	return a
}

func (a *app) duration(m mode) time.Duration {
	switch m {
	case modeLife:
		return a.modes.Life
	case modeClock:
		return a.modes.Clock
	case modeDate:
		return a.modes.Date
	case modeTemperature:
		return a.modes.Temperature
	default:
		return 0
	}
}

// next switches to the following enabled screen.
func (a *app) next(now time.Time) {
	m := a.mode
	for range numModes {
		m = (m + 1) % numModes
		if a.duration(m) > 0 {
			break
		}
	}
	a.mode = m
	a.since = now
	a.d.Clear()
	switch m {
	case modeLife:
		a.game.ResetGeneration()
	case modeClock:
		if a.autoStyle {
			a.binary = !a.binary
		}
	}
	a.log.Debug().Stringer("mode", m).Msg("screen")
}

// step processes in, draws the current screen and flushes.
func (a *app) step(now time.Time, in input) error {
	if in.hasTemp {
		a.temp, a.hasTemp = in.temp, true
	}
	if in.hasLight {
		if err := a.d.PollAutomaticBrightness(in.light, now); err != nil {
			return err
		}
	}
	if a.d.Adjusting() {
		return a.adjust(now, in)
	}
	if in.modeHeld {
		a.d.Clear()
		a.d.BeginAdjustment()
		return a.flush()
	}
	if a.since.IsZero() || in.mode || (a.modes.Auto && now.Sub(a.since) >= a.duration(a.mode)) {
		a.next(now)
	}
	if a.mode == modeClock && (in.plus || in.minus) {
		a.binary = !a.binary
		a.d.Clear()
	}
	a.draw(now)
	return a.flush()
}

func (a *app) adjust(now time.Time, in input) error {
	e := dotmatrix.None
	switch {
	case in.plus:
		e = dotmatrix.Increment
	case in.minus:
		e = dotmatrix.Decrement
	case in.mode:
		e = dotmatrix.Confirm
	}
	r, err := a.d.StepAdjustment(e)
	if err != nil {
		return err
	}
	if r == dotmatrix.Finished {
		l := a.d.Brightness()
		a.log.Info().Stringer("brightness", l).Msg("brightness set")
		if a.saveLevel != nil {
			if err := a.saveLevel(l); err != nil {
				a.log.Warn().Err(err).Msg("saving brightness")
			}
		}
		// Back to the same screen.
		a.d.Clear()
		a.since = now
		a.draw(now)
	}
	return a.flush()
}

func (a *app) draw(now time.Time) {
	switch a.mode {
	case modeLife:
		a.game.AutoReset()
		a.game.Tick(now, a.interval)
	case modeClock:
		if a.binary {
			faces.BinaryClock(a.d, now)
		} else {
			faces.Clock(a.d, now)
		}
	case modeDate:
		faces.Date(a.d, now, a.order)
	case modeTemperature:
		if a.hasTemp {
			faces.Temperature(a.d, a.temp)
		}
	}
}

func (a *app) flush() error {
	_, err := a.d.Flush()
	return err
}
