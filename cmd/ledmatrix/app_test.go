// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/GermanBionicSystems/ledmatrix/dotmatrix"
	"github.com/GermanBionicSystems/ledmatrix/emulator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

var t0 = time.Date(2026, 10, 19, 13, 37, 0, 0, time.Local)

func newTestApp(t *testing.T, c *Config) (*app, *dotmatrix.Dev, *emulator.Dev) {
	t.Helper()
	e := emulator.New(nil)
	d, err := dotmatrix.New(e, &dotmatrix.Opts{Intensity: 8, Brightness: c.brightnessOpts()})
	require.NoError(t, err)
	return newApp(d, c, rand.New(rand.NewSource(1)), zerolog.Nop()), d, e
}

// displayed reports whether the LEDs show the frame buffer.
func displayed(t *testing.T, d *dotmatrix.Dev, e *emulator.Dev) {
	t.Helper()
	assert.Equal(t, d.Buffer(), e.Matrix())
	assert.Zero(t, d.Pending())
}

func TestAppModes(t *testing.T) {
	c := Default()
	c.Modes.Temperature = 0
	a, d, e := newTestApp(t, c)

	require.NoError(t, a.step(t0, input{}))
	assert.Equal(t, modeLife, a.mode)
	assert.False(t, d.IsEmpty())
	displayed(t, d, e)

	// Life runs until its duration expires.
	now := t0.Add(c.Modes.Life - tick)
	require.NoError(t, a.step(now, input{}))
	assert.Equal(t, modeLife, a.mode)
	now = t0.Add(c.Modes.Life)
	require.NoError(t, a.step(now, input{}))
	assert.Equal(t, modeClock, a.mode)
	displayed(t, d, e)

	// A press moves on right away.
	now = now.Add(tick)
	require.NoError(t, a.step(now, input{mode: true}))
	assert.Equal(t, modeDate, a.mode)
	displayed(t, d, e)

	// Temperature is disabled.
	now = now.Add(c.Modes.Date)
	require.NoError(t, a.step(now, input{}))
	assert.Equal(t, modeLife, a.mode)
	assert.Equal(t, 1, a.game.Generation())
}

func TestAppManualModes(t *testing.T) {
	c := Default()
	c.Modes.Auto = false
	a, _, _ := newTestApp(t, c)
	require.NoError(t, a.step(t0, input{}))
	require.NoError(t, a.step(t0.Add(time.Hour), input{}))
	assert.Equal(t, modeLife, a.mode)
	for _, want := range []mode{modeClock, modeDate, modeTemperature, modeLife} {
		require.NoError(t, a.step(t0.Add(time.Hour), input{mode: true}))
		assert.Equal(t, want, a.mode)
	}
}

func TestAppClockStyle(t *testing.T) {
	c := Default()
	c.Modes.Life = 0
	c.Clock.AutoStyle = true
	a, d, e := newTestApp(t, c)

	// AutoStyle flips the style each time the clock is shown.
	require.NoError(t, a.step(t0, input{}))
	assert.Equal(t, modeClock, a.mode)
	assert.True(t, a.binary)
	// 13:37 in binary: bit 0 of the hours is set, bit 1 is not.
	assert.True(t, d.TestPixel(2, 14))
	assert.False(t, d.TestPixel(2, 12))
	displayed(t, d, e)

	require.NoError(t, a.step(t0.Add(tick), input{plus: true}))
	assert.False(t, a.binary)
	assert.False(t, d.TestPixel(2, 14))
	displayed(t, d, e)

	require.NoError(t, a.step(t0.Add(2*tick), input{minus: true}))
	assert.True(t, a.binary)
}

func TestAppTemperature(t *testing.T) {
	c := Default()
	c.Modes = ModesConfig{Temperature: time.Minute}
	a, d, _ := newTestApp(t, c)
	require.NoError(t, a.step(t0, input{}))
	assert.Equal(t, modeTemperature, a.mode)
	assert.True(t, d.IsEmpty())

	require.NoError(t, a.step(t0.Add(tick), input{hasTemp: true, temp: physic.ZeroCelsius + 21500*physic.MilliKelvin}))
	assert.False(t, d.IsEmpty())
	assert.True(t, d.TestPixel(9, 14), "decimal point")
}

func TestAppBrightness(t *testing.T) {
	c := Default()
	c.Modes = ModesConfig{Date: time.Minute}
	a, d, e := newTestApp(t, c)
	var saved []dotmatrix.Level
	a.saveLevel = func(l dotmatrix.Level) error {
		saved = append(saved, l)
		return errors.New("read-only")
	}
	require.NoError(t, a.step(t0, input{}))
	date := d.Buffer()

	// Auto follows the light.
	require.NoError(t, a.step(t0.Add(tick), input{hasLight: true, light: 900}))
	assert.Equal(t, byte(15), e.Unit(0).Intensity)

	now := t0.Add(2 * tick)
	require.NoError(t, a.step(now, input{modeHeld: true}))
	assert.True(t, d.Adjusting())
	assert.True(t, d.TestPixel(0, 0))
	assert.False(t, d.TestPixel(4, 5), "auto shows no level")
	displayed(t, d, e)

	now = now.Add(tick)
	require.NoError(t, a.step(now, input{plus: true}))
	assert.Equal(t, dotmatrix.Level(0), d.Brightness())
	assert.Equal(t, byte(0), e.Unit(3).Intensity)
	displayed(t, d, e)

	// The light is ignored with a manual level.
	now = now.Add(tick)
	require.NoError(t, a.step(now, input{hasLight: true, light: 0, minus: true, plus: true}))
	assert.Equal(t, dotmatrix.Level(1), d.Brightness())
	assert.Equal(t, byte(1), e.Unit(3).Intensity)

	now = now.Add(tick)
	require.NoError(t, a.step(now, input{mode: true}))
	assert.False(t, d.Adjusting())
	assert.Equal(t, []dotmatrix.Level{1}, saved)
	assert.Equal(t, modeDate, a.mode, "the screen does not change")
	assert.Equal(t, date, d.Buffer())
	displayed(t, d, e)
}

func TestLoop(t *testing.T) {
	c := Default()
	c.Modes.Auto = false
	a, _, e := newTestApp(t, c)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	presses := make(chan press)
	light := make(chan int)
	temps := make(chan physic.Temperature)
	done := make(chan error)
	go func() { done <- loop(ctx, a, presses, light, temps) }()

	light <- 0
	presses <- press{b: buttonMode}
	// The loop is single threaded: once a second press is accepted, the
	// first one was either merged or processed.
	presses <- press{b: buttonPlus}
	cancel()
	require.NoError(t, <-done)
	_, strobes := e.Counts()
	assert.NotZero(t, strobes)
}

type fakeADC struct {
	samples []int32
	err     error
}

func (f *fakeADC) Range() (analog.Sample, analog.Sample) {
	return analog.Sample{}, analog.Sample{V: 5 * physic.Volt, Raw: 32767}
}

func (f *fakeADC) Read() (analog.Sample, error) {
	if f.err != nil {
		return analog.Sample{}, f.err
	}
	s := f.samples[0]
	if len(f.samples) > 1 {
		f.samples = f.samples[1:]
	}
	return analog.Sample{Raw: s}, nil
}

func TestScaleLight(t *testing.T) {
	top := analog.Sample{Raw: 32767}
	assert.Equal(t, 0, scaleLight(analog.Sample{Raw: -5}, top))
	assert.Equal(t, 0, scaleLight(analog.Sample{Raw: 0}, top))
	assert.Equal(t, 511, scaleLight(analog.Sample{Raw: 16384}, top))
	assert.Equal(t, lightScale, scaleLight(top, top))
	assert.Equal(t, lightScale, scaleLight(analog.Sample{Raw: 40000}, top))
	assert.Equal(t, 0, scaleLight(analog.Sample{Raw: 1}, analog.Sample{}))
}

func TestRunPhotocell(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan int)
	done := make(chan struct{})
	go func() {
		runPhotocell(ctx, &fakeADC{samples: []int32{0, 32767}}, time.Millisecond, out, zerolog.Nop())
		close(done)
	}()
	assert.Equal(t, 0, <-out)
	assert.Equal(t, lightScale, <-out)
	cancel()
	<-done
}

type fakeThermometer struct {
	starts int
	temp   physic.Temperature
	err    error
}

func (f *fakeThermometer) Start() error {
	f.starts++
	return f.err
}

func (f *fakeThermometer) LastTemp() (physic.Temperature, error) {
	return f.temp, nil
}

func TestRunThermometer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	th := &fakeThermometer{temp: physic.ZeroCelsius + 20*physic.Kelvin}
	out := make(chan physic.Temperature)
	done := make(chan struct{})
	go func() {
		runThermometer(ctx, th, time.Millisecond, time.Millisecond, out, zerolog.Nop())
		close(done)
	}()
	assert.Equal(t, th.temp, <-out)
	assert.Equal(t, th.temp, <-out)
	cancel()
	<-done
	assert.GreaterOrEqual(t, th.starts, 2)

	// Failed conversions are not reported.
	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	th = &fakeThermometer{err: errors.New("no presence")}
	runThermometer(ctx, th, time.Millisecond, time.Millisecond, out, zerolog.Nop())
	assert.NotZero(t, th.starts)
}
