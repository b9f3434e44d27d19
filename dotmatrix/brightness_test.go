// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dotmatrix

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func checkLevelRegion(t *testing.T, d *Dev, want string) {
	t.Helper()
	got := ""
	for y := levelRegion[1]; y < levelRegion[3]; y++ {
		for x := levelRegion[0]; x < levelRegion[2]; x++ {
			if d.TestPixel(x, y) {
				got += "#"
			} else {
				got += "."
			}
		}
		got += "\n"
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("level region (-want +got):\n%s", diff)
	}
}

const (
	levelBlank = "........\n........\n........\n........\n........\n"
	level00    = "###..###\n#.#..#.#\n#.#..#.#\n#.#..#.#\n###..###\n"
	level01    = "###....#\n#.#....#\n#.#....#\n#.#....#\n###....#\n"
	level15    = "..#..###\n..#..#..\n..#..###\n..#....#\n..#..###\n"
)

func TestAdjustment(t *testing.T) {
	d, bus := newDev(t, nil)
	if d.Brightness() != Auto {
		t.Fatalf("expected Auto at startup, got %s", d.Brightness())
	}
	if r, err := d.StepAdjustment(Increment); r != Unchanged || err != nil {
		t.Fatalf("step outside a session = %s, %v", r, err)
	}
	if r := d.BeginAdjustment(); r != Changed {
		t.Fatalf("BeginAdjustment() = %s", r)
	}
	if r := d.BeginAdjustment(); r != Unchanged {
		t.Fatalf("second BeginAdjustment() = %s", r)
	}
	if !d.Adjusting() {
		t.Fatal("expected a session")
	}
	for _, c := range corners {
		if !d.TestPixel(c[0], c[1]) {
			t.Errorf("corner (%d, %d) should be lit", c[0], c[1])
		}
	}
	checkLevelRegion(t, d, levelBlank)

	steps := []struct {
		e      Event
		level  Level
		region string
	}{
		{Increment, 0, level00},
		{Increment, 1, level01},
		{Decrement, 0, level00},
		{Decrement, Auto, levelBlank},
		{Decrement, 15, level15},
		{Increment, Auto, levelBlank},
		{None, Auto, levelBlank},
	}
	for i, s := range steps {
		r, err := d.StepAdjustment(s.e)
		if err != nil {
			t.Fatal(err)
		}
		want := Changed
		if s.e == None {
			want = Unchanged
		}
		if r != want {
			t.Errorf("#%d: %s returned %s", i, s.e, r)
		}
		if d.Brightness() != s.level {
			t.Errorf("#%d: level %s, want %s", i, d.Brightness(), s.level)
		}
		checkLevelRegion(t, d, s.region)
	}
	// Manual levels are applied right away, Auto is left to the poll.
	if diff := cmp.Diff([]byte{0, 1, 0, 15}, bus.intensities()); diff != "" {
		t.Errorf("intensities (-want +got):\n%s", diff)
	}
	if r, err := d.StepAdjustment(Confirm); r != Finished || err != nil {
		t.Fatalf("Confirm = %s, %v", r, err)
	}
	if d.Adjusting() {
		t.Error("session should be over")
	}
	if r, _ := d.StepAdjustment(Increment); r != Unchanged || d.Brightness() != Auto {
		t.Error("events after Confirm should be ignored")
	}
}

func TestSetBrightness(t *testing.T) {
	d, bus := newDev(t, nil)
	for _, l := range []Level{-2, 16, 100} {
		if err := d.SetBrightness(l); err == nil {
			t.Errorf("SetBrightness(%d) expected an error", l)
		}
	}
	if err := d.SetBrightness(7); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{7}, bus.intensities()); diff != "" {
		t.Errorf("intensities (-want +got):\n%s", diff)
	}
	if !d.IsEmpty() {
		t.Error("SetBrightness must not draw")
	}
}

func TestPollAutomaticBrightness(t *testing.T) {
	d, bus := newDev(t, nil)
	t0 := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	polls := []struct {
		reading int
		at      time.Duration
	}{
		{5, 0},                         // within the threshold of 0
		{10, 100 * time.Millisecond},   // still within it
		{450, 110 * time.Millisecond},  // 7
		{900, 120 * time.Millisecond},  // too early
		{455, 200 * time.Millisecond},  // within the threshold
		{445, 300 * time.Millisecond},  // within the threshold
		{461, 400 * time.Millisecond},  // 7
		{2000, 500 * time.Millisecond}, // clamped to 15
		{-50, 600 * time.Millisecond},  // clamped to 0
	}
	for _, p := range polls {
		if err := d.PollAutomaticBrightness(p.reading, t0.Add(p.at)); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]byte{7, 7, 15, 0}, bus.intensities()); diff != "" {
		t.Errorf("intensities (-want +got):\n%s", diff)
	}

	// Manual levels ignore the sensor.
	bus.reset()
	if err := d.SetBrightness(3); err != nil {
		t.Fatal(err)
	}
	if err := d.PollAutomaticBrightness(900, t0.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	// Back to Auto, the threshold still applies to the last reading used.
	if err := d.SetBrightness(Auto); err != nil {
		t.Fatal(err)
	}
	if err := d.PollAutomaticBrightness(-45, t0.Add(2*time.Second)); err != nil {
		t.Fatal(err)
	}
	if err := d.PollAutomaticBrightness(300, t0.Add(3*time.Second)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{3, 5}, bus.intensities()); diff != "" {
		t.Errorf("intensities (-want +got):\n%s", diff)
	}
	if !d.IsEmpty() {
		t.Error("automatic brightness must not draw")
	}
}

func TestPollAfterAdjustment(t *testing.T) {
	d, bus := newDev(t, nil)
	t0 := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	if err := d.PollAutomaticBrightness(5, t0); err != nil {
		t.Fatal(err)
	}
	// Auto -> 0 -> Auto through a session.
	d.BeginAdjustment()
	for _, e := range []Event{Increment, Decrement, Confirm} {
		if _, err := d.StepAdjustment(e); err != nil {
			t.Fatal(err)
		}
	}
	if d.Brightness() != Auto {
		t.Fatalf("level %s, want auto", d.Brightness())
	}
	if err := d.PollAutomaticBrightness(6, t0.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	// Only the manual 0 reached the hardware.
	if diff := cmp.Diff([]byte{0}, bus.intensities()); diff != "" {
		t.Errorf("intensities (-want +got):\n%s", diff)
	}
}

func TestBrightnessOpts(t *testing.T) {
	o, err := BrightnessOpts{SensorMin: 100, SensorMax: 300}.withDefaults()
	if err != nil {
		t.Fatal(err)
	}
	if o.Interval != DefaultBrightnessOpts.Interval || o.Threshold != DefaultBrightnessOpts.Threshold {
		t.Errorf("defaults not applied: %+v", o)
	}
	data := []struct {
		reading int
		want    byte
	}{
		{50, 0},
		{100, 0},
		{200, 7},
		{299, 14},
		{300, 15},
		{400, 15},
	}
	for _, line := range data {
		if got := o.intensity(line.reading); got != line.want {
			t.Errorf("intensity(%d) = %d, want %d", line.reading, got, line.want)
		}
	}
	if _, err := (BrightnessOpts{Interval: -time.Second}).withDefaults(); err == nil {
		t.Error("negative interval expected an error")
	}
}

type levelObserver struct {
	NopObserver
	levels []Level
	values []byte
}

func (l *levelObserver) IntensityChanged(level Level, intensity byte) {
	l.levels = append(l.levels, level)
	l.values = append(l.values, intensity)
}

func TestIntensityObserver(t *testing.T) {
	obs := &levelObserver{}
	d, _ := newDev(t, &Opts{Intensity: 0x1f, Observer: obs})
	d.BeginAdjustment()
	if _, err := d.StepAdjustment(Increment); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Level{Auto, 0}, obs.levels); diff != "" {
		t.Errorf("levels (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{0x0f, 0}, obs.values); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
}

func TestStrings(t *testing.T) {
	data := []struct {
		got, want string
	}{
		{Auto.String(), "auto"},
		{Level(12).String(), "12"},
		{Increment.String(), "Increment"},
		{Event(9).String(), "Event(9)"},
		{Finished.String(), "Finished"},
		{Result(-1).String(), "Result(-1)"},
	}
	for _, line := range data {
		if line.got != line.want {
			t.Errorf("got %q, want %q", line.got, line.want)
		}
	}
}

