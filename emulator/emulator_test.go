// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package emulator

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/ledmatrix/dotmatrix"
	"github.com/GermanBionicSystems/ledmatrix/max7219"
	"github.com/google/go-cmp/cmp"
	"github.com/maruel/ansi256"
)

func TestShift(t *testing.T) {
	d := New(nil)
	// Sent first, lands the furthest from the master.
	for _, w := range []max7219.Word{{Register: 0x4, Data: 4}, {Register: 0x3, Data: 3}, {Register: 0x2, Data: 2}, {Register: 0x1, Data: 1}} {
		if err := d.TransferWord(w.Register, w.Data); err != nil {
			t.Fatal(err)
		}
	}
	if d.Unit(0).Digits != ([max7219.Digits]byte{}) {
		t.Fatal("nothing should be latched before the strobe")
	}
	if err := d.Strobe(); err != nil {
		t.Fatal(err)
	}
	for ix := range dotmatrix.Chips {
		u := d.Unit(ix)
		if u.Digits[ix] != byte(ix+1) {
			t.Errorf("unit %d: digits %v", ix, u.Digits)
		}
	}
	if words, strobes := d.Counts(); words != 4 || strobes != 1 {
		t.Errorf("Counts() = %d, %d", words, strobes)
	}
}

func TestShiftOverflow(t *testing.T) {
	d := New(nil)
	for ix := range 5 {
		_ = d.TransferWord(max7219.RegIntensity, byte(ix))
	}
	_ = d.Strobe()
	var got []byte
	for ix := range dotmatrix.Chips {
		got = append(got, d.Unit(ix).Intensity)
	}
	if diff := cmp.Diff([]byte{4, 3, 2, 1}, got); diff != "" {
		t.Errorf("intensities (-want +got):\n%s", diff)
	}
}

func TestMatrix(t *testing.T) {
	d := New(nil)
	c, err := max7219.NewChain(d, max7219.ReverseOrder(dotmatrix.Chips))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SendAll(max7219.RegDigit0, 0xff); err != nil {
		t.Fatal(err)
	}
	if d.Matrix() != (dotmatrix.Frame{}) {
		t.Error("units in shutdown should be dark")
	}
	if err := c.Init(3); err != nil {
		t.Fatal(err)
	}
	if d.Matrix() != (dotmatrix.Frame{}) {
		t.Error("Init should blank the units")
	}
	if u := d.Unit(2); u.Shutdown || u.Test || u.Intensity != 3 || u.ScanLimit != 7 || u.Decode != 0 {
		t.Errorf("unexpected state after Init: %+v", u)
	}
	if err := c.TestDisplay(true); err != nil {
		t.Fatal(err)
	}
	f := d.Matrix()
	for x := range dotmatrix.Width {
		for y := range dotmatrix.Height {
			if !f.Pixel(x, y) {
				t.Fatalf("test mode should light (%d, %d)", x, y)
			}
		}
	}
	if err := c.TestDisplay(false); err != nil {
		t.Fatal(err)
	}
	// Only scan the first row.
	if err := c.SendAll(max7219.RegScanLimit, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.SendAll(max7219.RegDigit0+1, 0xff); err != nil {
		t.Fatal(err)
	}
	if d.Matrix() != (dotmatrix.Frame{}) {
		t.Error("digits past the scan limit should be dark")
	}
}

// The emulated LEDs always match the committed state of a flushed Dev.
func TestDotmatrix(t *testing.T) {
	e := New(nil)
	d, err := dotmatrix.New(e, nil)
	if err != nil {
		t.Fatal(err)
	}
	rnd := rand.New(rand.NewSource(42))
	for round := range 30 {
		for range rnd.Intn(60) {
			d.SetPixel(rnd.Intn(dotmatrix.Width), rnd.Intn(dotmatrix.Height), rnd.Intn(3) != 0)
		}
		if round == 10 {
			d.SetDigit(13, 11, 7)
		}
		if _, err := d.Flush(); err != nil {
			t.Fatal(err)
		}
		if got, want := e.Matrix(), d.Buffer(); got != want {
			t.Fatalf("round %d: emulated matrix\n%s\nwant\n%s", round, got.String(), want.String())
		}
	}
	if err := d.SetBrightness(11); err != nil {
		t.Fatal(err)
	}
	for ix := range dotmatrix.Chips {
		if i := e.Unit(ix).Intensity; i != 11 {
			t.Errorf("unit %d intensity %d", ix, i)
		}
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if !e.Unit(0).Shutdown {
		t.Error("Halt should shut the units down")
	}
}

func TestRender(t *testing.T) {
	var out bytes.Buffer
	e := New(&Opts{Output: &out})
	d, err := dotmatrix.New(e, &dotmatrix.Opts{Intensity: 15})
	if err != nil {
		t.Fatal(err)
	}
	out.Reset()
	d.SetPixel(0, 0, true)
	d.SetPixel(15, 15, true)
	if _, err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	on := ansi256.Default.Block(ledColor(15))
	off := ansi256.Default.Block(Off)
	if n := strings.Count(s, on); n != 2 {
		t.Errorf("expected 2 lit LEDs, got %d", n)
	}
	if n := strings.Count(s, off); n != dotmatrix.Width*dotmatrix.Height-2 {
		t.Errorf("expected %d unlit LEDs, got %d", dotmatrix.Width*dotmatrix.Height-2, n)
	}
	if !strings.HasPrefix(s, "\033[16A") {
		t.Error("later renderings should redraw in place")
	}
	if n := strings.Count(s, "\n"); n != dotmatrix.Height {
		t.Errorf("expected %d lines, got %d", dotmatrix.Height, n)
	}
	out.Reset()
	if err := e.Halt(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "\033[0m\n" {
		t.Errorf("Halt() wrote %q", out.String())
	}
}

func TestLedColor(t *testing.T) {
	if c := ledColor(0); c.R != 0x40 {
		t.Errorf("ledColor(0) = %v", c)
	}
	if c := ledColor(15); c.R != 0xff {
		t.Errorf("ledColor(15) = %v", c)
	}
}
