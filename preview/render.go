// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package preview

import (
	"fmt"
	"image"
	"image/color"

	"github.com/GermanBionicSystems/ledmatrix/dotmatrix"
	"github.com/GermanBionicSystems/ledmatrix/max7219"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// Style selects how LEDs are drawn.
type Style int

const (
	// Dots draws each LED as a disc on a black background, like the real
	// modules.
	Dots Style = iota
	// Blocks fills the whole cell of each LED.
	Blocks
)

func (s Style) String() string {
	switch s {
	case Dots:
		return "dots"
	case Blocks:
		return "blocks"
	default:
		return fmt.Sprint(int(s))
	}
}

// StyleFromString returns the Style for the given name.
func StyleFromString(value string) (Style, error) {
	switch value {
	case "dots", "":
		return Dots, nil
	case "blocks":
		return Blocks, nil
	}
	return Dots, fmt.Errorf("preview: unrecognized style %q", value)
}

var ledOff = color.RGBA{0x30, 0x08, 0x08, 0xff}

// ledOn returns the color of a lit LED at the given intensity.
func ledOn(intensity byte) color.RGBA {
	i := int(intensity & max7219.MaxIntensity)
	return color.RGBA{byte(0x70 + i*0x8f/15), byte(i * 0x30 / 15), 0, 0xff}
}

func render(s Style, f *dotmatrix.Frame, intensity byte, scale int) image.Image {
	if s == Blocks {
		return renderBlocks(f, intensity, scale)
	}
	return renderDots(f, intensity, scale)
}

func renderDots(f *dotmatrix.Frame, intensity byte, scale int) image.Image {
	dc := gg.NewContext(dotmatrix.Width*scale, dotmatrix.Height*scale)
	dc.SetColor(color.Black)
	dc.Clear()
	on := ledOn(intensity)
	r := 0.4 * float64(scale)
	for y := range dotmatrix.Height {
		for x := range dotmatrix.Width {
			if f.Pixel(x, y) {
				dc.SetColor(on)
			} else {
				dc.SetColor(ledOff)
			}
			dc.DrawCircle((float64(x)+0.5)*float64(scale), (float64(y)+0.5)*float64(scale), r)
			dc.Fill()
		}
	}
	return dc.Image()
}

func renderBlocks(f *dotmatrix.Frame, intensity byte, scale int) image.Image {
	src := image.NewRGBA(image.Rect(0, 0, dotmatrix.Width, dotmatrix.Height))
	on := ledOn(intensity)
	for y := range dotmatrix.Height {
		for x := range dotmatrix.Width {
			if f.Pixel(x, y) {
				src.SetRGBA(x, y, on)
			} else {
				src.SetRGBA(x, y, ledOff)
			}
		}
	}
	if scale == 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, dotmatrix.Width*scale, dotmatrix.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
