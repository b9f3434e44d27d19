// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package life runs Conway's Game of Life (B3/S23) on a 16x16 dotmatrix.
//
// The frame buffer is the board: cells are read with TestPixel and written
// with SetPixel. The board does not wrap around; cells outside of it are
// dead.
package life

import (
	"math/rand"
	"time"
)

// Size is the width and height of the board.
const Size = 16

// MaxGenerations is the number of generations after which AutoReset seeds
// a new board. Small boards often end up in a cycle.
const MaxGenerations = 95

// Canvas is the subset of *dotmatrix.Dev the game runs on.
type Canvas interface {
	SetPixel(x, y int, on bool)
	TestPixel(x, y int) bool
	IsEmpty() bool
}

// Game is a board and its generation counter.
type Game struct {
	c          Canvas
	rnd        *rand.Rand
	generation int
	last       time.Time
	board      [Size][Size]bool
}

// New returns a Game on c. rnd is used by Seed; nil uses a source seeded
// with the current time.
func New(c Canvas, rnd *rand.Rand) *Game {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Game{c: c, rnd: rnd}
}

// Generation returns the number of steps since the last Seed or
// ResetGeneration.
func (g *Game) Generation() int {
	return g.generation
}

// ResetGeneration restarts the generation count, e.g. when the board is
// shown again after another screen.
func (g *Game) ResetGeneration() {
	g.generation = 0
}

// Seed fills the board randomly, each cell alive with a probability of 1/2.
func (g *Game) Seed() {
	g.generation = 0
	for x := range Size {
		for y := range Size {
			g.c.SetPixel(x, y, g.rnd.Intn(2) == 0)
		}
	}
}

// Step computes the next generation.
func (g *Game) Step() {
	g.generation++
	for x := range Size {
		for y := range Size {
			g.board[x][y] = g.c.TestPixel(x, y)
		}
	}
	for x := range Size {
		for y := range Size {
			n := g.neighbors(x, y)
			switch alive := g.board[x][y]; {
			case alive && (n < 2 || n > 3):
				g.c.SetPixel(x, y, false)
			case !alive && n == 3:
				g.c.SetPixel(x, y, true)
			}
		}
	}
}

func (g *Game) neighbors(x, y int) int {
	n := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			nx, ny := x+dx, y+dy
			if (dx != 0 || dy != 0) && nx >= 0 && nx < Size && ny >= 0 && ny < Size && g.board[nx][ny] {
				n++
			}
		}
	}
	return n
}

// AutoReset seeds a new board when the current one is empty or has run for
// more than MaxGenerations. It reports whether it did.
func (g *Game) AutoReset() bool {
	if g.generation > MaxGenerations || g.c.IsEmpty() {
		g.Seed()
		return true
	}
	return false
}

// Tick steps the game if interval elapsed since the previous step. It
// reports whether the board changed.
func (g *Game) Tick(now time.Time, interval time.Duration) bool {
	if !g.last.IsZero() && now.Sub(g.last) < interval {
		return false
	}
	g.Step()
	g.last = now
	return true
}

// Interval maps a speed knob position in [0, 1] to the time between two
// generations: the lower half covers 10ms to 200ms, the upper half 200ms
// to 5s.
func Interval(knob float64) time.Duration {
	knob = min(max(knob, 0), 1)
	if knob < 0.5 {
		return 10*time.Millisecond + time.Duration(knob/0.5*float64(190*time.Millisecond))
	}
	return 200*time.Millisecond + time.Duration((knob-0.5)/0.5*float64(4800*time.Millisecond))
}
