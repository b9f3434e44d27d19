// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ledmatrix is a container for the packages driving a 16x16 LED
// matrix built from four daisy-chained MAX7219 modules.
//
// max7219 speaks the chip protocol over a write-only bus, dotmatrix keeps
// the frame buffer and only sends what changed, and emulator, bitbang and
// preview are alternative buses and observers. faces and life draw on the
// matrix. cmd/ledmatrix puts it all together.
package ledmatrix
