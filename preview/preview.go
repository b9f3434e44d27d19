// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package preview mirrors what a dotmatrix displays over HTTP. Client
// requests get an initial snapshot of the committed frame and are updated
// further on every flush that changed it.
//
// The primary use case is the development of faces and animations on a host
// machine, together with the emulator. Devices with network connectivity
// can also use it to show their matrix on a web page.
//
// Two transports are provided. The Preview itself is an http.Handler
// sending "MJPEG" (https://en.wikipedia.org/wiki/Motion_JPEG), a
// multipart stream of images. PNG is used by default, JPEG can be selected
// via Options.Format or using the "format" URL parameter. WebSocket returns
// a handler sending the raw register values instead, see Marshal.
package preview

import (
	"image"
	"net/http"
	"sync"

	"github.com/GermanBionicSystems/ledmatrix/dotmatrix"
	"github.com/rs/zerolog"
)

// Options for a Preview.
type Options struct {
	// Scale is the size in pixels of one LED in the images. Defaults to 16.
	Scale int
	// Style of the images.
	Style Style
	// Format specifies the image format to send to clients.
	Format ImageFormat
	// Log receives request errors. Nil discards them.
	Log *zerolog.Logger
}

// Preview is a dotmatrix.Observer keeping a copy of the committed frame
// and serving it to HTTP clients.
type Preview struct {
	dotmatrix.NopObserver

	defaultFormat ImageFormat
	style         Style
	scale         int
	log           zerolog.Logger

	mu        sync.Mutex
	frame     dotmatrix.Frame
	intensity byte
	rendered  image.Image
	clients   map[*client]struct{}
	snapshot  map[imageConfig][]byte
}

var _ dotmatrix.Observer = (*Preview)(nil)
var _ http.Handler = (*Preview)(nil)

// New creates a new Preview showing a blank matrix.
func New(opt *Options) *Preview {
	if opt == nil {
		opt = &Options{}
	}
	scale := opt.Scale
	if scale <= 0 {
		scale = 16
	}
	log := zerolog.Nop()
	if opt.Log != nil {
		log = *opt.Log
	}
	return &Preview{
		defaultFormat: opt.Format,
		style:         opt.Style,
		scale:         scale,
		log:           log,
		intensity:     dotmatrix.DefaultIntensity,
		clients:       map[*client]struct{}{},
		snapshot:      map[imageConfig][]byte{},
	}
}

// String returns the name of the device.
func (p *Preview) String() string {
	return "Preview"
}

// Halt implements conn.Resource and terminates all running client requests
// asynchronously.
func (p *Preview) Halt() error {
	p.mu.Lock()
	p.terminateClientsLocked()
	p.mu.Unlock()
	return nil
}

// Bounds returns the size of the images sent to clients.
func (p *Preview) Bounds() image.Rectangle {
	return image.Rect(0, 0, dotmatrix.Width*p.scale, dotmatrix.Height*p.scale)
}

// Frame returns the last committed frame and intensity received.
func (p *Preview) Frame() (dotmatrix.Frame, byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame, p.intensity
}

// Flushed implements dotmatrix.Observer.
func (p *Preview) Flushed(frames int, committed dotmatrix.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if committed == p.frame {
		return
	}
	p.frame = committed
	p.changedLocked()
}

// IntensityChanged implements dotmatrix.Observer.
func (p *Preview) IntensityChanged(level dotmatrix.Level, intensity byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if intensity == p.intensity {
		return
	}
	p.intensity = intensity
	p.changedLocked()
}

// imageLocked returns the rendering of the current frame.
func (p *Preview) imageLocked() image.Image {
	if p.rendered == nil {
		p.rendered = render(p.style, &p.frame, p.intensity, p.scale)
	}
	return p.rendered
}
