// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package preview

import (
	"errors"
	"net/http"
	"time"

	"github.com/GermanBionicSystems/ledmatrix/dotmatrix"
	"github.com/GermanBionicSystems/ledmatrix/max7219"
	"github.com/gorilla/websocket"
)

// FrameSize is the size of a websocket message: the digit registers of
// unit 0 to 3, then the intensity.
const FrameSize = dotmatrix.Chips*max7219.Digits + 1

// Marshal encodes a frame as sent to websocket clients.
func Marshal(f *dotmatrix.Frame, intensity byte) []byte {
	b := make([]byte, 0, FrameSize)
	for chip := range f {
		b = append(b, f[chip][:]...)
	}
	return append(b, intensity)
}

// Unmarshal decodes a websocket message.
func Unmarshal(b []byte) (dotmatrix.Frame, byte, error) {
	var f dotmatrix.Frame
	if len(b) != FrameSize {
		return f, 0, errors.New("preview: invalid frame size")
	}
	for chip := range f {
		copy(f[chip][:], b[chip*max7219.Digits:])
	}
	return f, b[FrameSize-1], nil
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// WebSocket returns a handler upgrading requests to websockets. Clients get
// a binary message with the current frame right away and one more after
// every change.
func (p *Preview) WebSocket() http.Handler {
	return http.HandlerFunc(p.serveWebSocket)
}

func (p *Preview) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied.
		return
	}
	defer conn.Close()

	c := newClient()
	p.addClient(c)
	defer p.removeClient(c)

	// Nothing is expected from the client; reading processes control
	// frames and notices when it goes away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		f, intensity := p.Frame()
		if err := conn.WriteMessage(websocket.BinaryMessage, Marshal(&f, intensity)); err != nil {
			return
		}
		select {
		case <-c.refresh:
		case <-c.terminate:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
