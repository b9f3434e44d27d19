// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package preview

import (
	"fmt"
	"mime"
	"net/http"
	"net/textproto"
	"net/url"
)

type imageConfig struct {
	format ImageFormat
}

func (p *Preview) configFromQuery(values url.Values) (imageConfig, error) {
	cfg := imageConfig{format: p.defaultFormat}
	if value := values.Get("format"); value != "" {
		format, err := ImageFormatFromString(value)
		if err != nil {
			return imageConfig{}, err
		}
		cfg.format = format
	}
	return cfg, nil
}

// client is a running request, either a multipart stream or a websocket.
type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

func newClient() *client {
	return &client{
		refresh:   make(chan struct{}, 1),
		terminate: make(chan struct{}, 1),
	}
}

func (p *Preview) addClient(c *client) {
	p.mu.Lock()
	p.clients[c] = struct{}{}
	p.mu.Unlock()
}

func (p *Preview) removeClient(c *client) {
	p.mu.Lock()
	delete(p.clients, c)
	p.mu.Unlock()
}

// changedLocked drops the cached encodings and wakes up every client.
func (p *Preview) changedLocked() {
	p.rendered = nil
	for cfg, buffer := range p.snapshot {
		if buffer != nil {
			//lint:ignore SA6002 buffer is []byte and thus pointer-like
			bufferPool.Put(buffer)
		}
		delete(p.snapshot, cfg)
	}
	for c := range p.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
}

func (p *Preview) terminateClientsLocked() {
	for c := range p.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
}

// grabSnapshot returns a copy of the current image in the requested format.
// The caller should return it to bufferPool.
func (p *Preview) grabSnapshot(cfg imageConfig) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	encoded, ok := p.snapshot[cfg]
	if !ok {
		var err error
		if encoded, err = encode(p.imageLocked(), cfg.format); err != nil {
			return nil, err
		}
		p.snapshot[cfg] = encoded
	}
	return append(bufferPool.Get().([]byte)[:0], encoded...), nil
}

// ServeHTTP handles HTTP GET requests and sends a stream of images
// representing the matrix in response. The options control the default
// format and clients can explicitly request PNG or JPEG images using the
// "format" parameter ("?format=png", "?format=jpeg").
func (p *Preview) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.Body.Close(); err != nil {
		p.log.Warn().Err(err).Msg("closing request body failed")
	}
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	cfg, err := p.configFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pw := newPartWriter(w)
	w.Header().Set("Content-Type",
		mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{
			"boundary": pw.boundary,
		}))

	c := newClient()
	p.addClient(c)
	defer p.removeClient(c)

	partHeaders := make(textproto.MIMEHeader)
	partHeaders.Set("Content-Type", cfg.format.mimeType())
	partHeaders.Set("Content-Transfer-Encoding", "binary")

	for {
		payload, err := p.grabSnapshot(cfg)
		if err != nil {
			http.Error(w, fmt.Sprintf("encoding image failed: %v", err), http.StatusInternalServerError)
			return
		}
		err = pw.writePart(partHeaders, payload)
		//lint:ignore SA6002 buffer is []byte and thus pointer-like
		bufferPool.Put(payload)
		if err != nil {
			// There's no way to deliver an error message to the client
			// within an image stream.
			return
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}
