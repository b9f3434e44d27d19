// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package preview

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/textproto"
	"sort"
	"strconv"
)

// randomBoundary generates a MIME multipart boundary compatible with RFC 2046
// (section 5.1.1).
func randomBoundary() string {
	var buf [30]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf[:])
}

// partWriter writes a never ending multipart/x-mixed-replace body.
//
// mime/multipart.Writer only writes the closing boundary of a part when the
// next one starts, so a client would always be one image late.
type partWriter struct {
	w        io.Writer
	boundary string
	started  bool
	buf      bytes.Buffer
}

func newPartWriter(w io.Writer) *partWriter {
	return &partWriter{w: w, boundary: randomBoundary()}
}

// writePart sends body as a complete part, closing boundary included. A
// Content-Length header is added to header.
func (p *partWriter) writePart(header textproto.MIMEHeader, body []byte) error {
	header.Set("Content-Length", strconv.Itoa(len(body)))
	p.buf.Reset()
	if !p.started {
		fmt.Fprintf(&p.buf, "--%s\r\n", p.boundary)
		p.started = true
	}
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range header[k] {
			fmt.Fprintf(&p.buf, "%s: %s\r\n", k, v)
		}
	}
	p.buf.WriteString("\r\n")
	p.buf.Write(body)
	fmt.Fprintf(&p.buf, "\r\n--%s\r\n", p.boundary)
	_, err := p.buf.WriteTo(p.w)
	return err
}
