// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package preview

import (
	"fmt"
	"strings"
)

// ImageFormat is the encoding of the images sent to clients.
type ImageFormat int

// Supported formats.
const (
	PNG ImageFormat = iota
	JPEG

	// DefaultFormat is used when neither the options nor the request
	// select one.
	DefaultFormat = PNG
)

var formats = [...]struct {
	name     string
	mimeType string
	aliases  []string
}{
	PNG:  {"PNG", "image/png", []string{"png"}},
	JPEG: {"JPEG", "image/jpeg", []string{"jpeg", "jpg"}},
}

func (f ImageFormat) valid() bool {
	return f >= 0 && int(f) < len(formats)
}

func (f ImageFormat) String() string {
	if !f.valid() {
		return fmt.Sprint(int(f))
	}
	return formats[f].name
}

func (f ImageFormat) mimeType() string {
	if !f.valid() {
		return "application/octet-stream"
	}
	return formats[f].mimeType
}

// ImageFormatFromString parses a format name as used in the "format" query
// parameter. It is case insensitive and the empty string selects
// DefaultFormat.
func ImageFormatFromString(value string) (ImageFormat, error) {
	if value == "" {
		return DefaultFormat, nil
	}
	value = strings.ToLower(value)
	for f, desc := range formats {
		for _, a := range desc.aliases {
			if a == value {
				return ImageFormat(f), nil
			}
		}
	}
	return DefaultFormat, fmt.Errorf("preview: unrecognized image format %q", value)
}
