// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package preview

import "testing"

func TestImageFormat(t *testing.T) {
	data := []struct {
		f        ImageFormat
		name     string
		mimeType string
	}{
		{PNG, "PNG", "image/png"},
		{JPEG, "JPEG", "image/jpeg"},
		{ImageFormat(2), "2", "application/octet-stream"},
		{ImageFormat(-1), "-1", "application/octet-stream"},
	}
	for _, line := range data {
		if got := line.f.String(); got != line.name {
			t.Errorf("String() = %q, want %q", got, line.name)
		}
		if got := line.f.mimeType(); got != line.mimeType {
			t.Errorf("%s.mimeType() = %q, want %q", line.name, got, line.mimeType)
		}
	}
	if DefaultFormat != PNG {
		t.Error("PNG should be the default")
	}
}

func TestImageFormatFromString(t *testing.T) {
	for _, tc := range []struct {
		value   string
		want    ImageFormat
		wantErr bool
	}{
		{value: "", want: PNG},
		{value: "png", want: PNG},
		{value: "jpg", want: JPEG},
		{value: "jpeg", want: JPEG},
		{value: "JPG", want: JPEG},
		{value: "bmp", want: DefaultFormat, wantErr: true},
	} {
		got, err := ImageFormatFromString(tc.value)
		if got != tc.want || (err != nil) != tc.wantErr {
			t.Errorf("ImageFormatFromString(%q) = %s, %v", tc.value, got, err)
		}
	}
}

func TestStyleFromString(t *testing.T) {
	for _, tc := range []struct {
		value   string
		want    Style
		wantErr bool
	}{
		{value: "", want: Dots},
		{value: "dots", want: Dots},
		{value: "blocks", want: Blocks},
		{value: "hexagons", want: Dots, wantErr: true},
	} {
		got, err := StyleFromString(tc.value)
		if got != tc.want || (err != nil) != tc.wantErr {
			t.Errorf("StyleFromString(%q) = %s, %v", tc.value, got, err)
		}
	}
}
