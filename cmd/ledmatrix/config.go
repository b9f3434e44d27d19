// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/GermanBionicSystems/ledmatrix/dotmatrix"
	"github.com/GermanBionicSystems/ledmatrix/faces"
	"github.com/GermanBionicSystems/ledmatrix/preview"
	"gopkg.in/yaml.v3"
)

// BusConfig selects how the chain is driven.
type BusConfig struct {
	// Kind is one of "spi", "gpiocdev" or "emulator".
	Kind string `yaml:"kind"`
	// SPI port name for spireg; empty selects the first one.
	SPI string `yaml:"spi"`
	// Load pin name for gpioreg; empty relies on the port's CS line.
	Load string `yaml:"load"`
	// GPIO character device lines for "gpiocdev".
	Chip     string `yaml:"chip"`
	Data     int    `yaml:"data"`
	Clock    int    `yaml:"clock"`
	LoadLine int    `yaml:"load_line"`
	// Order is the transmission order of the units.
	Order []int `yaml:"order,omitempty"`
}

// ButtonsConfig names the three push buttons. They are active low with the
// internal pull-up enabled. Empty names disable the buttons.
type ButtonsConfig struct {
	Mode     string        `yaml:"mode"`
	Plus     string        `yaml:"plus"`
	Minus    string        `yaml:"minus"`
	Debounce time.Duration `yaml:"debounce"`
	// Hold is how long Mode must be held to adjust the brightness.
	Hold time.Duration `yaml:"hold"`
}

// PhotocellConfig is the ADS1115 channel reading the ambient light.
type PhotocellConfig struct {
	I2C     string `yaml:"i2c"`
	Enabled bool   `yaml:"enabled"`
	Channel int    `yaml:"channel"`
	// Readings are scaled to 0..1023 before being fed to the brightness
	// controller; Min and Max are in that scale.
	Min int `yaml:"min"`
	Max int `yaml:"max"`
	// Threshold and Interval must be positive.
	Threshold int           `yaml:"threshold"`
	Interval  time.Duration `yaml:"interval"`
}

// ThermometerConfig is the DS18B20 on a 1-wire bus.
type ThermometerConfig struct {
	OneWire    string        `yaml:"onewire"`
	Enabled    bool          `yaml:"enabled"`
	Resolution int           `yaml:"resolution"`
	Interval   time.Duration `yaml:"interval"`
}

// ModesConfig is how long each screen is shown before moving to the next
// one. A zero duration skips the screen.
type ModesConfig struct {
	Auto        bool          `yaml:"auto"`
	Life        time.Duration `yaml:"life"`
	Clock       time.Duration `yaml:"clock"`
	Date        time.Duration `yaml:"date"`
	Temperature time.Duration `yaml:"temperature"`
}

// ClockConfig tunes the clock and date screens.
type ClockConfig struct {
	Binary bool `yaml:"binary"`
	// AutoStyle alternates digits and binary each time the clock is shown.
	AutoStyle bool   `yaml:"auto_style"`
	DateOrder string `yaml:"date_order"`
}

// LifeConfig tunes the Game of Life screen.
type LifeConfig struct {
	// Speed is a knob position in [0, 1], see life.Interval.
	Speed float64 `yaml:"speed"`
}

// PreviewConfig enables the HTTP preview when Addr is set.
type PreviewConfig struct {
	Addr   string `yaml:"addr"`
	Style  string `yaml:"style"`
	Format string `yaml:"format"`
	Scale  int    `yaml:"scale"`
}

// Config is the content of the configuration file.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	Intensity int    `yaml:"intensity"`
	// TestPattern is how long each LED stays lit by the startup test
	// pattern. Zero skips it.
	TestPattern time.Duration     `yaml:"test_pattern"`
	Bus         BusConfig         `yaml:"bus"`
	Buttons     ButtonsConfig     `yaml:"buttons"`
	Photocell   PhotocellConfig   `yaml:"photocell"`
	Thermometer ThermometerConfig `yaml:"thermometer"`
	Modes       ModesConfig       `yaml:"modes"`
	Clock       ClockConfig       `yaml:"clock"`
	Life        LifeConfig        `yaml:"life"`
	Preview     PreviewConfig     `yaml:"preview"`
	// StateFile keeps the brightness level across restarts. Empty disables
	// it.
	StateFile string `yaml:"state_file"`
}

// Default returns the configuration used for missing settings.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		Intensity:   int(dotmatrix.DefaultIntensity),
		TestPattern: 45 * time.Millisecond,
		Bus:         BusConfig{Kind: "emulator", Chip: "gpiochip0"},
		Buttons: ButtonsConfig{
			Debounce: 10 * time.Millisecond,
			Hold:     2 * time.Second,
		},
		Photocell: PhotocellConfig{
			Min:       dotmatrix.DefaultBrightnessOpts.SensorMin,
			Max:       dotmatrix.DefaultBrightnessOpts.SensorMax,
			Threshold: dotmatrix.DefaultBrightnessOpts.Threshold,
			Interval:  dotmatrix.DefaultBrightnessOpts.Interval,
		},
		Thermometer: ThermometerConfig{Resolution: 12, Interval: 5 * time.Second},
		Modes: ModesConfig{
			Auto:        true,
			Life:        30 * time.Second,
			Clock:       30 * time.Second,
			Date:        5 * time.Second,
			Temperature: 5 * time.Second,
		},
		Clock: ClockConfig{DateOrder: "dmy"},
		Life:  LifeConfig{Speed: 0.25},
		Preview: PreviewConfig{
			Style:  "dots",
			Format: "png",
			Scale:  16,
		},
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks values that can't be used as is.
func (c *Config) Validate() error {
	switch c.Bus.Kind {
	case "spi", "gpiocdev", "emulator":
	default:
		return fmt.Errorf("unknown bus kind %q", c.Bus.Kind)
	}
	if c.Intensity < 0 || c.Intensity > int(dotmatrix.MaxLevel) {
		return fmt.Errorf("intensity %d out of range", c.Intensity)
	}
	if c.Photocell.Enabled && (c.Photocell.Channel < 0 || c.Photocell.Channel > 3) {
		return fmt.Errorf("photocell channel %d out of range", c.Photocell.Channel)
	}
	if c.Photocell.Max <= c.Photocell.Min {
		return errors.New("photocell max must be above min")
	}
	if c.Photocell.Threshold <= 0 || c.Photocell.Interval <= 0 {
		return errors.New("photocell threshold and interval must be positive")
	}
	if c.TestPattern < 0 {
		return errors.New("negative test pattern delay")
	}
	if c.Thermometer.Enabled && (c.Thermometer.Resolution < 9 || c.Thermometer.Resolution > 12) {
		return fmt.Errorf("thermometer resolution %d out of range", c.Thermometer.Resolution)
	}
	m := c.Modes
	if m.Life < 0 || m.Clock < 0 || m.Date < 0 || m.Temperature < 0 {
		return errors.New("negative mode duration")
	}
	if m.Life == 0 && m.Clock == 0 && m.Date == 0 && m.Temperature == 0 {
		return errors.New("every mode is disabled")
	}
	if _, err := c.dateOrder(); err != nil {
		return err
	}
	if _, err := preview.StyleFromString(c.Preview.Style); err != nil {
		return err
	}
	if _, err := preview.ImageFormatFromString(c.Preview.Format); err != nil {
		return err
	}
	return nil
}

func (c *Config) dateOrder() (faces.DateOrder, error) {
	switch c.Clock.DateOrder {
	case "dmy", "":
		return faces.DMY, nil
	case "mdy":
		return faces.MDY, nil
	}
	return faces.DMY, fmt.Errorf("unknown date order %q", c.Clock.DateOrder)
}

// brightnessOpts returns the automatic brightness tuning.
func (c *Config) brightnessOpts() dotmatrix.BrightnessOpts {
	return dotmatrix.BrightnessOpts{
		Interval:  c.Photocell.Interval,
		Threshold: c.Photocell.Threshold,
		SensorMin: c.Photocell.Min,
		SensorMax: c.Photocell.Max,
	}
}

// state is what is persisted in StateFile.
type state struct {
	Brightness string `yaml:"brightness"`
}

func loadBrightness(path string) (dotmatrix.Level, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return dotmatrix.Auto, err
	}
	var s state
	if err := yaml.Unmarshal(b, &s); err != nil {
		return dotmatrix.Auto, fmt.Errorf("%s: %w", path, err)
	}
	return parseLevel(s.Brightness)
}

func saveBrightness(path string, l dotmatrix.Level) error {
	b, err := yaml.Marshal(&state{Brightness: l.String()})
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func parseLevel(s string) (dotmatrix.Level, error) {
	if s == "auto" || s == "" {
		return dotmatrix.Auto, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > int(dotmatrix.MaxLevel) {
		return dotmatrix.Auto, fmt.Errorf("invalid brightness %q", s)
	}
	return dotmatrix.Level(v), nil
}
