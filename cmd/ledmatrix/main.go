// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ledmatrix drives a 16x16 LED matrix made of four MAX7219 modules.
//
// It cycles through a Game of Life, a clock, the date and the temperature.
// Holding the Mode button enters the brightness adjustment, where Plus and
// Minus step the level and Mode confirms it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/ledmatrix/bitbang"
	"github.com/GermanBionicSystems/ledmatrix/dotmatrix"
	"github.com/GermanBionicSystems/ledmatrix/emulator"
	"github.com/GermanBionicSystems/ledmatrix/max7219"
	"github.com/GermanBionicSystems/ledmatrix/preview"
	"github.com/maruel/ansi256"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// tick is the period of the main loop.
const tick = 10 * time.Millisecond

// bus is a max7219.Bus that must be released.
type bus interface {
	max7219.Bus
	Halt() error
}

// spiBus closes the port along with the bus.
type spiBus struct {
	*max7219.SPIBus
	close func() error
}

func (s *spiBus) Halt() error {
	return errors.Join(s.SPIBus.Halt(), s.close())
}

func openBus(c *BusConfig) (bus, error) {
	switch c.Kind {
	case "spi":
		p, err := spireg.Open(c.SPI)
		if err != nil {
			return nil, err
		}
		var load gpio.PinOut
		if c.Load != "" {
			if load = gpioreg.ByName(c.Load); load == nil {
				p.Close()
				return nil, fmt.Errorf("no pin %q", c.Load)
			}
		}
		b, err := max7219.NewSPI(p, load)
		if err != nil {
			p.Close()
			return nil, err
		}
		return &spiBus{SPIBus: b, close: p.Close}, nil
	case "gpiocdev":
		return bitbang.Open(bitbang.Pins{Chip: c.Chip, Data: c.Data, Clock: c.Clock, Load: c.LoadLine})
	default:
		return emulator.NewStdout(ansi256.Default), nil
	}
}

func mainImpl() error {
	configPath := flag.String("config", "", "path to the YAML configuration")
	level := flag.String("log-level", "", "log level, overrides the configuration")
	busKind := flag.String("bus", "", "spi, gpiocdev or emulator, overrides the configuration")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg := Default()
	if *configPath != "" {
		c, err := Load(*configPath)
		if err != nil {
			return err
		}
		cfg = c
	}
	if *level != "" {
		cfg.LogLevel = *level
	}
	if *busKind != "" {
		cfg.Bus.Kind = *busKind
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)

	if _, err := host.Init(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := openBus(&cfg.Bus)
	if err != nil {
		return fmt.Errorf("bus %s: %w", cfg.Bus.Kind, err)
	}
	defer b.Halt()
	log.Info().Str("bus", fmt.Sprint(b)).Msg("opened")

	obs := []dotmatrix.Observer{&logObserver{log: log.With().Str("component", "dotmatrix").Logger()}}
	var pv *preview.Preview
	if cfg.Preview.Addr != "" {
		style, _ := preview.StyleFromString(cfg.Preview.Style)
		format, _ := preview.ImageFormatFromString(cfg.Preview.Format)
		pvLog := log.With().Str("component", "preview").Logger()
		pv = preview.New(&preview.Options{Scale: cfg.Preview.Scale, Style: style, Format: format, Log: &pvLog})
		defer pv.Halt()
		obs = append(obs, pv)
	}
	d, err := dotmatrix.New(b, &dotmatrix.Opts{
		Order:      cfg.Bus.Order,
		Intensity:  byte(cfg.Intensity),
		Brightness: cfg.brightnessOpts(),
		Observer:   dotmatrix.MultiObserver(obs...),
	})
	if err != nil {
		return err
	}
	defer d.Halt()
	if cfg.TestPattern > 0 {
		if err := d.TestPattern(cfg.TestPattern); err != nil {
			return err
		}
	}

	a := newApp(d, cfg, nil, log.With().Str("component", "app").Logger())
	if cfg.StateFile != "" {
		l, err := loadBrightness(cfg.StateFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			log.Warn().Err(err).Msg("brightness not restored")
		default:
			if err := d.SetBrightness(l); err != nil {
				return err
			}
		}
		a.saveLevel = func(l dotmatrix.Level) error {
			return saveBrightness(cfg.StateFile, l)
		}
	}

	if pv != nil {
		mux := http.NewServeMux()
		mux.Handle("/", pv)
		mux.Handle("/ws", pv.WebSocket())
		srv := &http.Server{Addr: cfg.Preview.Addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("preview")
			}
		}()
		defer srv.Close()
		log.Info().Str("addr", cfg.Preview.Addr).Msg("preview")
	}

	presses := make(chan press)
	if err := startButtons(ctx, &cfg.Buttons, presses); err != nil {
		return err
	}
	light := make(chan int, 1)
	if cfg.Photocell.Enabled {
		p, closer, err := openPhotocell(&cfg.Photocell)
		if err != nil {
			return err
		}
		defer closer()
		go runPhotocell(ctx, p, cfg.Photocell.Interval, light, log.Logger)
	}
	temps := make(chan physic.Temperature, 1)
	if cfg.Thermometer.Enabled {
		th, closer, err := openThermometer(&cfg.Thermometer)
		if err != nil {
			return err
		}
		defer closer()
		go runThermometer(ctx, th, cfg.Thermometer.Interval, conversionDelay, temps, log.Logger)
	}
	return loop(ctx, a, presses, light, temps)
}

// loop gathers the inputs and steps a every tick until ctx is done.
func loop(ctx context.Context, a *app, presses <-chan press, light <-chan int, temps <-chan physic.Temperature) error {
	t := time.NewTicker(tick)
	defer t.Stop()
	var in input
	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-presses:
			switch {
			case p.b == buttonMode && p.held:
				in.modeHeld = true
			case p.b == buttonMode:
				in.mode = true
			case p.b == buttonPlus:
				in.plus = true
			case p.b == buttonMinus:
				in.minus = true
			}
		case v := <-light:
			in.light, in.hasLight = v, true
		case v := <-temps:
			in.temp, in.hasTemp = v, true
		case now := <-t.C:
			if err := a.step(now, in); err != nil {
				return err
			}
			in = input{}
		}
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ledmatrix: %s.\n", err)
		os.Exit(1)
	}
}
