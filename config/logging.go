// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/lokal/textdomain"
	"codeberg.org/lokal/textdomain/catalog"
)

// setupLogging applies the log level and format and rebuilds the package
// subloggers so they pick up the configured output.
func (cfg *Config) setupLogging() {
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		switch cfg.Log.Level {
		case "debug":
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		case "info":
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		case "warn":
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		case "error":
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		default:
		}
	}

	if cfg.Log.Format == "json" {
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(ConsoleWriter(os.Stderr))
	}

	textdomain.Logger = log.With().Str("sys", "textdomain").Logger()
	catalog.Logger = log.With().Str("sys", "catalog").Logger()
}

// isTerminal returns true if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd())
}

// ConsoleWriter returns a writer for zerolog that has NoColor:isTerminal(f).
func ConsoleWriter(f *os.File) io.Writer {
	return zerolog.ConsoleWriter{Out: f, NoColor: !isTerminal(f), TimeFormat: time.DateTime}
}
