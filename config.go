package main

import (
	"github.com/retroenv/retrogolib/log"
)

/// CreateLogger creates a logger with the level selected by the options.
///
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()

	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}

	return log.NewWithConfig(cfg)
}
