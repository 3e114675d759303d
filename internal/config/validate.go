package config

import (
	"strings"
	"time"

	"hangtimer/internal/logging"
)

const (
	minFrameMs = 5
	maxFrameMs = 1000
)

// Normalize clamps invalid values and returns a safe copy.
func Normalize(cfg Config) Config {
	switch strings.ToLower(cfg.Store.Driver) {
	case DriverSQLite:
		cfg.Store.Driver = DriverSQLite
	case DriverFile:
		cfg.Store.Driver = DriverFile
	default:
		logging.Warnf("unknown store driver %q, using %s", cfg.Store.Driver, DriverFile)
		cfg.Store.Driver = DriverFile
	}
	if cfg.FrameIntervalMs <= 0 {
		cfg.FrameIntervalMs = int(DefaultFrameInterval / time.Millisecond)
	}
	if cfg.FrameIntervalMs < minFrameMs {
		cfg.FrameIntervalMs = minFrameMs
	}
	if cfg.FrameIntervalMs > maxFrameMs {
		cfg.FrameIntervalMs = maxFrameMs
	}
	if cfg.Web.Addr == "" {
		cfg.Web.Addr = DefaultWebAddr
	}
	if _, _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		cfg.LogLevel = "warn"
	}
	return cfg
}
