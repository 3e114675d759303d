package config

import (
	"os"
	"path/filepath"
)

const appDir = "hangtimer"

// Dir returns ~/.config/hangtimer (or the working directory as fallback).
func Dir() string {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".config", appDir)
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "."+appDir)
}

// DefaultPath returns ~/.config/hangtimer/config.yaml.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultStorePath returns the timer data location for a store driver.
func DefaultStorePath(driver string) string {
	if driver == DriverSQLite {
		return filepath.Join(Dir(), "hangtimer.db")
	}
	return filepath.Join(Dir(), "store.json")
}
