package store

import (
	"fmt"
	"io"

	"hangtimer/internal/config"
)

// Handle is the store the application talks to: an AsyncWriter over the
// configured backend. Close flushes pending writes and releases the backend.
type Handle struct {
	*AsyncWriter
	backend io.Closer
}

// Close flushes and closes the backend.
func (h *Handle) Close() error {
	_ = h.AsyncWriter.Close()
	if h.backend == nil {
		return nil
	}
	return h.backend.Close()
}

// Open builds the backend selected by cfg.Store.
func Open(cfg config.Config) (*Handle, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		s, err := OpenSQLiteStore(cfg.StorePath())
		if err != nil {
			return nil, err
		}
		return &Handle{AsyncWriter: NewAsyncWriter(s), backend: s}, nil
	case config.DriverFile, "":
		s, err := NewFileStore(cfg.StorePath())
		if err != nil {
			return nil, err
		}
		return &Handle{AsyncWriter: NewAsyncWriter(s)}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
