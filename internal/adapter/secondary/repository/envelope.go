package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrFutureVersion indicates a blob written by a newer release.
var ErrFutureVersion = errors.New("document version is newer than supported")

// envelope is the on-disk wrapper around every persisted document.
type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// migration upgrades data from version N to N+1.
type migration func(data json.RawMessage) (json.RawMessage, error)

// document describes one persisted key and how to upgrade its old versions.
type document struct {
	key     string
	version int
	// upgrades[i] upgrades version i+1 to i+2.
	upgrades []migration
}

// decode unwraps raw and migrates it to the current version. A blob that is
// not an envelope is treated as version 1 data.
func (d document) decode(raw string) (json.RawMessage, error) {
	data := json.RawMessage(raw)
	version := 1

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Version > 0 && env.Data != nil {
			data = env.Data
			version = env.Version
		}
	}

	if version > d.version {
		return nil, fmt.Errorf("%s v%d: %w", d.key, version, ErrFutureVersion)
	}
	for v := version; v < d.version; v++ {
		upgrade := d.upgrades[v-1]
		next, err := upgrade(data)
		if err != nil {
			return nil, fmt.Errorf("%s: migrate v%d: %w", d.key, v, err)
		}
		data = next
	}
	return data, nil
}

// encode wraps value in an envelope at the current version.
func (d document) encode(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", d.key, err)
	}
	out, err := json.Marshal(envelope{Version: d.version, Data: data})
	if err != nil {
		return "", fmt.Errorf("marshal %s envelope: %w", d.key, err)
	}
	return string(out), nil
}
