package domain

import (
	"errors"
	"time"
)

// ErrKeyNotFound is returned by KeyValueStore.Get for a missing key.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is a secondary port for persisting opaque string blobs.
// This interface is defined in the domain layer and implemented by adapters.
type KeyValueStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Notifier is a secondary port receiving engine events for audio or visual
// feedback. Implementations must not block and must swallow their own failures.
type Notifier interface {
	Notify(event Event)
}

// Clock is a secondary port providing monotonic time and a frame ticker.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers frame timestamps until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TimerRepository persists presets, workouts and settings.
// Load methods degrade to defaults instead of failing.
type TimerRepository interface {
	LoadPresets() []Preset
	SavePresets(presets []Preset) error
	LoadWorkouts() []Workout
	SaveWorkouts(workouts []Workout) error
	LoadSettings() Settings
	SaveSettings(settings Settings) error
}
