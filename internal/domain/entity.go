package domain

import (
	"fmt"
	"time"
)

// WorkoutConfig represents the user-chosen parameters of an interval workout.
// All durations are whole seconds.
type WorkoutConfig struct {
	PrepareSeconds int `json:"prepareSeconds" toml:"prepare"`
	WorkSeconds    int `json:"workSeconds" toml:"work"`
	RestSeconds    int `json:"restSeconds" toml:"rest"`
	Reps           int `json:"reps" toml:"reps"`
	Sets           int `json:"sets" toml:"sets"`
	SetRestSeconds int `json:"setRestSeconds" toml:"set_rest"`
}

// Input bounds applied by Clamp.
const (
	MaxPrepareSeconds = 600
	MaxWorkSeconds    = 120
	MaxRestSeconds    = 120
	MaxReps           = 30
	MaxSets           = 20
	MaxSetRestSeconds = 1200
)

// Validate checks if the configuration can be turned into a sequence.
func (c WorkoutConfig) Validate() error {
	if c.WorkSeconds < 1 {
		return ErrInvalidWork
	}
	if c.Reps < 1 {
		return ErrInvalidReps
	}
	if c.Sets < 1 {
		return ErrInvalidSets
	}
	if c.PrepareSeconds < 0 || c.RestSeconds < 0 || c.SetRestSeconds < 0 {
		return ErrNegativeDuration
	}
	return nil
}

// Clamp returns a copy with every field forced into its input range.
func (c WorkoutConfig) Clamp() WorkoutConfig {
	return WorkoutConfig{
		PrepareSeconds: clampInt(c.PrepareSeconds, 0, MaxPrepareSeconds),
		WorkSeconds:    clampInt(c.WorkSeconds, 1, MaxWorkSeconds),
		RestSeconds:    clampInt(c.RestSeconds, 0, MaxRestSeconds),
		Reps:           clampInt(c.Reps, 1, MaxReps),
		Sets:           clampInt(c.Sets, 1, MaxSets),
		SetRestSeconds: clampInt(c.SetRestSeconds, 0, MaxSetRestSeconds),
	}
}

// DefaultConfig returns the standard 7/3 repeater configuration.
func DefaultConfig() WorkoutConfig {
	return WorkoutConfig{
		PrepareSeconds: 10,
		WorkSeconds:    7,
		RestSeconds:    3,
		Reps:           6,
		Sets:           3,
		SetRestSeconds: 180,
	}
}

// SegmentKind identifies the phase a segment belongs to.
type SegmentKind int

const (
	KindPrepare SegmentKind = iota
	KindWork
	KindRest
	KindSetRest
)

func (k SegmentKind) String() string {
	switch k {
	case KindPrepare:
		return "prepare"
	case KindWork:
		return "work"
	case KindRest:
		return "rest"
	case KindSetRest:
		return "setrest"
	default:
		return "unknown"
	}
}

// MarshalText lets kinds travel as their names in JSON.
func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name written by MarshalText.
func (k *SegmentKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "prepare":
		*k = KindPrepare
	case "work":
		*k = KindWork
	case "rest":
		*k = KindRest
	case "setrest":
		*k = KindSetRest
	default:
		return fmt.Errorf("unknown segment kind %q", text)
	}
	return nil
}

// Segment is one timed phase of a sequence. Segments are never mutated once built.
type Segment struct {
	Kind    SegmentKind `json:"kind"`
	Label   string      `json:"label"`
	Seconds int         `json:"seconds"`
}

// Duration returns the segment length as a time.Duration.
func (s Segment) Duration() time.Duration {
	return time.Duration(s.Seconds) * time.Second
}

// Exercise is one block of a multi-exercise workout.
type Exercise struct {
	Name        string `json:"name" toml:"name"`
	WorkSeconds int    `json:"workSeconds" toml:"work"`
	RestSeconds int    `json:"restSeconds" toml:"rest"`
	Sets        int    `json:"sets" toml:"sets"`
	Load        string `json:"load,omitempty" toml:"load"`
}

// Workout is a named protocol made of several exercises.
type Workout struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Exercises   []Exercise `json:"exercises"`
	Builtin     bool       `json:"builtin"`
}

// Validate checks that every exercise can be sequenced.
func (w Workout) Validate() error {
	if len(w.Exercises) == 0 {
		return ErrEmptyWorkout
	}
	for _, ex := range w.Exercises {
		if ex.WorkSeconds < 1 {
			return ErrInvalidWork
		}
		if ex.Sets < 1 {
			return ErrInvalidSets
		}
		if ex.RestSeconds < 0 {
			return ErrNegativeDuration
		}
	}
	return nil
}

// Clamp returns a copy with every field forced into its input range. Exercise
// rest doubles as the break between exercises, so it shares the set rest bound.
func (ex Exercise) Clamp() Exercise {
	ex.WorkSeconds = clampInt(ex.WorkSeconds, 1, MaxWorkSeconds)
	ex.RestSeconds = clampInt(ex.RestSeconds, 0, MaxSetRestSeconds)
	ex.Sets = clampInt(ex.Sets, 1, MaxSets)
	return ex
}

// Clamp returns a copy of w with every exercise clamped.
func (w Workout) Clamp() Workout {
	exercises := make([]Exercise, len(w.Exercises))
	for i, ex := range w.Exercises {
		exercises[i] = ex.Clamp()
	}
	w.Exercises = exercises
	return w
}

// Preset is a named, persisted WorkoutConfig.
type Preset struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Config    WorkoutConfig `json:"config"`
	Builtin   bool          `json:"builtin"`
	CreatedAt time.Time     `json:"createdAt,omitempty"`
}

// Settings are the user-facing timer preferences.
type Settings struct {
	SoundEnabled       bool    `json:"soundEnabled"`
	Volume             float64 `json:"volume"`
	Theme              string  `json:"theme"`
	CountdownInPrepare bool    `json:"countdownInPrepare"`
	CatchUp            bool    `json:"catchUp"`
	PrepareSeconds     int     `json:"prepareSeconds"`
	LastPresetID       string  `json:"lastPresetId"`
}

// Sound themes understood by the notifiers.
const (
	ThemeClassic = "classic"
	ThemeDigital = "digital"
	ThemeGong    = "gong"
)

// DefaultSettings returns the initial timer preferences.
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:       true,
		Volume:             0.6,
		Theme:              ThemeClassic,
		CountdownInPrepare: true,
		PrepareSeconds:     5,
		LastPresetID:       BuiltinPresets()[0].ID,
	}
}

// Normalize clamps settings into their valid ranges.
func (s Settings) Normalize() Settings {
	if s.Volume < 0 {
		s.Volume = 0
	}
	if s.Volume > 1 {
		s.Volume = 1
	}
	switch s.Theme {
	case ThemeClassic, ThemeDigital, ThemeGong:
	default:
		s.Theme = ThemeClassic
	}
	s.PrepareSeconds = clampInt(s.PrepareSeconds, 0, MaxPrepareSeconds)
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
