package domain

import "errors"

var (
	// ErrInvalidWork indicates a work phase shorter than one second.
	ErrInvalidWork = errors.New("work duration must be at least 1 second")

	// ErrInvalidReps indicates a config without repetitions.
	ErrInvalidReps = errors.New("reps must be at least 1")

	// ErrInvalidSets indicates a config without sets.
	ErrInvalidSets = errors.New("sets must be at least 1")

	// ErrNegativeDuration indicates an optional phase with a negative length.
	ErrNegativeDuration = errors.New("durations must not be negative")

	// ErrEmptyWorkout indicates a workout with no exercises.
	ErrEmptyWorkout = errors.New("workout has no exercises")

	// ErrPresetNotFound indicates an unknown preset id.
	ErrPresetNotFound = errors.New("preset not found")

	// ErrBuiltinPreset indicates an attempt to modify a built-in preset.
	ErrBuiltinPreset = errors.New("built-in presets cannot be deleted")

	// ErrEmptyPresetName indicates a save without a name.
	ErrEmptyPresetName = errors.New("preset name is required")

	// ErrWorkoutNotFound indicates an unknown workout id.
	ErrWorkoutNotFound = errors.New("workout not found")

	// ErrUnknownAction indicates a control action the engine does not know.
	ErrUnknownAction = errors.New("unknown action")
)
