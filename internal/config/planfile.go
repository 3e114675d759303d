package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"hangtimer/internal/domain"
)

var (
	// ErrEmptyPlan indicates a plan file with neither [config] nor [[exercise]].
	ErrEmptyPlan = errors.New("plan needs a [config] table or [[exercise]] entries")
	// ErrAmbiguousPlan indicates a plan file with both forms.
	ErrAmbiguousPlan = errors.New("plan cannot mix [config] and [[exercise]]")
)

// Plan is a workout described in a TOML file, either a simple interval
// config or a list of exercises:
//
//	name = "Tuesday"
//	prepare = 10
//
//	[[exercise]]
//	name = "Half crimp (20mm)"
//	work = 7
//	rest = 3
//	sets = 6
type Plan struct {
	Name      string                `toml:"name"`
	Prepare   *int                  `toml:"prepare"`
	Config    *domain.WorkoutConfig `toml:"config"`
	Exercises []domain.Exercise     `toml:"exercise"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}
	plan, err := ParsePlan(data)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", path, err)
	}
	if plan.Name == "" {
		plan.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return plan, nil
}

// ParsePlan decodes plan TOML. Unknown keys are rejected so typos surface.
func ParsePlan(data []byte) (Plan, error) {
	var plan Plan
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&plan); err != nil {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}
	switch {
	case plan.Config == nil && len(plan.Exercises) == 0:
		return Plan{}, ErrEmptyPlan
	case plan.Config != nil && len(plan.Exercises) > 0:
		return Plan{}, ErrAmbiguousPlan
	}
	if plan.Config != nil {
		clamped := plan.Config.Clamp()
		if plan.Prepare != nil {
			clamped.PrepareSeconds = min(max(*plan.Prepare, 0), domain.MaxPrepareSeconds)
		}
		plan.Config = &clamped
		return plan, nil
	}
	if err := plan.Workout().Validate(); err != nil {
		return Plan{}, err
	}
	plan.Exercises = plan.Workout().Clamp().Exercises
	return plan, nil
}

// IsWorkout reports whether the plan lists exercises.
func (p Plan) IsWorkout() bool {
	return len(p.Exercises) > 0
}

// Workout returns the plan as a multi-exercise workout.
func (p Plan) Workout() domain.Workout {
	return domain.Workout{
		ID:        "file",
		Name:      p.Name,
		Exercises: p.Exercises,
	}
}

// PrepareSeconds returns the plan's prepare time or fallback when unset.
func (p Plan) PrepareSeconds(fallback int) int {
	if p.Prepare == nil {
		return fallback
	}
	return min(max(*p.Prepare, 0), domain.MaxPrepareSeconds)
}

// Sequence builds the segments for the plan.
func (p Plan) Sequence(fallbackPrepare int) []domain.Segment {
	if p.Config != nil {
		return domain.BuildSequence(*p.Config)
	}
	return domain.BuildWorkoutSequence(p.Workout(), p.PrepareSeconds(fallbackPrepare))
}
