package usecase

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hangtimer/internal/domain"
	"hangtimer/internal/logging"
)

// PresetUseCase manages presets, workouts and timer settings.
// Built-ins come from the domain catalog; user entries go through the repository.
type PresetUseCase struct {
	repo  domain.TimerRepository
	now   func() time.Time
	newID func() string

	mu       sync.RWMutex
	presets  []domain.Preset
	workouts []domain.Workout
	settings domain.Settings
}

// NewPresetUseCase loads user data from repo.
func NewPresetUseCase(repo domain.TimerRepository) *PresetUseCase {
	return &PresetUseCase{
		repo:     repo,
		now:      time.Now,
		newID:    func() string { return "user-" + uuid.NewString() },
		presets:  repo.LoadPresets(),
		workouts: repo.LoadWorkouts(),
		settings: repo.LoadSettings(),
	}
}

// List returns built-in presets followed by user presets.
func (p *PresetUseCase) List() []domain.Preset {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := domain.BuiltinPresets()
	return append(out, p.presets...)
}

// Get looks up a preset by id.
func (p *PresetUseCase) Get(id string) (domain.Preset, error) {
	for _, preset := range p.List() {
		if preset.ID == id {
			return preset, nil
		}
	}
	return domain.Preset{}, fmt.Errorf("%w: %s", domain.ErrPresetNotFound, id)
}

// Current returns the last selected preset, or the first built-in.
func (p *PresetUseCase) Current() domain.Preset {
	p.mu.RLock()
	id := p.settings.LastPresetID
	p.mu.RUnlock()
	preset, err := p.Get(id)
	if err != nil {
		return domain.BuiltinPresets()[0]
	}
	return preset
}

// Save stores cfg under name and selects it. An existing user preset with the
// same name is replaced.
func (p *PresetUseCase) Save(name string, cfg domain.WorkoutConfig) (domain.Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Preset{}, domain.ErrEmptyPresetName
	}
	if err := cfg.Validate(); err != nil {
		return domain.Preset{}, err
	}
	preset := domain.Preset{
		ID:        p.newID(),
		Name:      name,
		Config:    cfg.Clamp(),
		CreatedAt: p.now().UTC(),
	}

	p.mu.Lock()
	kept := make([]domain.Preset, 0, len(p.presets)+1)
	for _, existing := range p.presets {
		if existing.Name == name {
			logging.Debugf("presets: replacing %s (%s)", existing.ID, name)
			continue
		}
		kept = append(kept, existing)
	}
	p.presets = append(kept, preset)
	p.settings.LastPresetID = preset.ID
	presets, settings := p.copyPresets(), p.settings
	p.mu.Unlock()

	if err := p.repo.SavePresets(presets); err != nil {
		return preset, err
	}
	return preset, p.repo.SaveSettings(settings)
}

// Delete removes a user preset. Deleting the selected preset reselects the
// first built-in.
func (p *PresetUseCase) Delete(id string) error {
	if domain.IsBuiltinPreset(id) {
		return domain.ErrBuiltinPreset
	}

	p.mu.Lock()
	idx := -1
	for i, existing := range p.presets {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrPresetNotFound, id)
	}
	p.presets = append(p.presets[:idx:idx], p.presets[idx+1:]...)
	reselected := p.settings.LastPresetID == id
	if reselected {
		p.settings.LastPresetID = domain.BuiltinPresets()[0].ID
	}
	presets, settings := p.copyPresets(), p.settings
	p.mu.Unlock()

	if err := p.repo.SavePresets(presets); err != nil {
		return err
	}
	if reselected {
		return p.repo.SaveSettings(settings)
	}
	return nil
}

// Select remembers id as the last used preset and returns it.
func (p *PresetUseCase) Select(id string) (domain.Preset, error) {
	preset, err := p.Get(id)
	if err != nil {
		return domain.Preset{}, err
	}
	_, err = p.UpdateSettings(func(s *domain.Settings) {
		s.LastPresetID = preset.ID
	})
	return preset, err
}

// Workouts returns built-in workouts followed by user workouts.
func (p *PresetUseCase) Workouts() []domain.Workout {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := domain.BuiltinWorkouts()
	return append(out, p.workouts...)
}

// Workout looks up a workout by id.
func (p *PresetUseCase) Workout(id string) (domain.Workout, error) {
	w, err := domain.FindWorkout(p.Workouts(), id)
	if err != nil {
		return domain.Workout{}, fmt.Errorf("%w: %s", err, id)
	}
	return w, nil
}

// SaveWorkout stores a user workout, replacing one with the same name.
func (p *PresetUseCase) SaveWorkout(w domain.Workout) (domain.Workout, error) {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return domain.Workout{}, domain.ErrEmptyPresetName
	}
	if err := w.Validate(); err != nil {
		return domain.Workout{}, err
	}
	w = w.Clamp()
	w.ID = p.newID()
	w.Builtin = false

	p.mu.Lock()
	kept := make([]domain.Workout, 0, len(p.workouts)+1)
	for _, existing := range p.workouts {
		if existing.Name != w.Name {
			kept = append(kept, existing)
		}
	}
	p.workouts = append(kept, w)
	workouts := make([]domain.Workout, len(p.workouts))
	copy(workouts, p.workouts)
	p.mu.Unlock()

	return w, p.repo.SaveWorkouts(workouts)
}

// Settings returns the current timer settings.
func (p *PresetUseCase) Settings() domain.Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// UpdateSettings applies mutate, normalizes and persists the result.
func (p *PresetUseCase) UpdateSettings(mutate func(*domain.Settings)) (domain.Settings, error) {
	p.mu.Lock()
	next := p.settings
	mutate(&next)
	next = next.Normalize()
	p.settings = next
	p.mu.Unlock()

	return next, p.repo.SaveSettings(next)
}

func (p *PresetUseCase) copyPresets() []domain.Preset {
	out := make([]domain.Preset, len(p.presets))
	copy(out, p.presets)
	return out
}
