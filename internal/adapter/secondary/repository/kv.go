package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hangtimer/internal/domain"
	"hangtimer/internal/logging"
)

// Keys under which documents are stored.
const (
	KeyPresets  = "hangtimer.presets"
	KeySettings = "hangtimer.settings"
	KeyWorkouts = "hangtimer.workouts"
)

var (
	presetsDoc = document{
		key:      KeyPresets,
		version:  2,
		upgrades: []migration{migratePresetsV1},
	}
	settingsDoc = document{
		key:      KeySettings,
		version:  2,
		upgrades: []migration{migrateSettingsV1},
	}
	workoutsDoc = document{
		key:     KeyWorkouts,
		version: 1,
	}
)

// KVRepository implements domain.TimerRepository on a key-value store.
// This is a secondary adapter.
type KVRepository struct {
	kv domain.KeyValueStore
}

// NewKVRepository creates a repository over kv.
func NewKVRepository(kv domain.KeyValueStore) *KVRepository {
	return &KVRepository{kv: kv}
}

// persistedPreset represents one user preset inside the v2 document.
type persistedPreset struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Config    domain.WorkoutConfig `json:"config"`
	CreatedAt string               `json:"createdAt,omitempty"`
}

// legacyPreset is the v1 shape: a bare array with short field names.
type legacyPreset struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Config struct {
		PrepSec    int `json:"prepSec"`
		WorkSec    int `json:"workSec"`
		RestSec    int `json:"restSec"`
		Reps       int `json:"reps"`
		Sets       int `json:"sets"`
		SetRestSec int `json:"setRestSec"`
	} `json:"config"`
}

func migratePresetsV1(data json.RawMessage) (json.RawMessage, error) {
	var legacy []legacyPreset
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, err
	}
	out := make([]persistedPreset, 0, len(legacy))
	for _, p := range legacy {
		out = append(out, persistedPreset{
			ID:   p.ID,
			Name: p.Name,
			Config: domain.WorkoutConfig{
				PrepareSeconds: p.Config.PrepSec,
				WorkSeconds:    p.Config.WorkSec,
				RestSeconds:    p.Config.RestSec,
				Reps:           p.Config.Reps,
				Sets:           p.Config.Sets,
				SetRestSeconds: p.Config.SetRestSec,
			},
		})
	}
	return json.Marshal(out)
}

func migrateSettingsV1(data json.RawMessage) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if _, ok := fields["countdownInPrepare"]; !ok {
		fields["countdownInPrepare"] = json.RawMessage("true")
	}
	return json.Marshal(fields)
}

// LoadPresets returns the user presets. Built-ins are not persisted.
func (r *KVRepository) LoadPresets() []domain.Preset {
	data, ok := r.load(presetsDoc)
	if !ok {
		return nil
	}
	var persisted []persistedPreset
	if err := json.Unmarshal(data, &persisted); err != nil {
		logging.Warnf("repository: decode presets: %v", err)
		return nil
	}

	presets := make([]domain.Preset, 0, len(persisted))
	for _, p := range persisted {
		if p.ID == "" || domain.IsBuiltinPreset(p.ID) {
			continue
		}
		preset := domain.Preset{
			ID:     p.ID,
			Name:   p.Name,
			Config: p.Config.Clamp(),
		}
		if p.CreatedAt != "" {
			if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
				preset.CreatedAt = t
			}
		}
		presets = append(presets, preset)
	}
	return presets
}

// SavePresets persists the user presets, skipping built-ins.
func (r *KVRepository) SavePresets(presets []domain.Preset) error {
	persisted := make([]persistedPreset, 0, len(presets))
	for _, p := range presets {
		if p.Builtin {
			continue
		}
		dto := persistedPreset{ID: p.ID, Name: p.Name, Config: p.Config}
		if !p.CreatedAt.IsZero() {
			dto.CreatedAt = p.CreatedAt.UTC().Format(time.RFC3339)
		}
		persisted = append(persisted, dto)
	}
	return r.save(presetsDoc, persisted)
}

// LoadWorkouts returns the user workouts.
func (r *KVRepository) LoadWorkouts() []domain.Workout {
	data, ok := r.load(workoutsDoc)
	if !ok {
		return nil
	}
	var workouts []domain.Workout
	if err := json.Unmarshal(data, &workouts); err != nil {
		logging.Warnf("repository: decode workouts: %v", err)
		return nil
	}
	valid := workouts[:0]
	for _, w := range workouts {
		if err := w.Validate(); err != nil {
			logging.Warnf("repository: skip workout %s: %v", w.ID, err)
			continue
		}
		w = w.Clamp()
		w.Builtin = false
		valid = append(valid, w)
	}
	return valid
}

// SaveWorkouts persists the user workouts.
func (r *KVRepository) SaveWorkouts(workouts []domain.Workout) error {
	return r.save(workoutsDoc, workouts)
}

// LoadSettings returns the stored settings merged over the defaults.
func (r *KVRepository) LoadSettings() domain.Settings {
	settings := domain.DefaultSettings()
	data, ok := r.load(settingsDoc)
	if !ok {
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		logging.Warnf("repository: decode settings: %v", err)
		return domain.DefaultSettings()
	}
	return settings.Normalize()
}

// SaveSettings persists settings.
func (r *KVRepository) SaveSettings(settings domain.Settings) error {
	return r.save(settingsDoc, settings.Normalize())
}

func (r *KVRepository) load(doc document) (json.RawMessage, bool) {
	raw, err := r.kv.Get(doc.key)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			logging.Warnf("repository: read %s: %v", doc.key, err)
		}
		return nil, false
	}
	data, err := doc.decode(raw)
	if err != nil {
		logging.Warnf("repository: %v", err)
		return nil, false
	}
	return data, true
}

func (r *KVRepository) save(doc document, value any) error {
	encoded, err := doc.encode(value)
	if err != nil {
		return err
	}
	if err := r.kv.Set(doc.key, encoded); err != nil {
		return fmt.Errorf("write %s: %w", doc.key, err)
	}
	return nil
}
