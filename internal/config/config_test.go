package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hangtimer/internal/domain"
)

func TestFileStore_LoadDefaultsWhenMissing(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "config.yaml"))
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 16*time.Millisecond, cfg.FrameInterval())
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Store = StoreConfig{Driver: DriverSQLite, Path: "/tmp/x.db"}
	cfg.Web.Addr = ":9000"
	cfg.FrameIntervalMs = 33
	cfg.Notify.Desktop = true
	require.NoError(t, store.Save(cfg))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestFileStore_ClampsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "store:\n  driver: redis\nframeIntervalMs: 1\nlogLevel: loud\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	store, err := NewFileStore(path)
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, minFrameMs, cfg.FrameIntervalMs)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, DefaultWebAddr, cfg.Web.Addr)
}

func TestFileStore_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o644))
	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
}

func TestFileStore_EnvOverrides(t *testing.T) {
	t.Setenv("HANGTIMER_STORE_DRIVER", "sqlite")
	t.Setenv("HANGTIMER_WEB_ADDR", ":7000")
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, ":7000", cfg.Web.Addr)
	assert.Equal(t, "hangtimer.db", filepath.Base(cfg.StorePath()))
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestParsePlan_Config(t *testing.T) {
	plan, err := ParsePlan([]byte(`
name = "Quick"
prepare = 3

[config]
work = 500
rest = 3
reps = 6
sets = 2
set_rest = 60
`))
	require.NoError(t, err)
	assert.False(t, plan.IsWorkout())
	require.NotNil(t, plan.Config)
	assert.Equal(t, domain.WorkoutConfig{
		PrepareSeconds: 3, WorkSeconds: domain.MaxWorkSeconds, RestSeconds: 3,
		Reps: 6, Sets: 2, SetRestSeconds: 60,
	}, *plan.Config)
	assert.Len(t, plan.Sequence(0), 1+2*11+1)
}

func TestParsePlan_Exercises(t *testing.T) {
	plan, err := ParsePlan([]byte(`
name = "Tuesday"

[[exercise]]
name = "Half crimp"
work = 7
rest = 3
sets = 2

[[exercise]]
name = "Open hand"
work = 10
sets = 1
load = "+5kg"
`))
	require.NoError(t, err)
	assert.True(t, plan.IsWorkout())
	assert.Equal(t, "Tuesday", plan.Workout().Name)
	assert.Equal(t, "+5kg", plan.Exercises[1].Load)

	seq := plan.Sequence(5)
	require.Len(t, seq, 6)
	assert.Equal(t, domain.KindPrepare, seq[0].Kind)
	assert.Equal(t, domain.KindSetRest, seq[4].Kind)
}

func TestParsePlan_ClampsExercises(t *testing.T) {
	plan, err := ParsePlan([]byte(`
[[exercise]]
name = "Forever"
work = 9999999999
rest = 99999
sets = 500
`))
	require.NoError(t, err)
	assert.Equal(t, domain.Exercise{
		Name: "Forever", WorkSeconds: domain.MaxWorkSeconds,
		RestSeconds: domain.MaxSetRestSeconds, Sets: domain.MaxSets,
	}, plan.Exercises[0])
}

func TestParsePlan_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", `name = "x"`, ErrEmptyPlan},
		{"both", "[config]\nwork = 5\nreps = 1\nsets = 1\n[[exercise]]\nwork = 5\nsets = 1\n", ErrAmbiguousPlan},
		{"invalid exercise", "[[exercise]]\nwork = 0\nsets = 1\n", domain.ErrInvalidWork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := ParsePlan([]byte("[config]\nwrok = 5\n"))
	assert.Error(t, err, "unknown keys rejected")
}

func TestLoadPlan_NameFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monday.toml")
	require.NoError(t, os.WriteFile(path, []byte("[config]\nwork = 7\nreps = 1\nsets = 1\n"), 0o644))

	plan, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, "monday", plan.Name)
}
