package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers understood by the persistence layer.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config represents the application settings shared by the CLI and web server.
// Timer preferences (sound, theme, presets) live in the key-value store instead.
type Config struct {
	Store           StoreConfig  `yaml:"store"`
	Web             WebConfig    `yaml:"web"`
	FrameIntervalMs int          `yaml:"frameIntervalMs"`
	Notify          NotifyConfig `yaml:"notify"`
	LogLevel        string       `yaml:"logLevel"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type WebConfig struct {
	Addr string `yaml:"addr"`
}

type NotifyConfig struct {
	Terminal bool `yaml:"terminal"`
	Desktop  bool `yaml:"desktop"`
}

var (
	// DefaultFrameInterval is roughly one display frame at 60Hz.
	DefaultFrameInterval = 16 * time.Millisecond
	// DefaultWebAddr is where `serve` listens when not configured.
	DefaultWebAddr = "127.0.0.1:8787"
)

// DefaultConfig returns the initial configuration.
func DefaultConfig() Config {
	return Config{
		Store:           StoreConfig{Driver: DriverFile},
		Web:             WebConfig{Addr: DefaultWebAddr},
		FrameIntervalMs: int(DefaultFrameInterval / time.Millisecond),
		Notify:          NotifyConfig{Terminal: true, Desktop: false},
		LogLevel:        "warn",
	}
}

// FrameInterval returns the session tick period.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

// StorePath returns the configured store location or the per-driver default.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return DefaultStorePath(c.Store.Driver)
}

// Store persists configuration to disk so CLI and web share it.
type Store interface {
	Load() (Config, error)
	Save(Config) error
}

// FileStore implements Store using a YAML file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store under the supplied path. Parent directories are created automatically.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the configuration file or returns defaults if it does not exist.
// Environment overrides are applied last.
func (s *FileStore) Load() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := DefaultConfig()
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return Normalize(cfg), nil
}

// Save writes the configuration to disk atomically.
func (s *FileStore) Save(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename tmp: %w", err)
	}
	return nil
}

// applyEnvOverrides lets HANGTIMER_* variables win over the file:
//
//	HANGTIMER_STORE_DRIVER, HANGTIMER_STORE_PATH,
//	HANGTIMER_WEB_ADDR, HANGTIMER_FRAME_MS, HANGTIMER_LOG_LEVEL
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HANGTIMER_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("HANGTIMER_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("HANGTIMER_WEB_ADDR"); v != "" {
		cfg.Web.Addr = v
	}
	if v := os.Getenv("HANGTIMER_FRAME_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.FrameIntervalMs = ms
		}
	}
	if v := os.Getenv("HANGTIMER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
