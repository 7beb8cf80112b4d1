// Package config is the ConfigStore: it loads and saves HandlerConfig
// and the per-acquisitor-kind AcquisitorConfig variants as independent
// TOML files under the user's config directory, falling back to
// documented defaults whenever a file is missing or unreadable.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// dirName is the application's subdirectory under the OS config root.
const dirName = "rosa"

// Store reads and writes rosa's TOML configuration files. The zero value
// is not usable; construct with New or NewAt.
type Store struct {
	dir string
}

// New returns a Store rooted at $HOME/.config/rosa, falling back to the
// current directory if the home directory cannot be determined — the
// same fallback the original backend used.
func New() *Store {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Store{dir: "."}
	}
	return &Store{dir: filepath.Join(home, ".config", dirName)}
}

// NewAt returns a Store rooted at an explicit directory, used by the CLI's
// --config-dir override and by tests.
func NewAt(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory this store reads and writes under.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// decodeHook enables text-unmarshaling enum fields (DetectionKind) when
// viper hands mapstructure a decoded TOML map.
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
}

func load(path string, out any) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := v.Unmarshal(out, decodeHook()); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func save(path string, in any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory for %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	var asMap map[string]any
	if err := mapstructure.Decode(in, &asMap); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := v.MergeConfigMap(asMap); err != nil {
		return fmt.Errorf("merging %s: %w", path, err)
	}

	return v.WriteConfigAs(path)
}

// LoadHandlerConfig reads handler.toml, falling back to
// DefaultHandlerConfig for any field the file omits and for the whole
// struct if the file is missing.
func (s *Store) LoadHandlerConfig() (HandlerConfig, error) {
	cfg := DefaultHandlerConfig()
	if err := load(s.path("handler.toml"), &cfg); err != nil {
		return DefaultHandlerConfig(), err
	}
	return cfg, nil
}

// SaveHandlerConfig persists cfg to handler.toml, creating the config
// directory if it doesn't exist yet.
func (s *Store) SaveHandlerConfig(cfg HandlerConfig) error {
	return save(s.path("handler.toml"), cfg)
}

// LoadFileWatcherConfig reads file_reader.toml.
func (s *Store) LoadFileWatcherConfig() (FileWatcherConfig, error) {
	cfg := DefaultFileWatcherConfig()
	if err := load(s.path(acquisitorConfigFile(KindFileWatcher)), &cfg); err != nil {
		return DefaultFileWatcherConfig(), err
	}
	return cfg, nil
}

// SaveFileWatcherConfig persists cfg to file_reader.toml.
func (s *Store) SaveFileWatcherConfig(cfg FileWatcherConfig) error {
	return save(s.path(acquisitorConfigFile(KindFileWatcher)), cfg)
}

// LoadSerialConfig reads imon.toml.
func (s *Store) LoadSerialConfig() (SerialConfig, error) {
	cfg := DefaultSerialConfig()
	if err := load(s.path(acquisitorConfigFile(KindSerial)), &cfg); err != nil {
		return DefaultSerialConfig(), err
	}
	return cfg, nil
}

// SaveSerialConfig persists cfg to imon.toml.
func (s *Store) SaveSerialConfig(cfg SerialConfig) error {
	return save(s.path(acquisitorConfigFile(KindSerial)), cfg)
}

// LoadSyntheticConfig reads example.toml.
func (s *Store) LoadSyntheticConfig() (SyntheticConfig, error) {
	cfg := DefaultSyntheticConfig()
	if err := load(s.path(acquisitorConfigFile(KindSynthetic)), &cfg); err != nil {
		return DefaultSyntheticConfig(), err
	}
	return cfg, nil
}

// SaveSyntheticConfig persists cfg to example.toml.
func (s *Store) SaveSyntheticConfig(cfg SyntheticConfig) error {
	return save(s.path(acquisitorConfigFile(KindSynthetic)), cfg)
}
