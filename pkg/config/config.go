// Package config loads the optional user configuration from
// ~/.config/codebased/config.toml (per-OS user config dir).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// Theme holds the interface colors as hex strings.
type Theme struct {
	Background string `toml:"background"`
	Surface    string `toml:"surface"`
	Primary    string `toml:"primary"`
	Secondary  string `toml:"secondary"`
	Accent     string `toml:"accent"`
	Error      string `toml:"error"`
}

// Config holds the application's configurable settings.
type Config struct {
	OutputFilename string   `toml:"output_filename"`
	IgnorePatterns []string `toml:"ignore_patterns"`
	IncludeHidden  *bool    `toml:"include_hidden"`
	MaxFileSizeKB  *int     `toml:"max_file_size_kb"`
	Theme          Theme    `toml:"theme"`
}

// Default configuration values. The theme matches the palette of the
// original desktop app.
var defaultConfig = Config{
	OutputFilename: "codebase.txt",
	IgnorePatterns: []string{},
	IncludeHidden:  boolPtr(false),
	MaxFileSizeKB:  intPtr(1024),
	Theme: Theme{
		Background: "#1B211A",
		Surface:    "#2A3129",
		Primary:    "#628141",
		Secondary:  "#8BAE66",
		Accent:     "#EBD5AB",
		Error:      "#C44536",
	},
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

// Default returns a copy of the built-in defaults.
func Default() Config {
	return defaultConfig
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults without error; an unreadable or
// malformed file yields the defaults plus the error.
func Load(path string, logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := defaultConfig

	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			logger.Warn("Could not determine user config directory, using defaults", zap.Error(err))
			return cfg, nil
		}
		path = filepath.Join(configDir, "codebased", "config.toml")
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("No config file found, using defaults", zap.String("path", path))
			return cfg, nil
		}
		logger.Warn("Error checking config file, using defaults", zap.String("path", path), zap.Error(err))
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Failed to read config file", zap.String("path", path), zap.Error(err))
		return defaultConfig, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	loaded := defaultConfig
	if _, err := toml.Decode(string(content), &loaded); err != nil {
		logger.Error("Failed to decode config file", zap.String("path", path), zap.Error(err))
		return defaultConfig, fmt.Errorf("error decoding TOML from %s: %w", path, err)
	}

	// Fill anything the file left unset.
	if loaded.OutputFilename == "" {
		loaded.OutputFilename = defaultConfig.OutputFilename
	}
	if loaded.IncludeHidden == nil {
		loaded.IncludeHidden = defaultConfig.IncludeHidden
	}
	if loaded.MaxFileSizeKB == nil {
		loaded.MaxFileSizeKB = defaultConfig.MaxFileSizeKB
	}
	fillTheme(&loaded.Theme, defaultConfig.Theme)

	logger.Info("Loaded configuration", zap.String("path", path))
	return loaded, nil
}

func fillTheme(t *Theme, def Theme) {
	if t.Background == "" {
		t.Background = def.Background
	}
	if t.Surface == "" {
		t.Surface = def.Surface
	}
	if t.Primary == "" {
		t.Primary = def.Primary
	}
	if t.Secondary == "" {
		t.Secondary = def.Secondary
	}
	if t.Accent == "" {
		t.Accent = def.Accent
	}
	if t.Error == "" {
		t.Error = def.Error
	}
}

// MaxFileSizeBytes converts the configured cutoff to bytes; 0 disables it.
func (c Config) MaxFileSizeBytes() int64 {
	if c.MaxFileSizeKB == nil || *c.MaxFileSizeKB <= 0 {
		return 0
	}
	return int64(*c.MaxFileSizeKB) * 1024
}
