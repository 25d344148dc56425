package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "CHATX_CONFIG"

type Config struct {
	DBPath    string       `toml:"db_path"    validate:"required"`
	OutputDir string       `toml:"output_dir" validate:"required"`
	Roots     []string     `toml:"roots"`
	Export    ExportConfig `toml:"export"`
	Log       LogConfig    `toml:"log"`
}

type ExportConfig struct {
	Formats []string `toml:"formats" validate:"dive,oneof=json csv yaml"`
}

type LogConfig struct {
	Level  string `toml:"level"  validate:"required,oneof=debug info warn error"`
	Format string `toml:"format" validate:"required,oneof=text json"`
}

// Default returns the configuration used when no file is present.
func Default(home string) *Config {
	return &Config{
		DBPath:    filepath.Join(home, ".config", "chatx", "chatx.db"),
		OutputDir: "output",
		Export:    ExportConfig{Formats: []string{"json", "csv"}},
		Log:       LogConfig{Level: "warn", Format: "text"},
	}
}

// Path returns the config file location.
func Path(home string) string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return expandHome(p, home)
	}
	return filepath.Join(home, ".config", "chatx", "config.toml")
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(Path(home), home)
}

// LoadFile decodes path over the defaults. A missing file is not an error.
func LoadFile(path, home string) (*Config, error) {
	cfg := Default(home)

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// expand ~ in paths
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.OutputDir = expandHome(cfg.OutputDir, home)
	for i, r := range cfg.Roots {
		cfg.Roots[i] = expandHome(r, home)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ExportEnabled reports whether the named export format may be used.
// JSON is always available.
func (c *Config) ExportEnabled(name string) bool {
	if name == "json" {
		return true
	}
	for _, f := range c.Export.Formats {
		if f == name {
			return true
		}
	}
	return false
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
