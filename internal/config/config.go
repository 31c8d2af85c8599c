package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override, e.g. PALEDIT_SAVE_DIR.
const EnvPrefix = "PALEDIT_"

// DefaultPath is used when PALEDIT_CONFIG is unset.
const DefaultPath = "config/paledit.toml"

type Config struct {
	Save      SaveConfig      `toml:"save" envPrefix:"SAVE_"`
	Data      DataConfig      `toml:"data" envPrefix:"DATA_"`
	I18n      I18nConfig      `toml:"i18n" envPrefix:"I18N_"`
	Journal   JournalConfig   `toml:"journal" envPrefix:"JOURNAL_"`
	Scripting ScriptingConfig `toml:"scripting" envPrefix:"SCRIPTING_"`
	Logging   LoggingConfig   `toml:"logging" envPrefix:"LOG_"`
}

type SaveConfig struct {
	Dir         string `toml:"dir" env:"DIR"`                   // world folder holding Level.sav
	PlayerDir   string `toml:"player_dir" env:"PLAYER_DIR"`     // relative to Dir unless absolute
	Backup      bool   `toml:"backup" env:"BACKUP"`             // write <file>.bak before overwriting
	MaxInflated int64  `toml:"max_inflated" env:"MAX_INFLATED"` // bytes per inflate round, 0 = codec default
}

type DataConfig struct {
	Dir string `toml:"dir" env:"DIR"`
}

type I18nConfig struct {
	Language string `toml:"language" env:"LANGUAGE"` // BCP 47 tag, matched against the table languages
}

type JournalConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Path    string `toml:"path" env:"PATH"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir" env:"DIR"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"` // "json" or "console"
}

// Path returns the config file to load.
func Path() string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadDotEnv loads .env into the process environment if present. Variables
// already set win.
func LoadDotEnv(path string) (bool, error) {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", path, err)
	}
	return true, nil
}

// Load reads path over the defaults and then applies PALEDIT_* overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Save: SaveConfig{
			Dir:       ".",
			PlayerDir: "Players",
			Backup:    true,
		},
		Data: DataConfig{
			Dir: "data/yaml",
		},
		I18n: I18nConfig{
			Language: "en",
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "paledit.db",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
