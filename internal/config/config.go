// Package config loads the service's config.json, seeding it with
// defaults the first time it's read — the same "read it, and if it isn't
// there yet, write the default and read it back" idiom
// original_source/src/app_state.rs uses for its config and boards files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the service's config.json shape: { port, save_interval }.
type Config struct {
	Port             int `mapstructure:"port"`
	SaveIntervalSecs int `mapstructure:"save_interval"`
}

// SaveInterval returns the configured save interval as a time.Duration.
func (c Config) SaveInterval() time.Duration {
	return time.Duration(c.SaveIntervalSecs) * time.Second
}

// Default returns the configuration written the first time the service
// runs with no config.json present.
func Default() Config {
	return Config{Port: 8080, SaveIntervalSecs: 300}
}

// Load reads path, creating it with Default's values if it doesn't exist.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("port", cfg.Port)
	v.Set("save_interval", cfg.SaveIntervalSecs)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write default %s: %w", path, err)
	}
	return nil
}
