// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Unset values stay nil so
// that callers can tell them apart from explicit zero values.
type FileConfig struct {
	Storage StorageConfig `toml:"storage"`
	Counter CounterConfig `toml:"counter"`
	Todo    TodoConfig    `toml:"todo"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
}

// StorageConfig selects the blob backend for persisted screens.
type StorageConfig struct {
	Backend *string  `toml:"backend"`
	Path    *string  `toml:"path"`
	DSN     *string  `toml:"dsn"`
	Codec   *string  `toml:"codec"`
	Key     *string  `toml:"key"`
	S3      S3Config `toml:"s3"`
}

// S3Config maps the object storage settings.
type S3Config struct {
	Bucket    *string `toml:"bucket"`
	Region    *string `toml:"region"`
	Endpoint  *string `toml:"endpoint"`
	Prefix    *string `toml:"prefix"`
	PathStyle *bool   `toml:"path-style"`
}

// CounterConfig maps counter screen settings.
type CounterConfig struct {
	AsyncDelay *Duration `toml:"async-delay"`
}

// TodoConfig maps todo screen settings.
type TodoConfig struct {
	Latency *Duration `toml:"latency"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// MetricsConfig maps the metrics endpoint.
type MetricsConfig struct {
	Addr *string `toml:"addr"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
