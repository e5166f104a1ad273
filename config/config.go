// Package config loads client-tunable knobs from an optional TOML file,
// the format github.com/dsmmcken/dh-cli uses for its VM manifests, via
// github.com/pelletier/go-toml/v2. It also seeds the process environment
// from an optional .env file with github.com/joho/godotenv, the way
// ClusterCockpit/cc-backend loads local development configuration, so the
// PIPEWIRE_RUNTIME_DIR / XDG_RUNTIME_DIR / USERPROFILE variables consulted
// by wire.Discover can be supplied without touching the real shell
// environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the client-tunable knobs described in the ambient
// configuration section: buffer capacities, trace output directory, and
// log level.
type Config struct {
	// LogLevel is a logrus level name ("debug", "info", "warn", ...).
	LogLevel string `toml:"log_level"`

	// TraceDir is a directory for frame indexes and zstd-compressed
	// payload captures (see the trace package). It is loaded but not read
	// by any other package in this module.
	TraceDir string `toml:"trace_dir"`

	// PortBufferCapacity is the default number of buffer slots reserved
	// per port when none is negotiated explicitly.
	PortBufferCapacity int `toml:"port_buffer_capacity"`
}

// Default returns the configuration used when no TOML file is present.
func Default() Config {
	return Config{
		LogLevel:           "info",
		TraceDir:           "",
		PortBufferCapacity: 8,
	}
}

// Load reads path as TOML into a Config, starting from Default. A missing
// file is not an error — Default() alone is returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file (if present) into the process environment,
// the same optional-local-development step cc-backend performs before
// reading its own configuration. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}
