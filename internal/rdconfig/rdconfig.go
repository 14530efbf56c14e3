// Package rdconfig loads ddreduce's TOML configuration file, in the style
// of the teacher's tqw package (BurntSushi/toml struct-tag unmarshaling).
package rdconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is ddreduce's on-disk configuration.
type Config struct {
	Build    BuildConfig    `toml:"build"`
	History  HistoryConfig  `toml:"history"`
	Server   ServerConfig   `toml:"server"`
	Report   ReportConfig   `toml:"report"`
}

// BuildConfig names the external build driver.
type BuildConfig struct {
	// Command is the executable to invoke, e.g. "cargo".
	Command string `toml:"command"`
	// Args are extra arguments inserted before the "build" verb.
	Args []string `toml:"args"`
	// TimeoutSeconds bounds how long a single build invocation may run;
	// zero means no timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// HistoryConfig configures the run-history store.
type HistoryConfig struct {
	// Enabled turns on recording each run to the sqlite store.
	Enabled bool `toml:"enabled"`
	// DBPath is the sqlite database file path.
	DBPath string `toml:"db_path"`
}

// ServerConfig configures the optional status/control HTTP server.
type ServerConfig struct {
	// Addr is a listen address, e.g. ":8080". cmd/ddreduce does not read
	// it; the server's address comes from the --serve flag.
	Addr string `toml:"addr"`
	// TriggerSecretHash is the bcrypt hash of the secret that gates POST
	// /trigger.
	TriggerSecretHash string `toml:"trigger_secret_hash"`
}

// ReportConfig configures report signing.
type ReportConfig struct {
	// Sign turns on producing a signed attestation alongside the text
	// report using JWTSecret.
	Sign bool `toml:"sign"`
	// JWTSecret is the HS512 key used to sign attestations when Sign is
	// true.
	JWTSecret string `toml:"jwt_secret"`
}

// Default returns a Config with the teacher's convention of a sane,
// entirely-optional-feature default: just enough to run a reduction with
// no history, no server, and no signing.
func Default() Config {
	return Config{
		Build: BuildConfig{Command: "cargo"},
	}
}

// Load reads and parses the TOML configuration file at path.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Build.Command == "" {
		return cfg, fmt.Errorf("config %s: build.command must not be empty", path)
	}

	return cfg, nil
}
