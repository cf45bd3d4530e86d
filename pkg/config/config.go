// Package config loads octowire settings from a TOML file and the
// environment.
//
// The file lives at $XDG_CONFIG_HOME/octowire/config.toml (falling back to
// ~/.config/octowire/config.toml):
//
//	base_url    = "https://api.github.com"
//	timeout     = 20        # seconds
//	client_name = "my-bot/1.0"
//	rate_limit  = 10        # requests per second, 0 disables pacing
//
//	[headers]
//	X-GitHub-Api-Version = "2022-11-28"
//
//	[etag]
//	backend = "file"        # none, file or redis
//
//	[redis]
//	addr = "localhost:6379"
//
//	[archive]
//	mongo_uri  = "mongodb://localhost:27017"
//	database   = "octowire"
//	collection = "events"
//
//	[metrics]
//	addr = ":9090"
//
// Environment variables win over the file: GITHUB_TOKEN (then GH_TOKEN),
// OCTOWIRE_BASE_URL and GITHUB_CLIENT_ID.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/octowire/pkg/cache"
	octoerrors "github.com/matzehuels/octowire/pkg/errors"
	"github.com/matzehuels/octowire/pkg/integrations/github"
)

// ETag store backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the merged configuration.
type Config struct {
	BaseURL    string            `toml:"base_url"`
	Timeout    float64           `toml:"timeout"`
	ClientName string            `toml:"client_name,omitempty"`
	APIVersion string            `toml:"api_version,omitempty"`
	ClientID   string            `toml:"client_id"`
	RateLimit  float64           `toml:"rate_limit"`
	Headers    map[string]string `toml:"headers,omitempty"`

	ETag    ETagConfig    `toml:"etag"`
	Redis   RedisConfig   `toml:"redis"`
	Archive ArchiveConfig `toml:"archive"`
	Metrics MetricsConfig `toml:"metrics"`

	// Token is only ever read from the environment.
	Token string `toml:"-"`
}

type ETagConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir,omitempty"` // file backend; defaults to the user cache dir
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type ArchiveConfig struct {
	MongoURI   string `toml:"mongo_uri,omitempty"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type MetricsConfig struct {
	Addr string `toml:"addr,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL:  github.DefaultBaseURL,
		Timeout:  github.DefaultTimeout.Seconds(),
		ClientID: github.DefaultClientID,
		ETag:     ETagConfig{Backend: BackendNone},
		Redis:    RedisConfig{Addr: "localhost:6379", Prefix: cache.DefaultRedisPrefix},
		Archive:  ArchiveConfig{Database: "octowire", Collection: "events"},
	}
}

// Dir returns the octowire configuration directory.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "octowire"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "octowire"), nil
}

// DefaultPath returns the path of the default configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path means [DefaultPath], which may be
// absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults without touching the
// environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) decode(data []byte) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return nil
}

// ApplyEnv overrides settings from the environment through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	for _, key := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if v := getenv(key); v != "" {
			c.Token = v
			break
		}
	}
	if v := getenv("OCTOWIRE_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := getenv("GITHUB_CLIENT_ID"); v != "" {
		c.ClientID = v
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if err := octoerrors.ValidateURL(c.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	switch c.ETag.Backend {
	case "", BackendNone, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("etag.backend must be one of none, file, redis (got %q)", c.ETag.Backend)
	}
	return nil
}

// TimeoutDuration returns Timeout as a duration, or the client default when
// unset.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return github.DefaultTimeout
	}
	return time.Duration(c.Timeout * float64(time.Second))
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
