// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/smileynet/rolodex/internal/logger"
)

// Config holds all rolodex configuration.
type Config struct {
	Session Session `yaml:"session"`
	Store   Store   `yaml:"store"`
	Log     Log     `yaml:"log"`
	UI      UI      `yaml:"ui"`
}

// Session holds login gate settings.
type Session struct {
	LoginDelay time.Duration `yaml:"login_delay"`
	Users      []User        `yaml:"users"` // Added to the built-in users.
}

// User is an extra allow-listed account. Only a bcrypt hash is accepted.
type User struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// Store holds contact store settings.
type Store struct {
	Seed     bool   `yaml:"seed"`      // Load sample contacts at startup
	SeedFile string `yaml:"seed_file"` // YAML file replacing the embedded samples
}

// Log holds logging settings.
type Log struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"` // Empty discards logs
	Pretty bool   `yaml:"pretty"`
}

// UI holds terminal UI settings.
type UI struct {
	AltScreen bool `yaml:"alt_screen"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Session: Session{
			LoginDelay: 500 * time.Millisecond,
		},
		Store: Store{
			Seed: true,
		},
		Log: Log{
			Level: "info",
		},
		UI: UI{
			AltScreen: true,
		},
	}
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files and empty paths are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Session.LoginDelay < 0 {
		return fmt.Errorf("config: session.login_delay must be non-negative, got %v", c.Session.LoginDelay)
	}
	for i, u := range c.Session.Users {
		if u.Username == "" {
			return fmt.Errorf("config: session.users[%d].username cannot be empty", i)
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return fmt.Errorf("config: session.users[%d].password_hash is not a bcrypt hash: %w", i, err)
		}
	}
	if _, ok := logger.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("config: log.level must be a zerolog level such as debug, info or warn, got %q", c.Log.Level)
	}
	return nil
}

// envOverrides lists the supported environment variables. Nil means unset.
type envOverrides struct {
	LoginDelay *time.Duration `env:"ROLODEX_LOGIN_DELAY, noinit"`
	LogLevel   *string        `env:"ROLODEX_LOG_LEVEL, noinit"`
	LogFile    *string        `env:"ROLODEX_LOG_FILE, noinit"`
	Seed       *bool          `env:"ROLODEX_SEED, noinit"`
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: ROLODEX_LOGIN_DELAY, ROLODEX_LOG_LEVEL,
// ROLODEX_LOG_FILE, ROLODEX_SEED.
func (c *Config) ApplyEnv() error {
	return c.ApplyEnvFrom(context.Background(), envconfig.OsLookuper())
}

// ApplyEnvFrom is ApplyEnv with an explicit variable source.
func (c *Config) ApplyEnvFrom(ctx context.Context, l envconfig.Lookuper) error {
	var ov envOverrides
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &ov, Lookuper: l}); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	if ov.LoginDelay != nil {
		c.Session.LoginDelay = *ov.LoginDelay
	}
	if ov.LogLevel != nil {
		c.Log.Level = *ov.LogLevel
	}
	if ov.LogFile != nil {
		c.Log.File = *ov.LogFile
	}
	if ov.Seed != nil {
		c.Store.Seed = *ov.Seed
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Session *rawSession `yaml:"session"`
	Store   *rawStore   `yaml:"store"`
	Log     *rawLog     `yaml:"log"`
	UI      *rawUI      `yaml:"ui"`
}

type rawSession struct {
	LoginDelay *time.Duration `yaml:"login_delay"`
	Users      []User         `yaml:"users"`
}

type rawStore struct {
	Seed     *bool   `yaml:"seed"`
	SeedFile *string `yaml:"seed_file"`
}

type rawLog struct {
	Level  *string `yaml:"level"`
	File   *string `yaml:"file"`
	Pretty *bool   `yaml:"pretty"`
}

type rawUI struct {
	AltScreen *bool `yaml:"alt_screen"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
// A layer that lists users replaces the users of earlier layers.
func (c *Config) merge(layer *rawConfig) {
	if layer.Session != nil {
		if layer.Session.LoginDelay != nil {
			c.Session.LoginDelay = *layer.Session.LoginDelay
		}
		if layer.Session.Users != nil {
			c.Session.Users = append([]User(nil), layer.Session.Users...)
		}
	}
	if layer.Store != nil {
		if layer.Store.Seed != nil {
			c.Store.Seed = *layer.Store.Seed
		}
		if layer.Store.SeedFile != nil {
			c.Store.SeedFile = *layer.Store.SeedFile
		}
	}
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
		if layer.Log.Pretty != nil {
			c.Log.Pretty = *layer.Log.Pretty
		}
	}
	if layer.UI != nil {
		if layer.UI.AltScreen != nil {
			c.UI.AltScreen = *layer.UI.AltScreen
		}
	}
}
