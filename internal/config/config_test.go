package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rolodex.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Session.LoginDelay != 500*time.Millisecond {
		t.Errorf("default login delay = %v, want %v", cfg.Session.LoginDelay, 500*time.Millisecond)
	}
	if !cfg.Store.Seed {
		t.Error("default store.seed = false, want true")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.File != "" {
		t.Errorf("default log file = %q, want empty", cfg.Log.File)
	}
}

func TestLoadLayered_SingleFile(t *testing.T) {
	cfgPath := writeConfig(t, `
session:
  login_delay: 2s
store:
  seed: false
  seed_file: /tmp/contacts.yaml
log:
  level: debug
  file: /tmp/rolodex.log
  pretty: true
ui:
  alt_screen: false
`)

	cfg, err := LoadLayered(cfgPath)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	if cfg.Session.LoginDelay != 2*time.Second {
		t.Errorf("login delay = %v, want %v", cfg.Session.LoginDelay, 2*time.Second)
	}
	if cfg.Store.Seed {
		t.Error("store.seed = true, want false")
	}
	if cfg.Store.SeedFile != "/tmp/contacts.yaml" {
		t.Errorf("seed file = %q", cfg.Store.SeedFile)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/rolodex.log" || !cfg.Log.Pretty {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.UI.AltScreen {
		t.Error("ui.alt_screen = true, want false")
	}
}

func TestLoadLayered_MissingFile(t *testing.T) {
	cfg, err := LoadLayered("/nonexistent/rolodex.yaml")
	if err != nil {
		t.Fatalf("LoadLayered() should return defaults for missing file, got error: %v", err)
	}
	if want := DefaultConfig(); !reflect.DeepEqual(*cfg, want) {
		t.Errorf("LoadLayered(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoadLayered_InvalidYAML(t *testing.T) {
	if _, err := LoadLayered(writeConfig(t, "{{invalid yaml")); err == nil {
		t.Fatal("LoadLayered(invalid YAML) should return error")
	}
}

func TestLoadLayered_UnknownField(t *testing.T) {
	cfgPath := writeConfig(t, `
session:
  login_dlay: 1s
`)
	if _, err := LoadLayered(cfgPath); err == nil {
		t.Fatal("LoadLayered() should return error for unknown field 'login_dlay'")
	}
}

func TestLoadLayered_CommentOnlyAndEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"comment-only": "# just a comment\n",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadLayered(writeConfig(t, body))
			if err != nil {
				t.Fatalf("LoadLayered() error = %v", err)
			}
			if want := DefaultConfig(); !reflect.DeepEqual(*cfg, want) {
				t.Errorf("LoadLayered() = %+v, want defaults %+v", *cfg, want)
			}
		})
	}
}

func TestLoadLayered_Priority(t *testing.T) {
	// Given a user config setting delay and log level, and a project config
	// overriding only the delay
	userCfg := writeConfig(t, `
session:
  login_delay: 2s
log:
  level: warn
`)
	projectCfg := writeConfig(t, `
session:
  login_delay: 100ms
`)

	// When layered
	cfg, err := LoadLayered(userCfg, projectCfg)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}

	// Then the later layer wins per field, and untouched fields keep defaults
	if cfg.Session.LoginDelay != 100*time.Millisecond {
		t.Errorf("login delay = %v, want 100ms", cfg.Session.LoginDelay)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Log.Level)
	}
	if !cfg.Store.Seed {
		t.Error("store.seed should keep its default")
	}
}

func TestLoadLayered_UsersReplace(t *testing.T) {
	first := writeConfig(t, `
session:
  users:
    - username: a
      password_hash: x
    - username: b
      password_hash: y
`)
	second := writeConfig(t, `
session:
  users:
    - username: c
      password_hash: z
`)

	cfg, err := LoadLayered(first, second)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	want := []User{{Username: "c", PasswordHash: "z"}}
	if !reflect.DeepEqual(cfg.Session.Users, want) {
		t.Errorf("users = %+v, want %+v", cfg.Session.Users, want)
	}
}

func TestLoadLayered_AllMissingOrEmpty(t *testing.T) {
	cfg, err := LoadLayered("/no/user.yaml", "", "/no/project.yaml")
	if err != nil {
		t.Fatalf("LoadLayered(all missing) error = %v", err)
	}
	if want := DefaultConfig(); !reflect.DeepEqual(*cfg, want) {
		t.Errorf("got %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoadLayered_InvalidLayer(t *testing.T) {
	good := writeConfig(t, "log:\n  level: debug\n")
	bad := writeConfig(t, "log: [")
	if _, err := LoadLayered(good, bad); err == nil {
		t.Fatal("LoadLayered() should fail on an invalid layer")
	}
}

func TestApplyEnvFrom(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr bool
		check   func(*testing.T, Config)
	}{
		{
			name: "ROLODEX_LOGIN_DELAY overrides delay",
			envs: map[string]string{"ROLODEX_LOGIN_DELAY": "1s"},
			check: func(t *testing.T, c Config) {
				if c.Session.LoginDelay != time.Second {
					t.Errorf("login delay = %v, want 1s", c.Session.LoginDelay)
				}
			},
		},
		{
			name: "zero delay is an override, not unset",
			envs: map[string]string{"ROLODEX_LOGIN_DELAY": "0s"},
			check: func(t *testing.T, c Config) {
				if c.Session.LoginDelay != 0 {
					t.Errorf("login delay = %v, want 0", c.Session.LoginDelay)
				}
			},
		},
		{
			name: "ROLODEX_LOG_LEVEL and ROLODEX_LOG_FILE",
			envs: map[string]string{"ROLODEX_LOG_LEVEL": "debug", "ROLODEX_LOG_FILE": "/tmp/x.log"},
			check: func(t *testing.T, c Config) {
				if c.Log.Level != "debug" || c.Log.File != "/tmp/x.log" {
					t.Errorf("log = %+v", c.Log)
				}
			},
		},
		{
			name: "ROLODEX_SEED=false disables seeding",
			envs: map[string]string{"ROLODEX_SEED": "false"},
			check: func(t *testing.T, c Config) {
				if c.Store.Seed {
					t.Error("store.seed = true, want false")
				}
			},
		},
		{
			name: "unset variables leave config alone",
			envs: map[string]string{},
			check: func(t *testing.T, c Config) {
				if want := DefaultConfig(); !reflect.DeepEqual(c, want) {
					t.Errorf("config = %+v, want defaults", c)
				}
			},
		},
		{
			name:    "invalid ROLODEX_LOGIN_DELAY returns error",
			envs:    map[string]string{"ROLODEX_LOGIN_DELAY": "soon"},
			wantErr: true,
		},
		{
			name:    "invalid ROLODEX_SEED returns error",
			envs:    map[string]string{"ROLODEX_SEED": "maybe"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.ApplyEnvFrom(context.Background(), envconfig.MapLookuper(tt.envs))

			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyEnvFrom() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvFrom() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestApplyEnv_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("ROLODEX_LOG_LEVEL", "error")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log level = %q, want error", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:   "zero delay",
			modify: func(c *Config) { c.Session.LoginDelay = 0 },
		},
		{
			name:    "negative delay",
			modify:  func(c *Config) { c.Session.LoginDelay = -time.Second },
			wantErr: true,
		},
		{
			name: "user with bcrypt hash",
			modify: func(c *Config) {
				c.Session.Users = []User{{Username: "carla", PasswordHash: string(hash)}}
			},
		},
		{
			name: "user with plain password",
			modify: func(c *Config) {
				c.Session.Users = []User{{Username: "carla", PasswordHash: "s3cret"}}
			},
			wantErr: true,
		},
		{
			name: "user without name",
			modify: func(c *Config) {
				c.Session.Users = []User{{PasswordHash: string(hash)}}
			},
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
