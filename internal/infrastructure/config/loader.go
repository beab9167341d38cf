// Package config loads ~/.task-sh/config.yaml (overridable via
// TASK_SH_CONFIG). Any key can also be overridden through a TASK_SH_
// environment variable, e.g. TASK_SH_BACKEND_MODEL for backend.model.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/task-sh/task-sh/assets"
	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/pkg/filesystem"
	"github.com/task-sh/task-sh/internal/ports"
)

const fakeResponseVar = "TASK_SH_FAKE_RESPONSE"

// Loader implements ports.ConfigProvider. Configuration is read once per
// process; every Load call after the first returns the same snapshot.
type Loader struct {
	overridePath string

	once sync.Once
	cfg  domain.Config
	err  error
}

// NewLoader builds a loader. An empty path means the default location.
func NewLoader(path string) *Loader {
	return &Loader{overridePath: path}
}

// Load reads the config file, writing the embedded default on first run,
// and resolves the credential and test override from the environment.
func (l *Loader) Load(context.Context) (domain.Config, error) {
	l.once.Do(func() {
		l.cfg, l.err = l.load()
	})
	return l.cfg, l.err
}

// Path returns the resolved config file location.
func (l *Loader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv("TASK_SH_CONFIG"); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".task-sh", "config.yaml")
}

// WriteDefault writes the embedded default config to the resolved path.
// An existing file is only replaced when force is set.
func (l *Loader) WriteDefault(force bool) error {
	path := l.Path()
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, assets.DefaultConfigYAML, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (l *Loader) load() (domain.Config, error) {
	path := l.Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := l.WriteDefault(false); err != nil {
			return domain.Config{}, err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TASK_SH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return domain.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Backend.APIKey = os.Getenv(cfg.Backend.AuthEnvVar)
	cfg.Backend.FakeResponse = os.Getenv(fakeResponseVar)

	cfg.Security.RulesFile = filesystem.ExpandPath(cfg.Security.RulesFile)
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(filesystem.UserHomeDir(), ".task-sh", "history.db")
	} else {
		cfg.History.Path = filesystem.ExpandPath(cfg.History.Path)
	}

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// DefaultConfig returns the built-in configuration: what Load produces for
// an untouched config file with no environment overrides.
func DefaultConfig() domain.Config {
	v := viper.New()
	setDefaults(v)
	var cfg domain.Config
	_ = v.Unmarshal(&cfg)
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(filesystem.UserHomeDir(), ".task-sh", "history.db")
	}
	return cfg
}

// setDefaults registers every key so values survive a sparse config file
// and environment overrides bind even for keys the file omits.
func setDefaults(v *viper.Viper) {
	v.SetDefault("config_format_version", "1")
	v.SetDefault("preferences.default_shell", "")
	v.SetDefault("preferences.verbose", false)
	v.SetDefault("preferences.spinner", true)
	v.SetDefault("backend.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("backend.model", "gpt-4o-mini")
	v.SetDefault("backend.auth_env_var", "OPENAI_API_KEY")
	v.SetDefault("backend.max_tokens", 256)
	v.SetDefault("backend.temperature", 0.2)
	v.SetDefault("backend.timeout", 30)
	v.SetDefault("backend.system_prompt", "")
	v.SetDefault("security.rules_file", "")
	v.SetDefault("security.structural_scan", true)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
	v.SetDefault("context.include_machine", true)
}

var _ ports.ConfigProvider = (*Loader)(nil)
