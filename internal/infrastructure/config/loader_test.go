package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/task-sh/task-sh/internal/infrastructure/config"
)

func TestLoadWritesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	loader := config.NewLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.Backend.Model != "gpt-4o-mini" {
		t.Errorf("Backend.Model = %q", cfg.Backend.Model)
	}
	if cfg.Backend.AuthEnvVar != "OPENAI_API_KEY" {
		t.Errorf("Backend.AuthEnvVar = %q", cfg.Backend.AuthEnvVar)
	}
	if !cfg.Security.StructuralScan {
		t.Error("Security.StructuralScan = false, want true by default")
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true by default")
	}
	if filepath.Base(cfg.History.Path) != "history.db" {
		t.Errorf("History.Path = %q, want a default history.db location", cfg.History.Path)
	}
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "backend:\n  model: custom-model\n  timeout: 5\npreferences:\n  verbose: true\n  default_shell: zsh\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.Model != "custom-model" {
		t.Errorf("Backend.Model = %q", cfg.Backend.Model)
	}
	if cfg.Backend.TimeoutSeconds != 5 {
		t.Errorf("Backend.TimeoutSeconds = %d", cfg.Backend.TimeoutSeconds)
	}
	if !cfg.Preferences.Verbose {
		t.Error("Preferences.Verbose = false")
	}
	if cfg.Preferences.DefaultShell != "zsh" {
		t.Errorf("Preferences.DefaultShell = %q", cfg.Preferences.DefaultShell)
	}
	// Keys the file omits fall back to defaults.
	if cfg.Backend.MaxTokens != 256 {
		t.Errorf("Backend.MaxTokens = %d, want default", cfg.Backend.MaxTokens)
	}
	if cfg.Backend.Endpoint == "" {
		t.Error("Backend.Endpoint empty, want default")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  model: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASK_SH_BACKEND_MODEL", "from-env")

	cfg, err := config.NewLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.Model != "from-env" {
		t.Errorf("Backend.Model = %q, want the environment override", cfg.Backend.Model)
	}
}

func TestLoadResolvesCredentialAndOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  auth_env_var: TASK_SH_TEST_KEY\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASK_SH_TEST_KEY", "secret-token")
	t.Setenv("TASK_SH_FAKE_RESPONSE", "Command: true")

	cfg, err := config.NewLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.APIKey != "secret-token" {
		t.Errorf("Backend.APIKey = %q", cfg.Backend.APIKey)
	}
	if cfg.Backend.FakeResponse != "Command: true" {
		t.Errorf("Backend.FakeResponse = %q", cfg.Backend.FakeResponse)
	}
}

func TestLoadReadsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  model: first\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := config.NewLoader(path)
	first, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// A later file change must not leak into the running process.
	if err := os.WriteFile(path, []byte("backend:\n  model: second\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	second, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if first.Backend.Model != second.Backend.Model {
		t.Errorf("config reloaded mid-process: %q then %q", first.Backend.Model, second.Backend.Model)
	}
}

func TestLoadExpandsHistoryPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("history:\n  path: ~/records/task.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !filepath.IsAbs(cfg.History.Path) {
		t.Errorf("History.Path = %q, want the tilde expanded", cfg.History.Path)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not yaml {"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.NewLoader(path).Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil, want parse failure")
	}
}

func TestLoadRejectsInconsistentValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend:\n  temperature: 5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.NewLoader(path).Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil, want validation failure for temperature 5")
	}
}

func TestPathPrecedence(t *testing.T) {
	t.Setenv("TASK_SH_CONFIG", "/tmp/from-env.yaml")
	if got := config.NewLoader("/tmp/explicit.yaml").Path(); got != "/tmp/explicit.yaml" {
		t.Errorf("Path() = %q, want the explicit path to win", got)
	}
	if got := config.NewLoader("").Path(); got != "/tmp/from-env.yaml" {
		t.Errorf("Path() = %q, want the TASK_SH_CONFIG value", got)
	}
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := config.NewLoader(path)

	if err := loader.WriteDefault(false); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if err := loader.WriteDefault(false); err == nil {
		t.Fatal("WriteDefault() overwrote an existing file without force")
	}
	if err := loader.WriteDefault(true); err != nil {
		t.Fatalf("WriteDefault(force) error = %v", err)
	}
}
