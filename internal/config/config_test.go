package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestDir_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "basketprune") {
		t.Errorf("Dir() = %q, want /tmp/xdg/basketprune", dir)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Mining.MinSupport != 0.3 {
		t.Errorf("Mining.MinSupport = %v, want 0.3", cfg.Mining.MinSupport)
	}
	if cfg.Mining.MinConfidence != 0.7 {
		t.Errorf("Mining.MinConfidence = %v, want 0.7", cfg.Mining.MinConfidence)
	}
	if cfg.Mining.MaxLen != 0 || cfg.Mining.Workers != 0 {
		t.Errorf("Mining.MaxLen/Workers = %d/%d, want 0/0", cfg.Mining.MaxLen, cfg.Mining.Workers)
	}
	if !strings.HasSuffix(cfg.Storage.DBPath, filepath.Join(".basketprune", "basketprune.db")) {
		t.Errorf("Storage.DBPath = %q", cfg.Storage.DBPath)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v, want info/console", cfg.Logging)
	}
	if cfg.Server.Addr != "127.0.0.1:5000" {
		t.Errorf("Server.Addr = %q, want 127.0.0.1:5000", cfg.Server.Addr)
	}
	if cfg.Server.RateLimit != 60 {
		t.Errorf("Server.RateLimit = %d, want 60", cfg.Server.RateLimit)
	}
}

func TestLoad_File(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `mining:
  min_support: 0.05
  max_len: 3
storage:
  db_path: ~/data/baskets.db
logging:
  format: json
server:
  dataset: groceries
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Mining.MinSupport != 0.05 {
		t.Errorf("Mining.MinSupport = %v, want 0.05", cfg.Mining.MinSupport)
	}
	if cfg.Mining.MaxLen != 3 {
		t.Errorf("Mining.MaxLen = %d, want 3", cfg.Mining.MaxLen)
	}
	// Unset keys keep their defaults.
	if cfg.Mining.MinConfidence != 0.7 {
		t.Errorf("Mining.MinConfidence = %v, want 0.7", cfg.Mining.MinConfidence)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "data", "baskets.db"); cfg.Storage.DBPath != want {
		t.Errorf("Storage.DBPath = %q, want %q", cfg.Storage.DBPath, want)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
	if cfg.Server.Dataset != "groceries" {
		t.Errorf("Server.Dataset = %q, want groceries", cfg.Server.Dataset)
	}
}

func TestLoad_DefaultFileInConfigDir(t *testing.T) {
	isolate(t)

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("mining:\n  min_confidence: 0.9\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Mining.MinConfidence != 0.9 {
		t.Errorf("Mining.MinConfidence = %v, want 0.9", cfg.Mining.MinConfidence)
	}
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("BASKETPRUNE_MINING_MIN_SUPPORT", "0.125")
	t.Setenv("BASKETPRUNE_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Mining.MinSupport != 0.125 {
		t.Errorf("Mining.MinSupport = %v, want 0.125", cfg.Mining.MinSupport)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should fail for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"support zero", func(c *Config) { c.Mining.MinSupport = 0 }, "mining.min_support"},
		{"support above one", func(c *Config) { c.Mining.MinSupport = 1.5 }, "mining.min_support"},
		{"confidence negative", func(c *Config) { c.Mining.MinConfidence = -0.1 }, "mining.min_confidence"},
		{"negative max_len", func(c *Config) { c.Mining.MaxLen = -1 }, "mining.max_len"},
		{"negative workers", func(c *Config) { c.Mining.Workers = -2 }, "mining.workers"},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }, "storage.db_path"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad addr", func(c *Config) { c.Server.Addr = "localhost" }, "server.addr"},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }, "server.rate_limit"},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %q, want it to name %q", err, tt.want)
			}
		})
	}
}
