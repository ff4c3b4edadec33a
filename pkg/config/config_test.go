package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load("testdata/config.yml")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	// Test that values from file are loaded
	if cfg.Server.ListenAddress != ":9191" {
		t.Errorf("Expected listen address :9191, got %s", cfg.Server.ListenAddress)
	}
	if len(cfg.Server.TrustedProxies) != 1 || cfg.Server.TrustedProxies[0] != "10.0.0.0/8" {
		t.Errorf("Expected trusted proxy 10.0.0.0/8, got %v", cfg.Server.TrustedProxies)
	}
	if !cfg.Document.Watch {
		t.Error("Expected document watch to be enabled")
	}
	if cfg.Console.Generation != "trunk" {
		t.Errorf("Expected generation trunk, got %s", cfg.Console.Generation)
	}
	if cfg.Storage.Retention != 10 {
		t.Errorf("Expected retention 10, got %d", cfg.Storage.Retention)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Logging.Level)
	}

	// Test that defaults are applied
	if cfg.Storage.DatabasePath != "./sitemap-console.db" {
		t.Errorf("Expected default database path, got %s", cfg.Storage.DatabasePath)
	}
	if cfg.Storage.BusyTimeout != 5*time.Second {
		t.Errorf("Expected default busy timeout 5s, got %s", cfg.Storage.BusyTimeout)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output stdout, got %s", cfg.Logging.Output)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cfg := LoadWithDefaults()
	if cfg == nil {
		t.Fatal("LoadWithDefaults() returned nil")
	}

	if cfg.Server.ListenAddress != ":8181" {
		t.Errorf("Expected default listen address :8181, got %s", cfg.Server.ListenAddress)
	}
	if cfg.Console.Generation != "trunck" {
		t.Errorf("Expected default generation trunck, got %s", cfg.Console.Generation)
	}
	if cfg.Auth.Header != "Authorization" {
		t.Errorf("Expected default auth header, got %s", cfg.Auth.Header)
	}
	if cfg.RateLimit.Burst != 20 {
		t.Errorf("Expected default burst 20, got %d", cfg.RateLimit.Burst)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mutate  func(*Config)
		name    string
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "empty listen address",
			mutate:  func(c *Config) { c.Server.ListenAddress = "" },
			wantErr: true,
		},
		{
			name:    "tls without hosts",
			mutate:  func(c *Config) { c.Server.TLS.Enabled = true },
			wantErr: true,
		},
		{
			name:    "unknown generation",
			mutate:  func(c *Config) { c.Console.Generation = "branch" },
			wantErr: true,
		},
		{
			name:    "auth without credentials",
			mutate:  func(c *Config) { c.Auth.Enabled = true },
			wantErr: true,
		},
		{
			name: "auth with api key",
			mutate: func(c *Config) {
				c.Auth.Enabled = true
				c.Auth.APIKey = "secret"
			},
		},
		{
			name: "rate limit without rate",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.RequestsPerSecond = -1
			},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "invalid" },
			wantErr: true,
		},
		{
			name:    "file output without path",
			mutate:  func(c *Config) { c.Logging.Output = "file" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadWithDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := LoadWithDefaults()
	cfg.Document.Path = "/srv/sitemap.xml"
	cfg.RateLimit.Enabled = true
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Document.Path != "/srv/sitemap.xml" {
		t.Errorf("Expected document path /srv/sitemap.xml, got %s", loaded.Document.Path)
	}
	if !loaded.RateLimit.Enabled {
		t.Error("Expected rate limit to stay enabled")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the config file to remain, got %d entries", len(entries))
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := LoadWithDefaults()
	cfg.Logging.Level = "loud"
	if err := Save(filepath.Join(t.TempDir(), "config.yml"), cfg); err == nil {
		t.Error("Expected Save() to reject an invalid config")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("nonexistent.yml")
	if err == nil {
		t.Error("Expected error when loading non-existent file")
	}
}
