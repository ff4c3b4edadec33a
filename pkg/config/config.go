package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// HTTP server settings
	Server ServerConfig `yaml:"server"`

	// Settings document location
	Document DocumentConfig `yaml:"document"`

	// Console behaviour
	Console ConsoleConfig `yaml:"console"`

	// Revision storage
	Storage StorageConfig `yaml:"storage"`

	// API authentication
	Auth AuthConfig `yaml:"auth"`

	// Per-client request limits
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Telemetry (OTEL)
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	ListenAddress  string    `yaml:"listen_address"`
	TrustedProxies []string  `yaml:"trusted_proxies"`
	CORSOrigins    []string  `yaml:"cors_origins"`
	TLS            TLSConfig `yaml:"tls"`
}

// TLSConfig enables automatic certificates for the console
type TLSConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Hosts         []string `yaml:"hosts"`
	CacheDir      string   `yaml:"cache_dir"`
	Email         string   `yaml:"email"`
	HTTP01Address string   `yaml:"http01_address"` // ACME HTTP-01 listener
}

// DocumentConfig points at the sitemap generator's settings file
type DocumentConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// ConsoleConfig selects the console generation
type ConsoleConfig struct {
	Generation string `yaml:"generation"` // trunk, trunck
}

// StorageConfig holds storage settings
type StorageConfig struct {
	Enabled      bool          `yaml:"enabled"`
	DatabasePath string        `yaml:"database_path"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
	Retention    int           `yaml:"retention"` // revisions kept
}

// AuthConfig holds API authentication settings
type AuthConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
	APIKey       string `yaml:"api_key"`
	Header       string `yaml:"header"`
}

// RateLimitConfig holds per-client rate limit settings
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
	MaxTrackedClients int           `yaml:"max_tracked_clients"`
	LogViolations     bool          `yaml:"log_violations"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level     string `yaml:"level"`      // debug, info, warn, error
	Format    string `yaml:"format"`     // json, text
	Output    string `yaml:"output"`     // stdout, stderr, file
	FilePath  string `yaml:"file_path"`  // if output=file
	AddSource bool   `yaml:"add_source"` // include source file/line
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled           bool   `yaml:"enabled"`
	ServiceName       string `yaml:"service_name"`
	ServiceVersion    string `yaml:"service_version"`
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	PrometheusPort    int    `yaml:"prometheus_port"`
	TracingEnabled    bool   `yaml:"tracing_enabled"`
	TracingEndpoint   string `yaml:"tracing_endpoint"`
}

// Load loads the configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults creates a configuration with sensible defaults
func LoadWithDefaults() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Save writes cfg to path, replacing the file atomically
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config YAML: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.yml")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// applyDefaults sets default values for unset configuration fields
func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":8181"
	}
	if c.Server.TLS.CacheDir == "" {
		c.Server.TLS.CacheDir = "./autocert"
	}
	if c.Server.TLS.HTTP01Address == "" {
		c.Server.TLS.HTTP01Address = ":80"
	}

	// Document defaults
	if c.Document.Path == "" {
		c.Document.Path = "./sitemap_settings.xml"
	}

	// Console defaults
	if c.Console.Generation == "" {
		c.Console.Generation = "trunck"
	}

	// Storage defaults
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "./sitemap-console.db"
	}
	if c.Storage.BusyTimeout == 0 {
		c.Storage.BusyTimeout = 5 * time.Second
	}
	if c.Storage.Retention == 0 {
		c.Storage.Retention = 50
	}

	// Auth defaults
	if c.Auth.Header == "" {
		c.Auth.Header = "Authorization"
	}

	// Rate limit defaults
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
	if c.RateLimit.CleanupInterval == 0 {
		c.RateLimit.CleanupInterval = 10 * time.Minute
	}
	if c.RateLimit.MaxTrackedClients == 0 {
		c.RateLimit.MaxTrackedClients = 10000
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	// Telemetry defaults
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "sitemap-console"
	}
	if c.Telemetry.ServiceVersion == "" {
		c.Telemetry.ServiceVersion = "dev"
	}
	if c.Telemetry.PrometheusPort == 0 {
		c.Telemetry.PrometheusPort = 9090
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address cannot be empty")
	}
	if c.Server.TLS.Enabled && len(c.Server.TLS.Hosts) == 0 {
		return fmt.Errorf("server.tls.hosts must list at least one host when TLS is enabled")
	}

	if c.Document.Path == "" {
		return fmt.Errorf("document.path cannot be empty")
	}

	if c.Console.Generation != "trunk" && c.Console.Generation != "trunck" {
		return fmt.Errorf("invalid console generation: %s (must be trunk or trunck)", c.Console.Generation)
	}

	if c.Storage.Enabled && c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path must be set when storage is enabled")
	}
	if c.Storage.Retention < 0 {
		return fmt.Errorf("storage.retention cannot be negative")
	}

	if c.Auth.Enabled && c.Auth.APIKey == "" && (c.Auth.Username == "" || c.Auth.PasswordHash == "") {
		return fmt.Errorf("auth requires an api_key or a username with password_hash")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit.requests_per_second must be positive")
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate_limit.burst must be positive")
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid logging format: %s (must be json or text)", c.Logging.Format)
	}

	validOutputs := map[string]bool{
		"stdout": true,
		"stderr": true,
		"file":   true,
	}
	if !validOutputs[c.Logging.Output] {
		return fmt.Errorf("invalid logging output: %s (must be stdout, stderr, or file)", c.Logging.Output)
	}
	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path must be set when output is 'file'")
	}

	return nil
}
