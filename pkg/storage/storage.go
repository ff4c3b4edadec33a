package storage

import (
	"context"
	"time"
)

// Storage defines the interface for all storage backends
// Implementations must be thread-safe and support concurrent access
type Storage interface {
	// Revisions
	SaveRevision(ctx context.Context, rev *Revision) (int64, error)
	GetRevision(ctx context.Context, id int64) (*Revision, error)
	ListRevisions(ctx context.Context, limit, offset int) ([]*Revision, error)
	LatestRevision(ctx context.Context) (*Revision, error)

	// Maintenance
	Cleanup(ctx context.Context, keep int) (int64, error)
	Close() error
	Ping(ctx context.Context) error
}

// Revision is one settings document as it was submitted.
type Revision struct {
	CreatedAt time.Time `json:"created_at"`
	Site      string    `json:"site"`
	Page      string    `json:"page"`
	Author    string    `json:"author,omitempty"`
	Checksum  string    `json:"checksum"`
	Document  []byte    `json:"-"`
	ID        int64     `json:"id"`
	Size      int       `json:"size"`
}

// BackendType represents the type of storage backend
type BackendType string

const (
	BackendSQLite BackendType = "sqlite"
	BackendNone   BackendType = "none"
)

// Config represents storage configuration
type Config struct {
	Backend BackendType  `yaml:"backend"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
	// Retention is the number of revisions Cleanup keeps
	Retention int  `yaml:"retention"`
	Enabled   bool `yaml:"enabled"`
}

// SQLiteConfig represents SQLite-specific configuration
type SQLiteConfig struct {
	Path        string `yaml:"path"`         // Database file path
	BusyTimeout int    `yaml:"busy_timeout"` // Busy timeout in milliseconds
	WALMode     bool   `yaml:"wal_mode"`     // Enable WAL mode
}

// DefaultConfig returns a default storage configuration
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Backend: BackendSQLite,
		SQLite: SQLiteConfig{
			Path:        "./sitemap-console.db",
			BusyTimeout: 5000,
			WALMode:     true,
		},
		Retention: 50,
	}
}

// Validate validates the storage configuration
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Backend != BackendSQLite && c.Backend != BackendNone {
		return ErrInvalidBackend
	}

	if c.Backend == BackendSQLite && c.SQLite.Path == "" {
		return ErrInvalidConfig
	}

	if c.Retention < 1 {
		c.Retention = 50
	}

	return nil
}
