package storage

import (
	"context"
	"fmt"
)

// New creates a new storage instance based on the configuration.
// A disabled configuration yields a no-op storage.
func New(cfg *Config, metrics MetricsRecorder) (Storage, error) {
	if cfg == nil {
		cfg = &Config{}
		*cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if !cfg.Enabled {
		return NewNoOpStorage(), nil
	}

	switch cfg.Backend {
	case BackendSQLite:
		s, err := NewSQLiteStorage(cfg, metrics)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendNone:
		return NewNoOpStorage(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidBackend, cfg.Backend)
	}
}

// NoOpStorage is a no-op storage that does nothing
// Used when storage is disabled
type NoOpStorage struct{}

// NewNoOpStorage creates a new no-op storage
func NewNoOpStorage() *NoOpStorage {
	return &NoOpStorage{}
}

// SaveRevision discards the revision
func (n *NoOpStorage) SaveRevision(ctx context.Context, rev *Revision) (int64, error) {
	return 0, nil
}

// GetRevision always reports ErrNotFound
func (n *NoOpStorage) GetRevision(ctx context.Context, id int64) (*Revision, error) {
	return nil, ErrNotFound
}

// ListRevisions returns an empty slice
func (n *NoOpStorage) ListRevisions(ctx context.Context, limit, offset int) ([]*Revision, error) {
	return []*Revision{}, nil
}

// LatestRevision always reports ErrNotFound
func (n *NoOpStorage) LatestRevision(ctx context.Context) (*Revision, error) {
	return nil, ErrNotFound
}

// Cleanup does nothing
func (n *NoOpStorage) Cleanup(ctx context.Context, keep int) (int64, error) {
	return 0, nil
}

// Close does nothing
func (n *NoOpStorage) Close() error {
	return nil
}

// Ping does nothing
func (n *NoOpStorage) Ping(ctx context.Context) error {
	return nil
}
