// Package storage contains the pluggable persistence layer; this file provides
// the SQLite implementation used for settings document revisions.
package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// MetricsRecorder defines the interface for recording storage metrics
// This interface breaks the import cycle between storage and telemetry packages
type MetricsRecorder interface {
	RevisionStored(ctx context.Context)
}

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db         *sql.DB
	cfg        *Config
	metrics    MetricsRecorder
	stmtInsert *sql.Stmt
	stmtGet    *sql.Stmt
	stmtList   *sql.Stmt
	mu         sync.RWMutex
	closed     bool
}

const revisionColumns = `id, created_at, site, page, author, checksum, size`

// NewSQLiteStorage creates a new SQLite storage backend
func NewSQLiteStorage(cfg *Config, metrics MetricsRecorder) (*SQLiteStorage, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	db, err := sql.Open("sqlite", cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if pingErr := db.Ping(); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, pingErr)
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.SQLite.BusyTimeout),
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	if cfg.SQLite.WALMode {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, pragmaErr := db.Exec(pragma); pragmaErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", pragmaErr)
		}
	}

	if migrationErr := runMigrations(db); migrationErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", migrationErr)
	}

	s := &SQLiteStorage{
		db:      db,
		cfg:     cfg,
		metrics: metrics,
	}
	if err := s.prepare(); err != nil {
		_ = s.closeStatements()
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStorage) prepare() error {
	var err error
	s.stmtInsert, err = s.db.Prepare(`
		INSERT INTO revisions (created_at, site, page, author, checksum, size, document)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	s.stmtGet, err = s.db.Prepare(`SELECT ` + revisionColumns + `, document FROM revisions WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}
	s.stmtList, err = s.db.Prepare(`
		SELECT ` + revisionColumns + ` FROM revisions
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}
	return nil
}

// Checksum returns the hex SHA-256 of a document.
func Checksum(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

// SaveRevision records rev and returns its ID. CreatedAt, Checksum and
// Size are filled in when unset.
func (s *SQLiteStorage) SaveRevision(ctx context.Context, rev *Revision) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}

	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now()
	}
	if rev.Checksum == "" {
		rev.Checksum = Checksum(rev.Document)
	}
	rev.Size = len(rev.Document)

	res, err := s.stmtInsert.ExecContext(ctx,
		rev.CreatedAt.UTC().Format(time.RFC3339Nano),
		rev.Site, rev.Page, rev.Author, rev.Checksum, rev.Size, rev.Document,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	rev.ID = id

	if s.metrics != nil {
		s.metrics.RevisionStored(ctx)
	}
	return id, nil
}

// GetRevision returns the revision with id, document included.
func (s *SQLiteStorage) GetRevision(ctx context.Context, id int64) (*Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	rev, err := scanRevision(s.stmtGet.QueryRowContext(ctx, id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: revision %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return rev, nil
}

// ListRevisions returns revision summaries, newest first, without the
// documents.
func (s *SQLiteStorage) ListRevisions(ctx context.Context, limit, offset int) ([]*Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.stmtList.QueryContext(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	revisions := make([]*Revision, 0, limit)
	for rows.Next() {
		rev, err := scanRevision(rows, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return revisions, nil
}

// LatestRevision returns the newest revision, document included.
func (s *SQLiteStorage) LatestRevision(ctx context.Context) (*Revision, error) {
	s.mu.RLock()
	var id int64
	err := func() error {
		if s.closed {
			return ErrClosed
		}
		return s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM revisions`).Scan(&id)
	}()
	s.mu.RUnlock()

	if err != nil {
		if errors.Is(err, ErrClosed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if id == 0 {
		return nil, fmt.Errorf("%w: no revisions", ErrNotFound)
	}
	return s.GetRevision(ctx, id)
}

// Cleanup deletes all but the newest keep revisions and returns how many
// were removed. keep <= 0 uses the configured retention.
func (s *SQLiteStorage) Cleanup(ctx context.Context, keep int) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}
	if keep <= 0 {
		keep = s.cfg.Retention
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM revisions
		WHERE id NOT IN (SELECT id FROM revisions ORDER BY id DESC LIMIT ?)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// Close closes the database. Further calls return ErrClosed.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	_ = s.closeStatements()
	return s.db.Close()
}

func (s *SQLiteStorage) closeStatements() error {
	var errs []error
	for _, stmt := range []*sql.Stmt{s.stmtInsert, s.stmtGet, s.stmtList} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	return errors.Join(errs...)
}

// Ping checks if the storage is reachable
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}

	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(row rowScanner, withDocument bool) (*Revision, error) {
	var rev Revision
	var createdAt string
	dest := []any{&rev.ID, &createdAt, &rev.Site, &rev.Page, &rev.Author, &rev.Checksum, &rev.Size}
	if withDocument {
		dest = append(dest, &rev.Document)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rev.CreatedAt = parseSQLiteTime(createdAt)
	return &rev, nil
}
