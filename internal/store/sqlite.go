package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/skein/pkg/catalog"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements ReplicaStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// WAL for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates the replica table and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// Put inserts one replica entry.
func (s *SQLiteStore) Put(ctx context.Context, r catalog.Replica) error {
	s.logger.Debug("sql", "op", "insert", "table", "replicas", "lfn", r.LFN, "site", r.Site)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO replicas (lfn, site, pfn, created_at) VALUES (?, ?, ?, ?)`,
		r.LFN, r.Site, r.PFN, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil && isUniqueViolation(err) {
		return &catalog.DuplicateEntryError{
			Catalog: "replica",
			Key:     fmt.Sprintf("%s@%s:%s", r.LFN, r.Site, r.PFN),
		}
	}
	return err
}

// Lookup returns all replicas of a logical file.
func (s *SQLiteStore) Lookup(ctx context.Context, lfn string) ([]catalog.Replica, error) {
	s.logger.Debug("sql", "op", "select", "table", "replicas", "lfn", lfn)

	rows, err := s.db.QueryContext(ctx,
		`SELECT lfn, site, pfn FROM replicas WHERE lfn = ? ORDER BY site, pfn`, lfn)
	if err != nil {
		return nil, err
	}
	return scanReplicas(rows)
}

// All returns every stored replica.
func (s *SQLiteStore) All(ctx context.Context) ([]catalog.Replica, error) {
	s.logger.Debug("sql", "op", "select", "table", "replicas")

	rows, err := s.db.QueryContext(ctx,
		`SELECT lfn, site, pfn FROM replicas ORDER BY lfn, site, pfn`)
	if err != nil {
		return nil, err
	}
	return scanReplicas(rows)
}

// ImportCatalog copies every entry of rc into the store, skipping triples
// already present. Returns the number of newly added entries.
func (s *SQLiteStore) ImportCatalog(ctx context.Context, rc *catalog.ReplicaCatalog) (int, error) {
	added := 0
	for _, r := range rc.All() {
		err := s.Put(ctx, r)
		var dup *catalog.DuplicateEntryError
		if errors.As(err, &dup) {
			continue
		}
		if err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// ExportCatalog materializes the stored entries as an in-memory catalog.
func (s *SQLiteStore) ExportCatalog(ctx context.Context) (*catalog.ReplicaCatalog, error) {
	rs, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	rc := catalog.NewReplicaCatalog()
	for _, r := range rs {
		if err := rc.Add(r.Site, r.LFN, r.PFN); err != nil {
			return nil, err
		}
	}
	return rc, nil
}

func scanReplicas(rows *sql.Rows) ([]catalog.Replica, error) {
	defer rows.Close()
	var out []catalog.Replica
	for rows.Next() {
		var r catalog.Replica
		if err := rows.Scan(&r.LFN, &r.Site, &r.PFN); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
