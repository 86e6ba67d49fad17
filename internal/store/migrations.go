package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for the replica store.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS replicas (
		lfn        TEXT NOT NULL,
		site       TEXT NOT NULL,
		pfn        TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (lfn, site, pfn)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_replicas_lfn ON replicas(lfn)`,
	`CREATE INDEX IF NOT EXISTS idx_replicas_site ON replicas(site)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
