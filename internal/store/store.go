// Package store persists replica catalog entries in SQLite, so replica
// mappings accumulated across generation runs (for example, files registered
// by earlier runs with RegisterReplica) survive between invocations.
package store

import (
	"context"

	"github.com/me/skein/pkg/catalog"
)

// ReplicaStore is the persistence layer for replica catalog entries.
type ReplicaStore interface {
	// Put inserts one replica entry. Inserting an existing (lfn, site, pfn)
	// triple fails with catalog.DuplicateEntryError.
	Put(ctx context.Context, r catalog.Replica) error

	// Lookup returns all replicas of a logical file, sorted by site and path.
	Lookup(ctx context.Context, lfn string) ([]catalog.Replica, error)

	// All returns every stored replica sorted by (lfn, site, pfn).
	All(ctx context.Context) ([]catalog.Replica, error)

	// ImportCatalog copies every entry of an in-memory catalog into the
	// store, skipping triples that are already present.
	ImportCatalog(ctx context.Context, rc *catalog.ReplicaCatalog) (added int, err error)

	// ExportCatalog materializes the stored entries as an in-memory catalog.
	ExportCatalog(ctx context.Context) (*catalog.ReplicaCatalog, error)

	Close() error
	Migrate(ctx context.Context) error
}
