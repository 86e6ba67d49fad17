package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/me/skein/pkg/catalog"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestPutAndLookup(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	entries := []catalog.Replica{
		{LFN: "f.a", Site: "local", PFN: "/data/f.a"},
		{LFN: "f.a", Site: "condorpool", PFN: "/pool/f.a"},
		{LFN: "sites.yml", Site: "local", PFN: "/run/sites.yml"},
	}
	for _, r := range entries {
		if err := st.Put(ctx, r); err != nil {
			t.Fatalf("Put(%v): %v", r, err)
		}
	}

	rs, err := st.Lookup(ctx, "f.a")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("Lookup(f.a) = %d replicas, want 2", len(rs))
	}
	if rs[0].Site != "condorpool" || rs[1].Site != "local" {
		t.Errorf("Lookup order = [%s %s], want sorted by site", rs[0].Site, rs[1].Site)
	}

	var dup *catalog.DuplicateEntryError
	if err := st.Put(ctx, entries[0]); !errors.As(err, &dup) {
		t.Fatalf("Put duplicate error = %v, want DuplicateEntryError", err)
	}
}

func TestImportExportCatalog(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	rc := catalog.NewReplicaCatalog()
	if err := rc.Add("local", "f.a", "/data/f.a"); err != nil {
		t.Fatalf("rc.Add: %v", err)
	}
	if err := rc.Add("local", "f.b", "/data/f.b"); err != nil {
		t.Fatalf("rc.Add: %v", err)
	}

	added, err := st.ImportCatalog(ctx, rc)
	if err != nil {
		t.Fatalf("ImportCatalog: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	// Re-import skips existing triples.
	added, err = st.ImportCatalog(ctx, rc)
	if err != nil {
		t.Fatalf("ImportCatalog repeat: %v", err)
	}
	if added != 0 {
		t.Errorf("re-import added = %d, want 0", added)
	}

	out, err := st.ExportCatalog(ctx)
	if err != nil {
		t.Fatalf("ExportCatalog: %v", err)
	}
	if out.Len() != 2 {
		t.Errorf("exported Len = %d, want 2", out.Len())
	}
	if !out.Contains("f.b") {
		t.Error("exported catalog missing f.b")
	}
}
