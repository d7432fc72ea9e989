package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/vesta/pkg/audit"
	"mercator-hq/vesta/pkg/audit/storage"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestPruner(store audit.Storage, cfg *Config) *Pruner {
	p := NewPruner(store, cfg)
	p.now = func() time.Time { return fixedNow }
	return p
}

func storeAged(t *testing.T, store audit.Storage, id string, age time.Duration) {
	t.Helper()
	err := store.Store(context.Background(), &audit.Record{
		ID:                id,
		ContentHash:       "h-" + id,
		Language:          "en",
		RecommendedAction: "approve",
		AnalyzedAt:        fixedNow.Add(-age),
	})
	if err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
}

func TestPruner_PruneByAge(t *testing.T) {
	store := storage.NewMemoryStorage()
	cfg := &Config{RetentionDays: 7}
	p := newTestPruner(store, cfg)

	day := 24 * time.Hour
	storeAged(t, store, "old-1", 10*day)
	storeAged(t, store, "old-2", 8*day)
	storeAged(t, store, "recent-1", 5*day)
	storeAged(t, store, "recent-2", time.Hour)

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}
	if store.GetByID("old-1") != nil || store.GetByID("old-2") != nil {
		t.Error("Old records were not pruned")
	}
	if store.GetByID("recent-1") == nil {
		t.Error("Recent record was pruned")
	}
}

func TestPruner_PruneByCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	p := newTestPruner(store, &Config{MaxRecords: 3})

	for i := 0; i < 5; i++ {
		storeAged(t, store, fmt.Sprintf("r%d", i), time.Duration(5-i)*time.Minute)
	}

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}
	if store.Size() != 3 {
		t.Errorf("Expected 3 remaining, got %d", store.Size())
	}
	if store.GetByID("r0") != nil || store.GetByID("r1") != nil {
		t.Error("Oldest records should be pruned first")
	}
}

func TestPruner_WithinLimits(t *testing.T) {
	store := storage.NewMemoryStorage()
	p := newTestPruner(store, &Config{RetentionDays: 30, MaxRecords: 10})
	storeAged(t, store, "a", time.Hour)

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected nothing pruned, got %d", deleted)
	}
}

func TestPruner_Archive(t *testing.T) {
	store := storage.NewMemoryStorage()
	dir := filepath.Join(t.TempDir(), "archives")
	p := newTestPruner(store, &Config{
		RetentionDays:       1,
		ArchiveBeforeDelete: true,
		ArchivePath:         dir,
	})

	storeAged(t, store, "stale", 72*time.Hour)
	storeAged(t, store, "fresh", time.Hour)

	if _, err := p.Prune(context.Background()); err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "audit-age-*.json"))
	if err != nil || len(files) != 1 {
		t.Fatalf("Expected one archive file, got %v (err %v)", files, err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}

	var archived []audit.Record
	if err := json.Unmarshal(data, &archived); err != nil {
		t.Fatalf("Archive is not valid JSON: %v", err)
	}
	if len(archived) != 1 || archived[0].ID != "stale" {
		t.Errorf("Unexpected archive contents: %+v", archived)
	}
}

type failingDelete struct{ *storage.MemoryStorage }

func (failingDelete) Delete(context.Context, *audit.Query) (int64, error) {
	return 0, fmt.Errorf("database is locked")
}

func TestPruner_Error(t *testing.T) {
	p := newTestPruner(failingDelete{storage.NewMemoryStorage()}, &Config{RetentionDays: 1})

	_, err := p.Prune(context.Background())
	if err == nil {
		t.Fatal("Expected error")
	}
	if _, ok := err.(*audit.RetentionError); !ok {
		t.Errorf("Expected *audit.RetentionError, got %T", err)
	}
}
