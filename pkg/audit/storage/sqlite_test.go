package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/vesta/pkg/audit"
)

func newTestSQLite(t *testing.T, driver string) (*SQLiteStorage, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "audit.db")
	s, err := NewSQLiteStorage(&SQLiteConfig{
		Path:         dbPath,
		Driver:       driver,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	})
	if err != nil {
		if driver == DriverCGO {
			t.Skipf("cgo sqlite driver unavailable: %v", err)
		}
		t.Fatalf("NewSQLiteStorage() failed: %v", err)
	}
	return s, dbPath
}

func TestSQLiteStorage_Pure(t *testing.T) {
	runStorageSuite(t, func(t *testing.T) audit.Storage {
		s, _ := newTestSQLite(t, DriverPure)
		return s
	})
}

func TestSQLiteStorage_CGO(t *testing.T) {
	runStorageSuite(t, func(t *testing.T) audit.Storage {
		s, _ := newTestSQLite(t, DriverCGO)
		return s
	})
}

func TestSQLiteStorage_Initialize(t *testing.T) {
	s, dbPath := newTestSQLite(t, DriverPure)
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	s, dbPath := newTestSQLite(t, DriverPure)
	seed(t, s)
	s.Close()

	reopened, err := NewSQLiteStorage(&SQLiteConfig{Path: dbPath, Driver: DriverPure})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() failed on reopen: %v", err)
	}
	defer reopened.Close()

	count, err := reopened.Count(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 records after reopen, got %d", count)
	}
}

func TestSQLiteStorage_DuplicateID(t *testing.T) {
	s, _ := newTestSQLite(t, DriverPure)
	defer s.Close()

	rec := sampleRecords()[0]
	ctx := context.Background()
	if err := s.Store(ctx, rec); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	err := s.Store(ctx, rec)
	var storageErr *audit.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("Expected StorageError for duplicate ID, got %v", err)
	}
	if storageErr.Operation != "store" {
		t.Errorf("Expected operation store, got %s", storageErr.Operation)
	}
}

func TestSQLiteStorage_InvalidSort(t *testing.T) {
	s, _ := newTestSQLite(t, DriverPure)
	defer s.Close()

	_, err := s.Query(context.Background(), &audit.Query{SortBy: "content_hash; DROP TABLE audit_records"})
	var queryErr *audit.QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("Expected QueryError, got %v", err)
	}
}

func TestNewSQLiteStorage_UnknownDriver(t *testing.T) {
	_, err := NewSQLiteStorage(&SQLiteConfig{Path: filepath.Join(t.TempDir(), "x.db"), Driver: "postgres"})
	if err == nil {
		t.Fatal("Expected error for unknown driver")
	}
}
