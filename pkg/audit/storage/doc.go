// Package storage provides the audit record backends.
//
//   - SQLite: durable storage for single-node deployments. Either the cgo
//     driver (mattn/go-sqlite3) or the pure Go driver (modernc.org/sqlite)
//     can be selected with SQLiteConfig.Driver.
//   - Memory: in-process storage for tests and throwaway deployments.
//
// Both sort by any audit.SortBy* field (newest first by default) and treat a
// zero Limit as "no limit". Callers that take queries from users should run
// them through the query package first.
//
//	store, err := storage.New(storage.Config{
//		Backend: storage.BackendSQLite,
//		SQLite: &storage.SQLiteConfig{
//			Path:   "data/audit.db",
//			Driver: storage.DriverPure,
//		},
//	})
package storage
