// Package audit keeps a privacy-preserving log of moderation decisions.
//
// Every analysis produces one Record: a SHA-256 fingerprint of the comment,
// its length, language, topics, scores, flags and recommended action. The
// comment text and mentioned handles are never stored, so the log can be
// kept for offline review and threshold tuning without holding user content.
//
// # Layers
//
//  1. recorder: builds records and writes them through a bounded async queue
//  2. storage: memory and SQLite backends behind the Storage interface
//  3. query: validation and defaults for Query
//  4. retention: age and count based pruning on a cron schedule
//  5. export: JSON and CSV output
//
// # Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//		Path:    "data/audit.db",
//		Driver:  storage.DriverCGO,
//		WALMode: true,
//	})
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	rec := recorder.NewRecorder(store, recorder.DefaultConfig())
//	defer rec.Close()
//
//	eng, err := engine.New(engine.DefaultConfig(), engine.WithAuditSink(rec))
//
// The recorder never blocks the moderation path: when its queue is full the
// record is dropped and counted.
package audit
