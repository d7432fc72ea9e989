package audit

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned when the recorder buffer has no room.
	ErrQueueFull = errors.New("audit queue full")

	// ErrRecorderClosed is returned after the recorder has been closed.
	ErrRecorderClosed = errors.New("audit recorder closed")
)

// StorageError wraps a failure in a storage backend.
type StorageError struct {
	Backend   string // "sqlite", "memory"
	Operation string // "store", "query", "delete", ...
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// QueryError reports an invalid or failed query.
type QueryError struct {
	Field string // offending field, empty when not field-specific
	Cause error
}

func (e *QueryError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("audit query: %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("audit query: %v", e.Cause)
}

func (e *QueryError) Unwrap() error { return e.Cause }

// NewQueryError creates a QueryError.
func NewQueryError(field string, cause error) *QueryError {
	return &QueryError{Field: field, Cause: cause}
}

// RecorderError reports a record the recorder could not accept or write.
type RecorderError struct {
	RecordID string
	Cause    error
}

func (e *RecorderError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("audit recorder: %v", e.Cause)
	}
	return fmt.Sprintf("audit recorder [record_id=%s]: %v", e.RecordID, e.Cause)
}

func (e *RecorderError) Unwrap() error { return e.Cause }

// NewRecorderError creates a RecorderError.
func NewRecorderError(recordID string, cause error) *RecorderError {
	return &RecorderError{RecordID: recordID, Cause: cause}
}

// RetentionError reports a failed prune run.
type RetentionError struct {
	RetentionDays int
	MaxRecords    int
	Cause         error
}

func (e *RetentionError) Error() string {
	return fmt.Sprintf("audit retention [days=%d, max_records=%d]: %v", e.RetentionDays, e.MaxRecords, e.Cause)
}

func (e *RetentionError) Unwrap() error { return e.Cause }

// NewRetentionError creates a RetentionError.
func NewRetentionError(retentionDays, maxRecords int, cause error) *RetentionError {
	return &RetentionError{RetentionDays: retentionDays, MaxRecords: maxRecords, Cause: cause}
}

// ExportError reports a failed export.
type ExportError struct {
	Format string
	Cause  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("audit export %s: %v", e.Format, e.Cause)
}

func (e *ExportError) Unwrap() error { return e.Cause }

// NewExportError creates an ExportError.
func NewExportError(format string, cause error) *ExportError {
	return &ExportError{Format: format, Cause: cause}
}
