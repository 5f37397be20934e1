package exchangelog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Storage.Get for an unknown ID.
	ErrNotFound = errors.New("record not found")

	// ErrDropped marks a record the recorder discarded without writing.
	ErrDropped = errors.New("exchange record dropped")
)

// StorageError wraps a failure of a storage backend. Retention and
// recording failures surface as the StorageError of the call that failed.
type StorageError struct {
	// Backend is the driver name: memory, sqlite, sqlite3 or mysql
	Backend string
	// Operation names the storage call, such as "store" or "delete"
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("exchange log %s: %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// NewStorageError returns a StorageError for operation on backend.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// QueryError reports a Query that ValidateQuery rejected.
type QueryError struct {
	Query *Query
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid exchange log query: %v", e.Cause)
}

func (e *QueryError) Unwrap() error { return e.Cause }

// NewQueryError returns a QueryError for q.
func NewQueryError(q *Query, cause error) *QueryError {
	return &QueryError{Query: q, Cause: cause}
}

// ExportError reports a failed export. Written counts the records fully
// written before the failure.
type ExportError struct {
	Format  string
	Written int
	Cause   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s failed after %d records: %v", e.Format, e.Written, e.Cause)
}

func (e *ExportError) Unwrap() error { return e.Cause }

// NewExportError returns an ExportError for format.
func NewExportError(format string, written int, cause error) *ExportError {
	return &ExportError{Format: format, Written: written, Cause: cause}
}

// DropError returns an error matching both ErrDropped and reason.
func DropError(recordID string, reason error) error {
	return fmt.Errorf("%w: record %s: %w", ErrDropped, recordID, reason)
}
