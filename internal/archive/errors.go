package archive

import "fmt"

// PersistenceError reports a failed write to the run directory. It is
// run-fatal by contract: once the archive stops accepting writes, the
// crawler must not keep fetching pages it cannot record.
type PersistenceError struct {
	// Op is the operation that failed, e.g. "write html", "flush site map".
	Op string

	// Path is the file or directory involved.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("archive: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// newPersistenceError wraps an underlying error with operation context.
func newPersistenceError(op, path string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Path: path, Err: err}
}
