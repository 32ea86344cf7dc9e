package apperr

import "errors"

var (
	// ErrNotFound indicates a file or node that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDrift indicates a file whose content changed on disk since it
	// was last read or indexed.
	ErrDrift = errors.New("file drifted since last read")
	// ErrMismatchedFile indicates an operation targeting a node that
	// belongs to a different file than the one the editor was opened on.
	ErrMismatchedFile = errors.New("node belongs to a different file")
	// ErrValidation indicates a malformed or out-of-bounds mutation.
	ErrValidation = errors.New("validation failed")
)
