package data

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// Error taxonomy of the search engine and bulk operator.
var (
	// Pattern could not be canonicalized
	ErrResolution = errors.Base("vcat: path resolution failed")
	// A pattern or path matched nothing; used for warnings
	ErrNotFound = errors.Base("vcat: no matching data objects or collections")
	// A destination required by a batch operation is missing
	ErrPrecondition = errors.Base("vcat: precondition failed")
	// Replicas of one data object disagree
	ErrReplicaInconsistency = errors.Base("vcat: replica inconsistency")
	// The catalog rejected a mutating call
	ErrRemoteOperation = errors.Base("vcat: remote operation failed")
)

// Standard catalog errors that Store and Resource implementations should use.
var (
	ErrNotExist      = errors.Base("vcat: path does not exist")
	ErrExist         = errors.Base("vcat: path already exists")
	ErrNotCollection = errors.Base("vcat: not a collection")
	ErrIsCollection  = errors.Base("vcat: is a collection")
	ErrNotEmpty      = errors.Base("vcat: collection not empty")
	ErrUnsupported   = errors.Base("vcat: operation unsupported")
	ErrInvalid       = errors.Base("vcat: invalid argument")
	ErrClosed        = errors.Base("vcat: backend closed")
	ErrPermission    = errors.Base("vcat: permission denied")
)

// RemoteOperationError is returned by the bulk operator when the catalog
// rejects a create, remove, move, transfer or metadata call.
type RemoteOperationError struct {
	Op   string
	Path string
	Err  error
}

// NewRemoteOperationError wraps err unless it is nil or already wrapped.
func NewRemoteOperationError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var remote *RemoteOperationError
	if errors.As(err, &remote) {
		return err
	}

	return &RemoteOperationError{Op: op, Path: path, Err: err}
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("vcat: %s '%s': %v", e.Op, e.Path, e.Err)
}

func (e *RemoteOperationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrRemoteOperation) hold for every wrapped failure.
func (e *RemoteOperationError) Is(target error) bool {
	return target == ErrRemoteOperation
}
