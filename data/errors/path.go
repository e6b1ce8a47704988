package errors

import (
	"github.com/mwantia/vcat/data"
)

// Resolution reports a path expression that cannot be canonicalized.
func Resolution(err error, path string) error {
	return newError(data.ErrResolution, err, "'%s'", path)
}

// NotFound reports a pattern that matched nothing.
func NotFound(err error, pattern string) error {
	return newError(data.ErrNotFound, err, "pattern '%s'", pattern)
}

// Precondition reports a missing destination of a batch operation.
func Precondition(err error, format string, args ...any) error {
	return newError(data.ErrPrecondition, err, format, args...)
}

// ReplicaInconsistency reports replicas of one data object disagreeing on size.
func ReplicaInconsistency(err error, path string, sizes []int64) error {
	return newError(data.ErrReplicaInconsistency, err, "replicas of '%s' have different sizes %v", path, sizes)
}
