package catalog

import (
	"context"
	"io"
)

// Resource stores the bytes of data object replicas, keyed by node ID.
type Resource interface {
	Backend

	// PutReplica writes the full content read from r and returns its size.
	// An existing replica with the same key is replaced.
	PutReplica(ctx context.Context, key string, r io.Reader) (int64, error)

	// GetReplica opens the replica for reading.
	// Returns ErrNotExist if the key is unknown.
	GetReplica(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteReplica removes the replica. Deleting a missing key is not an error.
	DeleteReplica(ctx context.Context, key string) error

	// StatReplica returns the stored size of the replica.
	StatReplica(ctx context.Context, key string) (int64, error)
}
