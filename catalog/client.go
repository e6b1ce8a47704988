package catalog

import (
	"context"
	"io"

	"github.com/mwantia/vcat/data"
)

// Client is the set of catalog calls used by sessions, searches and bulk
// operations. Paths are canonical absolute paths.
type Client interface {
	CollectionExists(ctx context.Context, path string) (bool, error)
	DataObjectExists(ctx context.Context, path string) (bool, error)

	// Stat returns the node at path or ErrNotExist.
	Stat(ctx context.Context, path string) (*data.Node, error)

	// ListChildren returns the subcollections followed by the data objects
	// of a collection, each group sorted by name.
	ListChildren(ctx context.Context, path string) ([]*data.Node, error)

	// Query runs a general query against the catalog index.
	Query(ctx context.Context, query *Query) ([]*data.Node, error)

	CreateCollection(ctx context.Context, path string, recurse bool, opts Options) error
	RemoveCollection(ctx context.Context, path string, recurse, force bool, opts Options) error
	MoveCollection(ctx context.Context, src, dst string) error

	CreateDataObject(ctx context.Context, path string, opts Options) error
	UnlinkDataObject(ctx context.Context, path string, force bool, opts Options) error
	MoveDataObject(ctx context.Context, src, dst string) error

	// PutDataObject uploads the content of r to path, one replica per resource.
	PutDataObject(ctx context.Context, path string, r io.Reader, force bool, opts Options) (*data.Node, error)

	// GetDataObject opens the first readable replica of the data object.
	GetDataObject(ctx context.Context, path string) (io.ReadCloser, *data.Node, error)

	// ReplicaSizes returns the recorded size of every replica.
	ReplicaSizes(ctx context.Context, path string) ([]int64, error)

	AddMetadata(ctx context.Context, kind data.NodeType, path string, avu data.AVU) error
	RemoveMetadata(ctx context.Context, kind data.NodeType, path string, avu data.AVU) error
}

// Options carries pass-through keyword options of a catalog call.
// Unknown keys are ignored.
type Options map[string]string

// Get returns the value stored for key.
func (o Options) Get(key string) (string, bool) {
	if o == nil {
		return "", false
	}
	value, ok := o[key]
	return value, ok
}

// Known option keys.
const (
	// OptionChecksum set to "verify" re-reads every replica after upload
	OptionChecksum = "checksum"
	// OptionResource limits an upload to the named resource
	OptionResource = "resource"
)
