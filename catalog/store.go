package catalog

import (
	"context"

	"github.com/mwantia/vcat/data"
)

// Store is the catalog index: it records every collection and data object
// together with its replicas and metadata triples. It never holds bytes.
//
// All paths are canonical absolute paths. A store does not validate the
// tree shape (parent existence, node kinds); Catalog does that.
type Store interface {
	Backend

	// CreateNode inserts a node. Returns ErrExist if the path is taken.
	CreateNode(ctx context.Context, node *data.Node) error

	// ReadNode returns the node with its replicas and metadata.
	// Returns ErrNotExist if nothing is stored at path.
	ReadNode(ctx context.Context, path string) (*data.Node, error)

	// ExistsNode checks if a node is stored at path.
	ExistsNode(ctx context.Context, path string) (bool, error)

	// UpdateNode replaces size, modify time and replicas of a stored node.
	UpdateNode(ctx context.Context, node *data.Node) error

	// DeleteNode removes exactly one node and its metadata.
	DeleteNode(ctx context.Context, path string) error

	// RenameNode moves the node at src and every node below it to dst.
	// Returns ErrExist if dst is taken.
	RenameNode(ctx context.Context, src, dst string) error

	// AddMeta attaches a triple to the node. Duplicates are kept.
	AddMeta(ctx context.Context, path string, avu data.AVU) error

	// RemoveMeta detaches every copy of the triple.
	// Returns ErrNotExist if the triple is not attached.
	RemoveMeta(ctx context.Context, path string, avu data.AVU) error

	// QueryNodes returns the nodes matching query, ordered by path unless
	// the query asks otherwise.
	QueryNodes(ctx context.Context, query *Query) (*QueryResult, error)
}
