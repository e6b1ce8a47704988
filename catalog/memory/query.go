package memory

import (
	"context"

	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data"
)

func (ms *MemoryStore) QueryNodes(ctx context.Context, query *catalog.Query) (*catalog.QueryResult, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return nil, data.ErrClosed
	}

	// Narrow the scan to the subtree covered by the query
	root := query.Prefix
	if query.Parent != "" {
		root = query.Parent
	}

	candidates := make([]*data.Node, 0)
	collect := func(node *data.Node) {
		if query.Matches(node) {
			candidates = append(candidates, node.Clone())
		}
	}

	if root == "" {
		ms.nodes.Scan(func(_ string, node *data.Node) bool {
			collect(node)
			return true
		})
	} else {
		ms.descendUnsafe(root, collect)
	}

	return catalog.SortAndPaginate(candidates, query), nil
}
