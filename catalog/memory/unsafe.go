package memory

import (
	"strings"

	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// readNodeUnsafe returns the stored node itself; the caller must hold the lock.
func (ms *MemoryStore) readNodeUnsafe(path string) (*data.Node, error) {
	if ms.closed {
		return nil, data.ErrClosed
	}

	node, exists := ms.nodes.Get(path)
	if !exists {
		return nil, errors.NotExist(nil, path)
	}
	return node, nil
}

// subtreeUnsafe returns the node at path followed by all its descendants.
func (ms *MemoryStore) subtreeUnsafe(path string) []*data.Node {
	result := make([]*data.Node, 0)
	if node, exists := ms.nodes.Get(path); exists {
		result = append(result, node)
	}

	ms.descendUnsafe(path, func(node *data.Node) {
		result = append(result, node)
	})
	return result
}

// descendUnsafe visits every node below path in key order.
func (ms *MemoryStore) descendUnsafe(path string, visit func(*data.Node)) {
	prefix := path + "/"
	if path == "/" {
		prefix = "/"
	}

	ms.nodes.Ascend(prefix, func(key string, node *data.Node) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		if key != path {
			visit(node)
		}
		return true
	})
}
