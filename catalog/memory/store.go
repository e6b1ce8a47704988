package memory

import (
	"context"
	"sync"

	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
	"github.com/tidwall/btree"
)

// MemoryStore keeps the catalog index in an ordered in-memory tree.
// Its content is lost on Close.
type MemoryStore struct {
	mu sync.RWMutex

	nodes  *btree.Map[string, *data.Node]
	closed bool
}

func init() {
	catalog.RegisterStore("memory", func(map[string]string) (catalog.Store, error) {
		return NewMemoryStore(), nil
	})
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: btree.NewMap[string, *data.Node](0),
	}
}

// Returns the identifier name defined for this store
func (*MemoryStore) Name() string {
	return "memory"
}

// Open is part of the lifecycle behaviour and gets called when opening this store.
func (ms *MemoryStore) Open(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.closed = false
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this store.
func (ms *MemoryStore) Close(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.nodes.Clear()
	ms.closed = true
	return nil
}

// GetCapabilities returns a list of capabilities supported by this store.
func (*MemoryStore) GetCapabilities() *catalog.BackendCapabilities {
	return &catalog.BackendCapabilities{
		Capabilities: []catalog.BackendCapability{
			catalog.CapabilityIndex,
		},
	}
}

func (ms *MemoryStore) CreateNode(ctx context.Context, node *data.Node) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return data.ErrClosed
	}
	if _, exists := ms.nodes.Get(node.Path); exists {
		return errors.Exist(nil, node.Path)
	}

	ms.nodes.Set(node.Path, node.Clone())
	return nil
}

func (ms *MemoryStore) ReadNode(ctx context.Context, path string) (*data.Node, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	node, err := ms.readNodeUnsafe(path)
	if err != nil {
		return nil, err
	}
	return node.Clone(), nil
}

func (ms *MemoryStore) ExistsNode(ctx context.Context, path string) (bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return false, data.ErrClosed
	}
	_, exists := ms.nodes.Get(path)
	return exists, nil
}

func (ms *MemoryStore) UpdateNode(ctx context.Context, node *data.Node) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	stored, err := ms.readNodeUnsafe(node.Path)
	if err != nil {
		return err
	}

	stored.Size = node.Size
	stored.ModifyTime = node.ModifyTime
	stored.Replicas = append([]data.Replica(nil), node.Replicas...)
	return nil
}

func (ms *MemoryStore) DeleteNode(ctx context.Context, path string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, err := ms.readNodeUnsafe(path); err != nil {
		return err
	}

	ms.nodes.Delete(path)
	return nil
}

func (ms *MemoryStore) RenameNode(ctx context.Context, src, dst string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, err := ms.readNodeUnsafe(src); err != nil {
		return err
	}
	if _, exists := ms.nodes.Get(dst); exists {
		return errors.Exist(nil, dst)
	}

	moved := ms.subtreeUnsafe(src)
	for _, node := range moved {
		ms.nodes.Delete(node.Path)
	}
	for _, node := range moved {
		node.Path = dst + node.Path[len(src):]
		ms.nodes.Set(node.Path, node)
	}
	return nil
}

func (ms *MemoryStore) AddMeta(ctx context.Context, path string, avu data.AVU) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	node, err := ms.readNodeUnsafe(path)
	if err != nil {
		return err
	}

	node.AddMetadata(avu)
	return nil
}

func (ms *MemoryStore) RemoveMeta(ctx context.Context, path string, avu data.AVU) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	node, err := ms.readNodeUnsafe(path)
	if err != nil {
		return err
	}

	if !node.RemoveMetadata(avu) {
		return errors.NotExist(nil, path+" "+avu.String())
	}
	return nil
}
