package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data/errors"
)

// MemoryResource keeps replica bytes in memory. Its content is lost on Close.
type MemoryResource struct {
	mu   sync.RWMutex
	name string
	data map[string][]byte
}

func init() {
	catalog.RegisterResource("memory", func(name string, _ map[string]string) (catalog.Resource, error) {
		return NewMemoryResource(name), nil
	})
}

func NewMemoryResource(name string) *MemoryResource {
	return &MemoryResource{
		name: name,
		data: make(map[string][]byte),
	}
}

// Name returns the resource name recorded on every replica it holds.
func (mr *MemoryResource) Name() string {
	return mr.name
}

func (mr *MemoryResource) Open(ctx context.Context) error {
	return nil
}

func (mr *MemoryResource) Close(ctx context.Context) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	clear(mr.data)
	return nil
}

func (mr *MemoryResource) GetCapabilities() *catalog.BackendCapabilities {
	return &catalog.BackendCapabilities{
		Capabilities: []catalog.BackendCapability{
			catalog.CapabilityReplicas,
		},
		MaxObjectSize: 64 * 1024 * 1024, // 64 MB
	}
}

func (mr *MemoryResource) PutReplica(ctx context.Context, key string, r io.Reader) (int64, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	mr.mu.Lock()
	defer mr.mu.Unlock()

	mr.data[key] = content
	return int64(len(content)), nil
}

func (mr *MemoryResource) GetReplica(ctx context.Context, key string) (io.ReadCloser, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	content, ok := mr.data[key]
	if !ok {
		return nil, errors.NotExist(nil, "replica "+key)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (mr *MemoryResource) DeleteReplica(ctx context.Context, key string) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	delete(mr.data, key)
	return nil
}

func (mr *MemoryResource) StatReplica(ctx context.Context, key string) (int64, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	content, ok := mr.data[key]
	if !ok {
		return 0, errors.NotExist(nil, "replica "+key)
	}
	return int64(len(content)), nil
}
