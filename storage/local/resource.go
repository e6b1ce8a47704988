package local

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data/errors"
)

// LocalResource stores replicas as plain files below a root directory,
// sharded by the first two characters of the key.
type LocalResource struct {
	name string
	root string
}

func init() {
	catalog.RegisterResource("local", func(name string, config map[string]string) (catalog.Resource, error) {
		root := config["path"]
		if root == "" {
			return nil, errors.Invalid(nil, "local resource requires 'path'")
		}
		return NewLocalResource(name, root), nil
	})
}

func NewLocalResource(name, root string) *LocalResource {
	return &LocalResource{
		name: name,
		root: root,
	}
}

func (lr *LocalResource) Name() string {
	return lr.name
}

// Open creates the root directory if needed.
func (lr *LocalResource) Open(ctx context.Context) error {
	return os.MkdirAll(lr.root, 0o755)
}

func (lr *LocalResource) Close(ctx context.Context) error {
	return nil
}

func (lr *LocalResource) GetCapabilities() *catalog.BackendCapabilities {
	return &catalog.BackendCapabilities{
		Capabilities: []catalog.BackendCapability{
			catalog.CapabilityReplicas,
			catalog.CapabilityPersistent,
		},
	}
}

func (lr *LocalResource) PutReplica(ctx context.Context, key string, r io.Reader) (int64, error) {
	target := lr.keyPath(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}

	// Write next to the target and rename, so readers never see partial replicas
	tmp, err := os.CreateTemp(filepath.Dir(target), ".replica-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return 0, err
	}
	return size, nil
}

func (lr *LocalResource) GetReplica(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(lr.keyPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NotExist(err, "replica "+key)
		}
		return nil, err
	}
	return file, nil
}

func (lr *LocalResource) DeleteReplica(ctx context.Context, key string) error {
	err := os.Remove(lr.keyPath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (lr *LocalResource) StatReplica(ctx context.Context, key string) (int64, error) {
	info, err := os.Stat(lr.keyPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, errors.NotExist(err, "replica "+key)
		}
		return 0, err
	}
	return info.Size(), nil
}

func (lr *LocalResource) keyPath(key string) string {
	shard := key
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return filepath.Join(lr.root, shard, key)
}
