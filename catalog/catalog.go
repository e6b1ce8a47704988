package catalog

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
	"github.com/mwantia/vcat/log"
)

// Catalog composes an index store with replica resources into a Client.
type Catalog struct {
	mu        sync.RWMutex
	store     Store
	resources []Resource
	options   *CatalogOptions
	log       *log.Logger
	opened    bool
}

var _ Client = (*Catalog)(nil)

// New creates a catalog over store. Call Open before use.
func New(store Store, opts ...CatalogOption) (*Catalog, error) {
	options := newDefaultCatalogOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	return &Catalog{
		store:     store,
		resources: options.Resources,
		options:   options,
		log:       options.Logger.Named("catalog"),
	}, nil
}

// Open opens the store and every resource and makes sure the root
// collection exists.
func (c *Catalog) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opened {
		return nil
	}

	if err := c.store.Open(ctx); err != nil {
		return errors.Errorf("failed to open store '%s': %w", c.store.Name(), err)
	}
	for _, resource := range c.resources {
		if err := resource.Open(ctx); err != nil {
			return errors.Errorf("failed to open resource '%s': %w", resource.Name(), err)
		}
	}

	exists, err := c.store.ExistsNode(ctx, "/")
	if err != nil {
		return err
	}
	if !exists {
		if err := c.store.CreateNode(ctx, data.NewCollection("/")); err != nil {
			return err
		}
	}

	c.opened = true
	c.log.Debug("opened store '%s' with %d resource(s)", c.store.Name(), len(c.resources))
	return nil
}

// Close closes every resource and the store.
func (c *Catalog) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, resource := range c.resources {
		if err := resource.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.store.Close(ctx); err != nil {
		errs = append(errs, err)
	}

	c.opened = false
	return errors.Join(errs...)
}

// Store returns the index store used by the catalog.
func (c *Catalog) Store() Store {
	return c.store
}

// ResourceNames returns the names of the replica resources in replica order.
func (c *Catalog) ResourceNames() []string {
	names := make([]string, 0, len(c.resources))
	for _, resource := range c.resources {
		names = append(names, resource.Name())
	}
	return names
}

func (c *Catalog) CollectionExists(ctx context.Context, p string) (bool, error) {
	node, err := c.Stat(ctx, p)
	if err != nil {
		if errors.Is(err, data.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return node.IsCollection(), nil
}

func (c *Catalog) DataObjectExists(ctx context.Context, p string) (bool, error) {
	node, err := c.Stat(ctx, p)
	if err != nil {
		if errors.Is(err, data.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return node.IsDataObject(), nil
}

func (c *Catalog) Stat(ctx context.Context, p string) (*data.Node, error) {
	if err := validatePath(p); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.store.ReadNode(ctx, p)
}

func (c *Catalog) ListChildren(ctx context.Context, p string) ([]*data.Node, error) {
	if err := validatePath(p); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.readCollectionUnsafe(ctx, p); err != nil {
		return nil, err
	}

	result, err := c.store.QueryNodes(ctx, ChildrenOf(p))
	if err != nil {
		return nil, err
	}

	children := result.Candidates
	slices.SortFunc(children, func(a, b *data.Node) int {
		if a.Type != b.Type {
			if a.IsCollection() {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name(), b.Name())
	})
	return children, nil
}

func (c *Catalog) Query(ctx context.Context, query *Query) ([]*data.Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, err := c.store.QueryNodes(ctx, query)
	if err != nil {
		return nil, err
	}
	return result.Candidates, nil
}

func (c *Catalog) CreateCollection(ctx context.Context, p string, recurse bool, opts Options) error {
	if err := validatePath(p); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.createCollectionUnsafe(ctx, p, recurse)
}

func (c *Catalog) RemoveCollection(ctx context.Context, p string, recurse, force bool, opts Options) error {
	if err := validatePath(p); err != nil {
		return err
	}
	if p == "/" {
		return errors.Unsupported(nil, "remove", p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.readCollectionUnsafe(ctx, p); err != nil {
		return err
	}

	descendants, err := c.store.QueryNodes(ctx, DescendantsOf(p))
	if err != nil {
		return err
	}
	if len(descendants.Candidates) > 0 && !recurse {
		return errors.NotEmpty(nil, p)
	}

	if c.useTrash(p, force) {
		return c.moveToTrashUnsafe(ctx, p)
	}

	// Deepest nodes first so that no collection loses its parent before its children
	nodes := descendants.Candidates
	slices.SortFunc(nodes, func(a, b *data.Node) int {
		return strings.Compare(b.Path, a.Path)
	})
	for _, node := range nodes {
		if err := c.deleteNodeUnsafe(ctx, node); err != nil {
			return err
		}
	}

	return c.store.DeleteNode(ctx, p)
}

func (c *Catalog) MoveCollection(ctx context.Context, src, dst string) error {
	if err := validatePath(src); err != nil {
		return err
	}
	if err := validatePath(dst); err != nil {
		return err
	}
	if src == "/" {
		return errors.Unsupported(nil, "move", src)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.readCollectionUnsafe(ctx, src); err != nil {
		return err
	}

	target, err := c.moveTargetUnsafe(ctx, src, dst, data.NodeTypeCollection)
	if err != nil {
		return err
	}
	if data.HasPrefix(target, src) {
		return errors.Invalid(nil, "cannot move collection '"+src+"' into itself")
	}

	c.log.Debug("moving collection '%s' to '%s'", src, target)
	return c.store.RenameNode(ctx, src, target)
}

func (c *Catalog) CreateDataObject(ctx context.Context, p string, opts Options) error {
	_, err := c.PutDataObject(ctx, p, bytes.NewReader(nil), false, opts)
	return err
}

func (c *Catalog) UnlinkDataObject(ctx context.Context, p string, force bool, opts Options) error {
	if err := validatePath(p); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	node, err := c.readDataObjectUnsafe(ctx, p)
	if err != nil {
		return err
	}

	if c.useTrash(p, force) {
		return c.moveToTrashUnsafe(ctx, p)
	}

	return c.deleteNodeUnsafe(ctx, node)
}

func (c *Catalog) MoveDataObject(ctx context.Context, src, dst string) error {
	if err := validatePath(src); err != nil {
		return err
	}
	if err := validatePath(dst); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.readDataObjectUnsafe(ctx, src); err != nil {
		return err
	}

	target, err := c.moveTargetUnsafe(ctx, src, dst, data.NodeTypeDataObject)
	if err != nil {
		return err
	}

	c.log.Debug("moving data object '%s' to '%s'", src, target)
	return c.store.RenameNode(ctx, src, target)
}

func (c *Catalog) PutDataObject(ctx context.Context, p string, r io.Reader, force bool, opts Options) (*data.Node, error) {
	if err := validatePath(p); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	resources, err := c.selectResources(opts)
	if err != nil {
		return nil, err
	}

	if _, err := c.readCollectionUnsafe(ctx, path.Dir(p)); err != nil {
		return nil, err
	}

	node, err := c.store.ReadNode(ctx, p)
	exists := err == nil
	switch {
	case err != nil && !errors.Is(err, data.ErrNotExist):
		return nil, err
	case exists && node.IsCollection():
		return nil, errors.IsCollection(nil, p)
	case exists && !force:
		return nil, errors.Exist(nil, p)
	case !exists:
		node = data.NewDataObject(p)
	}

	replicas, err := c.writeReplicasUnsafe(ctx, node.ID, r, resources)
	if err != nil {
		return nil, err
	}

	if value, _ := opts.Get(OptionChecksum); value == "verify" {
		if err := c.verifyReplicasUnsafe(ctx, node.ID, replicas); err != nil {
			return nil, err
		}
	}

	node.Replicas = replicas
	node.Size = replicas[0].Size
	node.ModifyTime = time.Now()

	if exists {
		err = c.store.UpdateNode(ctx, node)
	} else {
		err = c.store.CreateNode(ctx, node)
	}
	if err != nil {
		return nil, err
	}

	c.log.Debug("stored '%s' with %d replica(s) of %d bytes", p, len(replicas), node.Size)
	return node.Clone(), nil
}

func (c *Catalog) GetDataObject(ctx context.Context, p string) (io.ReadCloser, *data.Node, error) {
	if err := validatePath(p); err != nil {
		return nil, nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	node, err := c.readDataObjectUnsafe(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	if len(node.Replicas) == 0 {
		return io.NopCloser(bytes.NewReader(nil)), node, nil
	}

	var errs []error
	for _, replica := range node.Replicas {
		resource := c.resource(replica.Resource)
		if resource == nil {
			errs = append(errs, errors.Errorf("%w: resource '%s'", data.ErrNotExist, replica.Resource))
			continue
		}

		reader, err := resource.GetReplica(ctx, node.ID)
		if err != nil {
			c.log.Warn("replica %d of '%s' on '%s' is unreadable: %v", replica.Number, p, replica.Resource, err)
			errs = append(errs, err)
			continue
		}
		return reader, node, nil
	}

	return nil, nil, errors.Errorf("no readable replica of '%s': %w", p, errors.Join(errs...))
}

func (c *Catalog) ReplicaSizes(ctx context.Context, p string) ([]int64, error) {
	if err := validatePath(p); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	node, err := c.readDataObjectUnsafe(ctx, p)
	if err != nil {
		return nil, err
	}
	return node.ReplicaSizes(), nil
}

func (c *Catalog) AddMetadata(ctx context.Context, kind data.NodeType, p string, avu data.AVU) error {
	if err := validatePath(p); err != nil {
		return err
	}
	if avu.Attribute == "" || avu.Value == "" {
		return errors.Invalid(nil, "metadata attribute and value must not be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.readKindUnsafe(ctx, p, kind); err != nil {
		return err
	}
	return c.store.AddMeta(ctx, p, avu)
}

func (c *Catalog) RemoveMetadata(ctx context.Context, kind data.NodeType, p string, avu data.AVU) error {
	if err := validatePath(p); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.readKindUnsafe(ctx, p, kind); err != nil {
		return err
	}
	return c.store.RemoveMeta(ctx, p, avu)
}

// TrashPath returns where a removed node is kept, or "" if p is not below a zone.
func (c *Catalog) TrashPath(p string) string {
	if c.options.Zone == "" {
		return ""
	}

	zoneRoot := "/" + c.options.Zone
	if !data.HasPrefix(p, zoneRoot) || p == zoneRoot {
		return ""
	}
	return zoneRoot + "/trash" + strings.TrimPrefix(p, zoneRoot)
}

func validatePath(p string) error {
	if p == "" || !strings.HasPrefix(p, "/") || path.Clean(p) != p {
		return errors.Invalid(nil, "catalog path '"+p+"' is not canonical")
	}
	return nil
}

func (c *Catalog) useTrash(p string, force bool) bool {
	if force || !c.options.Trash {
		return false
	}

	trash := c.TrashPath(p)
	if trash == "" {
		return false
	}
	// Nodes already inside the trash are removed for good
	return !data.HasPrefix(p, "/"+c.options.Zone+"/trash")
}

func (c *Catalog) resource(name string) Resource {
	for _, resource := range c.resources {
		if resource.Name() == name {
			return resource
		}
	}
	return nil
}

func (c *Catalog) selectResources(opts Options) ([]Resource, error) {
	if len(c.resources) == 0 {
		return nil, errors.Unsupported(nil, "put", "no resources configured")
	}

	name, ok := opts.Get(OptionResource)
	if !ok || name == "" {
		return c.resources, nil
	}

	resource := c.resource(name)
	if resource == nil {
		return nil, errors.NotExist(nil, "resource "+name)
	}
	return []Resource{resource}, nil
}

func (c *Catalog) readKindUnsafe(ctx context.Context, p string, kind data.NodeType) (*data.Node, error) {
	node, err := c.store.ReadNode(ctx, p)
	if err != nil {
		return nil, err
	}

	if node.Type != kind {
		if kind == data.NodeTypeCollection {
			return nil, errors.NotCollection(nil, p)
		}
		return nil, errors.IsCollection(nil, p)
	}
	return node, nil
}

func (c *Catalog) readCollectionUnsafe(ctx context.Context, p string) (*data.Node, error) {
	return c.readKindUnsafe(ctx, p, data.NodeTypeCollection)
}

func (c *Catalog) readDataObjectUnsafe(ctx context.Context, p string) (*data.Node, error) {
	return c.readKindUnsafe(ctx, p, data.NodeTypeDataObject)
}

func (c *Catalog) createCollectionUnsafe(ctx context.Context, p string, recurse bool) error {
	node, err := c.store.ReadNode(ctx, p)
	if err == nil {
		if node.IsCollection() {
			return nil
		}
		return errors.Exist(nil, p)
	}
	if !errors.Is(err, data.ErrNotExist) {
		return err
	}

	parent := path.Dir(p)
	parentNode, err := c.store.ReadNode(ctx, parent)
	switch {
	case err == nil && !parentNode.IsCollection():
		return errors.NotCollection(nil, parent)
	case errors.Is(err, data.ErrNotExist):
		if !recurse {
			return errors.NotExist(nil, parent)
		}
		if err := c.createCollectionUnsafe(ctx, parent, true); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	return c.store.CreateNode(ctx, data.NewCollection(p))
}

// moveTargetUnsafe resolves the final path of a move: into dst if dst is an
// existing collection, or onto dst if its parent exists.
func (c *Catalog) moveTargetUnsafe(ctx context.Context, src, dst string, kind data.NodeType) (string, error) {
	target := dst
	node, err := c.store.ReadNode(ctx, dst)
	switch {
	case err == nil && node.IsCollection():
		target = path.Join(dst, path.Base(src))
	case err == nil && kind == data.NodeTypeCollection:
		return "", errors.Unsupported(nil, "move collection onto data object", dst)
	case err == nil:
		return "", errors.Exist(nil, dst)
	case !errors.Is(err, data.ErrNotExist):
		return "", err
	default:
		if _, err := c.readCollectionUnsafe(ctx, path.Dir(dst)); err != nil {
			return "", err
		}
	}

	if target == src {
		return "", errors.Exist(nil, target)
	}

	exists, err := c.store.ExistsNode(ctx, target)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.Exist(nil, target)
	}
	return target, nil
}

func (c *Catalog) moveToTrashUnsafe(ctx context.Context, p string) error {
	target := c.TrashPath(p)

	exists, err := c.store.ExistsNode(ctx, target)
	if err != nil {
		return err
	}
	if exists {
		target = target + "." + strconv.FormatInt(time.Now().UnixNano(), 10)
	}

	if err := c.createCollectionUnsafe(ctx, path.Dir(target), true); err != nil {
		return err
	}

	c.log.Debug("moving '%s' to trash '%s'", p, target)
	return c.store.RenameNode(ctx, p, target)
}

func (c *Catalog) deleteNodeUnsafe(ctx context.Context, node *data.Node) error {
	for _, replica := range node.Replicas {
		resource := c.resource(replica.Resource)
		if resource == nil {
			continue
		}
		if err := resource.DeleteReplica(ctx, node.ID); err != nil {
			return errors.Errorf("failed to delete replica %d of '%s': %w", replica.Number, node.Path, err)
		}
	}

	return c.store.DeleteNode(ctx, node.Path)
}

// writeReplicasUnsafe streams r into the first resource and copies that
// replica to every other resource.
func (c *Catalog) writeReplicasUnsafe(ctx context.Context, key string, r io.Reader, resources []Resource) ([]data.Replica, error) {
	replicas := make([]data.Replica, 0, len(resources))

	hash := sha256.New()
	size, err := resources[0].PutReplica(ctx, key, io.TeeReader(r, hash))
	if err != nil {
		return nil, errors.Errorf("failed to write replica to '%s': %w", resources[0].Name(), err)
	}
	checksum := hex.EncodeToString(hash.Sum(nil))

	replicas = append(replicas, data.Replica{
		Number:   0,
		Resource: resources[0].Name(),
		Size:     size,
		Checksum: checksum,
	})

	for i, resource := range resources[1:] {
		source, err := resources[0].GetReplica(ctx, key)
		if err != nil {
			return nil, err
		}

		written, err := resource.PutReplica(ctx, key, source)
		source.Close()
		if err != nil {
			return nil, errors.Errorf("failed to write replica to '%s': %w", resource.Name(), err)
		}

		replicas = append(replicas, data.Replica{
			Number:   i + 1,
			Resource: resource.Name(),
			Size:     written,
			Checksum: checksum,
		})
	}

	return replicas, nil
}

func (c *Catalog) verifyReplicasUnsafe(ctx context.Context, key string, replicas []data.Replica) error {
	for _, replica := range replicas {
		resource := c.resource(replica.Resource)
		reader, err := resource.GetReplica(ctx, key)
		if err != nil {
			return err
		}

		hash := sha256.New()
		_, err = io.Copy(hash, reader)
		reader.Close()
		if err != nil {
			return err
		}

		if sum := hex.EncodeToString(hash.Sum(nil)); sum != replica.Checksum {
			return errors.Errorf("%w: checksum of replica %d on '%s' is %s, expected %s",
				data.ErrReplicaInconsistency, replica.Number, replica.Resource, sum, replica.Checksum)
		}
	}
	return nil
}
