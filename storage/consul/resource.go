package consul

import (
	"bytes"
	"context"
	"io"
	"path"
	"sync"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data/errors"
)

// Consul KV has a default limit of 512KB per value
const maxValueSize = 512 * 1024

// ConsulResource stores replicas as values of the Consul KV store.
// It suits small data objects such as job descriptions and manifests.
type ConsulResource struct {
	mu     sync.RWMutex
	name   string
	client *api.Client
	kv     *api.KV
	config *ConsulResourceConfig
}

// ConsulResourceConfig contains configuration options for the Consul resource
type ConsulResourceConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Namespace for Consul Enterprise (optional)
	Namespace string

	// Prefix for all keys in Consul KV (default: "vcat/replicas")
	Prefix string
}

func init() {
	catalog.RegisterResource("consul", func(name string, config map[string]string) (catalog.Resource, error) {
		return NewConsulResource(name, &ConsulResourceConfig{
			Address:    config["address"],
			Token:      config["token"],
			Datacenter: config["datacenter"],
			Namespace:  config["namespace"],
			Prefix:     config["prefix"],
		})
	})
}

// NewConsulResource creates a new Consul-backed replica resource
func NewConsulResource(name string, config *ConsulResourceConfig) (*ConsulResource, error) {
	if config == nil {
		config = &ConsulResourceConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "vcat/replicas"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}
	if config.Namespace != "" {
		clientConfig.Namespace = config.Namespace
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulResource{
		name:   name,
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

func (cr *ConsulResource) Name() string {
	return cr.name
}

// Open verifies that the agent is reachable.
func (cr *ConsulResource) Open(ctx context.Context) error {
	_, err := cr.client.Status().Leader()
	return err
}

// Close is part of the lifecycle behaviour; the Consul client is stateless.
func (cr *ConsulResource) Close(ctx context.Context) error {
	return nil
}

func (cr *ConsulResource) GetCapabilities() *catalog.BackendCapabilities {
	return &catalog.BackendCapabilities{
		Capabilities: []catalog.BackendCapability{
			catalog.CapabilityReplicas,
			catalog.CapabilityPersistent,
		},
		MaxObjectSize: maxValueSize,
	}
}

func (cr *ConsulResource) PutReplica(ctx context.Context, key string, r io.Reader) (int64, error) {
	// Read one byte past the limit to detect oversized replicas
	content, err := io.ReadAll(io.LimitReader(r, maxValueSize+1))
	if err != nil {
		return 0, err
	}
	if len(content) > maxValueSize {
		return 0, errors.Unsupported(nil, "replica larger than 512KB", key)
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()

	pair := &api.KVPair{
		Key:   cr.buildKey(key),
		Value: content,
	}
	if _, err := cr.kv.Put(pair, (&api.WriteOptions{}).WithContext(ctx)); err != nil {
		return 0, err
	}
	return int64(len(content)), nil
}

func (cr *ConsulResource) GetReplica(ctx context.Context, key string) (io.ReadCloser, error) {
	content, err := cr.get(ctx, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (cr *ConsulResource) DeleteReplica(ctx context.Context, key string) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	_, err := cr.kv.Delete(cr.buildKey(key), (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (cr *ConsulResource) StatReplica(ctx context.Context, key string) (int64, error) {
	content, err := cr.get(ctx, key)
	if err != nil {
		return 0, err
	}
	return int64(len(content)), nil
}

func (cr *ConsulResource) get(ctx context.Context, key string) ([]byte, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	pair, _, err := cr.kv.Get(cr.buildKey(key), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, errors.NotExist(nil, "replica "+key)
	}
	return pair.Value, nil
}

// buildKey constructs the full Consul key with prefix
func (cr *ConsulResource) buildKey(key string) string {
	return path.Join(cr.config.Prefix, key)
}
