package catalog

import (
	"sort"
	"sync"

	"github.com/mwantia/vcat/data"
	"gitlab.com/tozd/go/errors"
)

var ErrUnknownBackend = errors.Base("vcat: unknown backend")

var (
	registryMu sync.RWMutex
	stores     = make(map[string]StoreFactory)
	resources  = make(map[string]ResourceFactory)
)

// StoreFactory creates a Store from backend-specific configuration keys.
type StoreFactory func(config map[string]string) (Store, error)

// ResourceFactory creates a Resource from backend-specific configuration keys.
type ResourceFactory func(name string, config map[string]string) (Resource, error)

// RegisterStore registers a store factory under the given type name.
// It is typically called from init() in store packages and panics on duplicates.
func RegisterStore(kind string, factory StoreFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("catalog: RegisterStore factory is nil")
	}
	if _, dup := stores[kind]; dup {
		panic("catalog: RegisterStore called twice for " + kind)
	}
	stores[kind] = factory
}

// RegisterResource registers a resource factory under the given type name.
func RegisterResource(kind string, factory ResourceFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("catalog: RegisterResource factory is nil")
	}
	if _, dup := resources[kind]; dup {
		panic("catalog: RegisterResource called twice for " + kind)
	}
	resources[kind] = factory
}

// OpenStore creates a store of the registered type. The store is not opened yet.
func OpenStore(kind string, config map[string]string) (Store, error) {
	registryMu.RLock()
	factory, ok := stores[kind]
	registryMu.RUnlock()

	if !ok {
		return nil, errors.Errorf("%w: store '%s'", ErrUnknownBackend, kind)
	}
	return factory(config)
}

// OpenResource creates a named resource of the registered type.
func OpenResource(kind, name string, config map[string]string) (Resource, error) {
	registryMu.RLock()
	factory, ok := resources[kind]
	registryMu.RUnlock()

	if !ok {
		return nil, errors.Errorf("%w: resource '%s'", ErrUnknownBackend, kind)
	}
	if name == "" {
		return nil, errors.Errorf("%w: resource of type '%s' needs a name", data.ErrInvalid, kind)
	}
	return factory(name, config)
}

// Stores returns the sorted list of registered store types.
func Stores() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	return sortedKeys(stores)
}

// Resources returns the sorted list of registered resource types.
func Resources() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	return sortedKeys(resources)
}

func sortedKeys[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
