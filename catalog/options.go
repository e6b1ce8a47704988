package catalog

import (
	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/log"
	"gitlab.com/tozd/go/errors"
)

type CatalogOptions struct {
	Resources []Resource
	Logger    *log.Logger

	Zone  string // Zone name, first segment of every home and trash path
	Trash bool   // Move removed nodes into the zone trash unless forced
}

type CatalogOption func(*CatalogOptions) error

func newDefaultCatalogOptions() *CatalogOptions {
	return &CatalogOptions{
		Resources: make([]Resource, 0),
		Trash:     true,
	}
}

// WithResource adds a replica resource. Every data object gets one replica
// per resource, in the order the resources were added.
func WithResource(resource Resource) CatalogOption {
	return func(o *CatalogOptions) error {
		for _, other := range o.Resources {
			if other.Name() == resource.Name() {
				return errors.Errorf("%w: duplicate resource '%s'", data.ErrInvalid, resource.Name())
			}
		}
		o.Resources = append(o.Resources, resource)
		return nil
	}
}

// WithZone sets the zone used for trash paths.
func WithZone(zone string) CatalogOption {
	return func(o *CatalogOptions) error {
		o.Zone = zone
		return nil
	}
}

// WithTrash enables or disables soft deletion into the zone trash.
func WithTrash(enabled bool) CatalogOption {
	return func(o *CatalogOptions) error {
		o.Trash = enabled
		return nil
	}
}

func WithLogger(logger *log.Logger) CatalogOption {
	return func(o *CatalogOptions) error {
		o.Logger = logger
		return nil
	}
}
