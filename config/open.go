package config

import (
	"context"

	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/log"
	"gitlab.com/tozd/go/errors"

	_ "github.com/mwantia/vcat/catalog/memory"
	_ "github.com/mwantia/vcat/catalog/postgres"
	_ "github.com/mwantia/vcat/catalog/sqlite"
	_ "github.com/mwantia/vcat/storage/consul"
	_ "github.com/mwantia/vcat/storage/local"
	_ "github.com/mwantia/vcat/storage/memory"
	_ "github.com/mwantia/vcat/storage/s3"
)

// Open creates the store and resources of env through the backend registry,
// opens the catalog and makes sure the home collection exists.
func Open(ctx context.Context, env *Environment, logger *log.Logger) (*catalog.Catalog, error) {
	store, err := catalog.OpenStore(env.Store.Driver, env.Store.Options)
	if err != nil {
		return nil, errors.Errorf("failed to create store: %w", err)
	}

	opts := []catalog.CatalogOption{
		catalog.WithZone(env.Zone),
		catalog.WithTrash(env.TrashEnabled()),
		catalog.WithLogger(logger),
	}

	for _, rc := range env.Resources {
		resource, err := catalog.OpenResource(rc.Driver, rc.Name, rc.Options)
		if err != nil {
			return nil, errors.Errorf("failed to create resource '%s': %w", rc.Name, err)
		}
		opts = append(opts, catalog.WithResource(resource))
	}

	c, err := catalog.New(store, opts...)
	if err != nil {
		return nil, err
	}

	if err := c.Open(ctx); err != nil {
		return nil, err
	}

	if err := c.CreateCollection(ctx, env.HomeCollection(), true, nil); err != nil {
		c.Close(ctx)
		return nil, errors.Errorf("failed to create home collection: %w", err)
	}
	return c, nil
}
