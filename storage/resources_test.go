package storage_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/storage/consul"
	"github.com/mwantia/vcat/storage/local"
	"github.com/mwantia/vcat/storage/memory"
	"github.com/mwantia/vcat/storage/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResourceFactory creates a new resource instance for testing.
type TestResourceFactory func(t *testing.T) (catalog.Resource, error)

// GetTestResourceFactories returns all resource implementations to test.
// Networked resources only run when their endpoint is configured.
func GetTestResourceFactories() map[string]TestResourceFactory {
	factories := map[string]TestResourceFactory{
		"memory": func(t *testing.T) (catalog.Resource, error) {
			return memory.NewMemoryResource("mem"), nil
		},
		"local": func(t *testing.T) (catalog.Resource, error) {
			return local.NewLocalResource("disk", t.TempDir()), nil
		},
	}

	if endpoint := os.Getenv("VCAT_TEST_S3_ENDPOINT"); endpoint != "" {
		factories["s3"] = func(t *testing.T) (catalog.Resource, error) {
			return s3.NewS3Resource("s3", &s3.S3ResourceConfig{
				Endpoint:  endpoint,
				Bucket:    os.Getenv("VCAT_TEST_S3_BUCKET"),
				AccessKey: os.Getenv("VCAT_TEST_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("VCAT_TEST_S3_SECRET_KEY"),
				Prefix:    "vcat-test/" + data.NewID(),
			})
		}
	}

	if address := os.Getenv("VCAT_TEST_CONSUL"); address != "" {
		factories["consul"] = func(t *testing.T) (catalog.Resource, error) {
			return consul.NewConsulResource("consul", &consul.ConsulResourceConfig{
				Address: address,
				Prefix:  "vcat-test/" + data.NewID(),
			})
		}
	}

	return factories
}

func TestAllResources_ReplicaLifecycle(t *testing.T) {
	for name, factory := range GetTestResourceFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			resource, err := factory(t)
			require.NoError(t, err)
			require.NoError(t, resource.Open(ctx))
			defer resource.Close(ctx)

			key := data.NewID()
			size, err := resource.PutReplica(ctx, key, strings.NewReader("hello world"))
			require.NoError(t, err)
			assert.Equal(t, int64(11), size)

			stat, err := resource.StatReplica(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, int64(11), stat)

			reader, err := resource.GetReplica(ctx, key)
			require.NoError(t, err)
			content, err := io.ReadAll(reader)
			require.NoError(t, reader.Close())
			require.NoError(t, err)
			assert.Equal(t, "hello world", string(content))

			// Overwrite replaces the replica
			size, err = resource.PutReplica(ctx, key, bytes.NewReader([]byte("bye")))
			require.NoError(t, err)
			assert.Equal(t, int64(3), size)

			require.NoError(t, resource.DeleteReplica(ctx, key))
			require.NoError(t, resource.DeleteReplica(ctx, key), "deleting twice is not an error")

			_, err = resource.StatReplica(ctx, key)
			assert.ErrorIs(t, err, data.ErrNotExist)
		})
	}
}

func TestAllResources_MissingReplica(t *testing.T) {
	for name, factory := range GetTestResourceFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			resource, err := factory(t)
			require.NoError(t, err)
			require.NoError(t, resource.Open(ctx))
			defer resource.Close(ctx)

			_, err = resource.GetReplica(ctx, data.NewID())
			assert.ErrorIs(t, err, data.ErrNotExist)
		})
	}
}

func TestResourceRegistry(t *testing.T) {
	kinds := catalog.Resources()
	for _, kind := range []string{"consul", "local", "memory", "s3"} {
		assert.Contains(t, kinds, kind)
	}

	resource, err := catalog.OpenResource("local", "disk", map[string]string{"path": t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "disk", resource.Name())

	_, err = catalog.OpenResource("local", "disk", nil)
	assert.ErrorIs(t, err, data.ErrInvalid)

	_, err = catalog.OpenResource("tape", "archive", nil)
	assert.ErrorIs(t, err, catalog.ErrUnknownBackend)
}
