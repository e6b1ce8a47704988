package catalog_test

import (
	"os"
	"testing"

	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/catalog/memory"
	"github.com/mwantia/vcat/catalog/postgres"
	"github.com/mwantia/vcat/catalog/sqlite"
	"github.com/mwantia/vcat/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStoreFactory creates a new, unopened store instance for testing.
type TestStoreFactory func(t *testing.T) catalog.Store

// GetTestStoreFactories returns all store implementations to test.
func GetTestStoreFactories() map[string]TestStoreFactory {
	factories := map[string]TestStoreFactory{
		"memory": func(t *testing.T) catalog.Store {
			return memory.NewMemoryStore()
		},
		"sqlite": func(t *testing.T) catalog.Store {
			return sqlite.NewSQLiteStore(":memory:")
		},
		"sqlite-file": func(t *testing.T) catalog.Store {
			return sqlite.NewSQLiteStore(t.TempDir() + "/catalog.db")
		},
	}

	if url := os.Getenv("VCAT_TEST_POSTGRES"); url != "" {
		factories["postgres"] = func(t *testing.T) catalog.Store {
			return postgres.NewPostgresStore(url)
		}
	}

	return factories
}

func openStore(t *testing.T, factory TestStoreFactory) catalog.Store {
	t.Helper()

	store := factory(t)
	require.NoError(t, store.Open(t.Context()))
	t.Cleanup(func() {
		store.Close(t.Context())
	})
	return store
}

func seed(t *testing.T, store catalog.Store, paths map[string]data.NodeType) {
	t.Helper()

	for path, nodeType := range paths {
		require.NoError(t, store.CreateNode(t.Context(), data.NewNode(path, nodeType)))
	}
}

func paths(nodes []*data.Node) []string {
	result := make([]string, 0, len(nodes))
	for _, node := range nodes {
		result = append(result, node.Path)
	}
	return result
}

func TestAllStores_NodeLifecycle(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			store := openStore(t, factory)

			node := data.NewDataObject("/zone/a.txt")
			node.Size = 5
			node.Replicas = []data.Replica{{Number: 0, Resource: "r0", Size: 5, Checksum: "abc"}}
			node.Metadata = []data.AVU{data.NewAVU("color", "red")}
			require.NoError(t, store.CreateNode(ctx, node))

			err := store.CreateNode(ctx, data.NewDataObject("/zone/a.txt"))
			assert.ErrorIs(t, err, data.ErrExist)

			got, err := store.ReadNode(ctx, "/zone/a.txt")
			require.NoError(t, err)
			assert.Equal(t, node.ID, got.ID)
			assert.Equal(t, data.NodeTypeDataObject, got.Type)
			assert.Equal(t, int64(5), got.Size)
			assert.Equal(t, node.Replicas, got.Replicas)
			assert.Equal(t, []data.AVU{data.NewAVU("color", "red")}, got.Metadata)

			got.Size = 7
			got.Replicas = []data.Replica{{Number: 0, Resource: "r0", Size: 7}, {Number: 1, Resource: "r1", Size: 7}}
			require.NoError(t, store.UpdateNode(ctx, got))

			updated, err := store.ReadNode(ctx, "/zone/a.txt")
			require.NoError(t, err)
			assert.Equal(t, []int64{7, 7}, updated.ReplicaSizes())

			exists, err := store.ExistsNode(ctx, "/zone/a.txt")
			require.NoError(t, err)
			assert.True(t, exists)

			require.NoError(t, store.DeleteNode(ctx, "/zone/a.txt"))
			_, err = store.ReadNode(ctx, "/zone/a.txt")
			assert.ErrorIs(t, err, data.ErrNotExist)
			assert.ErrorIs(t, store.DeleteNode(ctx, "/zone/a.txt"), data.ErrNotExist)
		})
	}
}

func TestAllStores_Metadata(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			store := openStore(t, factory)
			seed(t, store, map[string]data.NodeType{"/zone": data.NodeTypeCollection})

			red := data.NewAVU("color", "red")
			require.NoError(t, store.AddMeta(ctx, "/zone", red))
			require.NoError(t, store.AddMeta(ctx, "/zone", red))
			require.NoError(t, store.AddMeta(ctx, "/zone", data.NewAVU("size", "10", "kb")))

			node, err := store.ReadNode(ctx, "/zone")
			require.NoError(t, err)
			assert.Len(t, node.Metadata, 3, "duplicates are kept")

			require.NoError(t, store.RemoveMeta(ctx, "/zone", red))
			node, err = store.ReadNode(ctx, "/zone")
			require.NoError(t, err)
			assert.Equal(t, []data.AVU{data.NewAVU("size", "10", "kb")}, node.Metadata)

			assert.ErrorIs(t, store.RemoveMeta(ctx, "/zone", red), data.ErrNotExist)
			assert.ErrorIs(t, store.AddMeta(ctx, "/missing", red), data.ErrNotExist)
		})
	}
}

func TestAllStores_Rename(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			store := openStore(t, factory)
			seed(t, store, map[string]data.NodeType{
				"/zone":           data.NodeTypeCollection,
				"/zone/a":         data.NodeTypeCollection,
				"/zone/a/b":       data.NodeTypeCollection,
				"/zone/a/b/c.txt": data.NodeTypeDataObject,
				"/zone/a/d.txt":   data.NodeTypeDataObject,
				"/zone/ab.txt":    data.NodeTypeDataObject,
			})
			require.NoError(t, store.AddMeta(ctx, "/zone/a/b/c.txt", data.NewAVU("k", "v")))

			require.NoError(t, store.RenameNode(ctx, "/zone/a", "/zone/x"))

			result, err := store.QueryNodes(ctx, catalog.DescendantsOf("/zone"))
			require.NoError(t, err)
			assert.Equal(t, []string{
				"/zone/ab.txt",
				"/zone/x",
				"/zone/x/b",
				"/zone/x/b/c.txt",
				"/zone/x/d.txt",
			}, paths(result.Candidates))

			children, err := store.QueryNodes(ctx, catalog.ChildrenOf("/zone/x"))
			require.NoError(t, err)
			assert.Equal(t, []string{"/zone/x/b", "/zone/x/d.txt"}, paths(children.Candidates))

			moved, err := store.ReadNode(ctx, "/zone/x/b/c.txt")
			require.NoError(t, err)
			assert.Equal(t, []data.AVU{data.NewAVU("k", "v")}, moved.Metadata)

			assert.ErrorIs(t, store.RenameNode(ctx, "/zone/x", "/zone/ab.txt"), data.ErrExist)
			assert.ErrorIs(t, store.RenameNode(ctx, "/zone/a", "/zone/y"), data.ErrNotExist)
		})
	}
}

func TestAllStores_Query(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			store := openStore(t, factory)
			seed(t, store, map[string]data.NodeType{
				"/":                 data.NodeTypeCollection,
				"/zone":             data.NodeTypeCollection,
				"/zone/run1":        data.NodeTypeCollection,
				"/zone/run1/a.dat":  data.NodeTypeDataObject,
				"/zone/run1/B.dat":  data.NodeTypeDataObject,
				"/zone/run1/c.log":  data.NodeTypeDataObject,
				"/zone/run_2":       data.NodeTypeCollection,
				"/zone/run_2/d.dat": data.NodeTypeDataObject,
			})
			require.NoError(t, store.AddMeta(ctx, "/zone/run1/a.dat", data.NewAVU("project", "alpha")))
			require.NoError(t, store.AddMeta(ctx, "/zone/run1/a.dat", data.NewAVU("stage", "raw")))
			require.NoError(t, store.AddMeta(ctx, "/zone/run1/c.log", data.NewAVU("project", "beta")))

			t.Run("root children", func(t *testing.T) {
				result, err := store.QueryNodes(ctx, catalog.ChildrenOf("/"))
				require.NoError(t, err)
				assert.Equal(t, []string{"/zone"}, paths(result.Candidates))
			})

			t.Run("name like is case sensitive", func(t *testing.T) {
				result, err := store.QueryNodes(ctx, &catalog.Query{Parent: "/zone/run1", NameLike: "%.dat"})
				require.NoError(t, err)
				assert.Equal(t, []string{"/zone/run1/B.dat", "/zone/run1/a.dat"}, paths(result.Candidates))

				result, err = store.QueryNodes(ctx, &catalog.Query{Parent: "/zone/run1", NameLike: "b%"})
				require.NoError(t, err)
				assert.Empty(t, result.Candidates)
			})

			t.Run("escaped underscore", func(t *testing.T) {
				result, err := store.QueryNodes(ctx, &catalog.Query{Parent: "/zone", NameLike: data.EscapeLike("run_") + "%"})
				require.NoError(t, err)
				assert.Equal(t, []string{"/zone/run_2"}, paths(result.Candidates))
			})

			t.Run("type filter", func(t *testing.T) {
				result, err := store.QueryNodes(ctx, catalog.DescendantsOf("/zone").WithType(data.NodeTypeCollection))
				require.NoError(t, err)
				assert.Equal(t, []string{"/zone/run1", "/zone/run_2"}, paths(result.Candidates))
			})

			t.Run("criteria on one triple", func(t *testing.T) {
				query := catalog.DescendantsOf("/zone")
				query.Criteria = data.AttributeIs("project", data.OpLike, "al%")
				result, err := store.QueryNodes(ctx, query)
				require.NoError(t, err)
				assert.Equal(t, []string{"/zone/run1/a.dat"}, paths(result.Candidates))

				// attribute of one triple and value of another must not combine
				query.Criteria = data.AttributeIs("stage", data.OpEqual, "alpha")
				result, err = store.QueryNodes(ctx, query)
				require.NoError(t, err)
				assert.Empty(t, result.Candidates)

				query.Criteria = data.AttributeIs("project", data.OpNotEqual, "alpha")
				result, err = store.QueryNodes(ctx, query)
				require.NoError(t, err)
				assert.Equal(t, []string{"/zone/run1/c.log"}, paths(result.Candidates))
			})

			t.Run("pagination", func(t *testing.T) {
				query := catalog.DescendantsOf("/zone").WithType(data.NodeTypeDataObject)
				query.Limit = 2
				query.Offset = 1
				result, err := store.QueryNodes(ctx, query)
				require.NoError(t, err)
				assert.Equal(t, 4, result.TotalCount)
				assert.True(t, result.Paginating)
				assert.Equal(t, []string{"/zone/run1/a.dat", "/zone/run1/c.log"}, paths(result.Candidates))
			})

			t.Run("metadata loaded", func(t *testing.T) {
				result, err := store.QueryNodes(ctx, &catalog.Query{Parent: "/zone/run1", NameLike: "a.dat"})
				require.NoError(t, err)
				require.Len(t, result.Candidates, 1)
				assert.Len(t, result.Candidates[0].Metadata, 2)
			})
		})
	}
}

func TestStoreRegistry(t *testing.T) {
	kinds := catalog.Stores()
	for _, kind := range []string{"memory", "postgres", "sqlite"} {
		assert.Contains(t, kinds, kind)
	}

	store, err := catalog.OpenStore("sqlite", map[string]string{"path": ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", store.Name())

	_, err = catalog.OpenStore("postgres", nil)
	assert.ErrorIs(t, err, data.ErrInvalid)

	_, err = catalog.OpenStore("oracle", nil)
	assert.ErrorIs(t, err, catalog.ErrUnknownBackend)
}
