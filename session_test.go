package vcat_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mwantia/vcat"
	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/catalog/memory"
	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/log"
	storage "github.com/mwantia/vcat/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHome = "/tempZone/home/rods"

type testSession struct {
	*vcat.Session
	catalog *catalog.Catalog
	logs    *bytes.Buffer
}

func newTestSession(t *testing.T, opts ...vcat.SessionOption) *testSession {
	t.Helper()

	c, err := catalog.New(memory.NewMemoryStore(),
		catalog.WithZone("tempZone"),
		catalog.WithResource(storage.NewMemoryResource("demoResc")),
		catalog.WithResource(storage.NewMemoryResource("replResc")),
	)
	require.NoError(t, err)
	require.NoError(t, c.Open(t.Context()))
	t.Cleanup(func() {
		c.Close(t.Context())
	})
	require.NoError(t, c.CreateCollection(t.Context(), testHome, true, nil))

	logs := &bytes.Buffer{}
	opts = append([]vcat.SessionOption{
		vcat.WithZone("tempZone", "rods"),
		vcat.WithLogger(log.NewWriterLogger(logs, log.Debug)),
	}, opts...)

	s, err := vcat.NewSession(c, opts...)
	require.NoError(t, err)

	return &testSession{Session: s, catalog: c, logs: logs}
}

// mkdir creates a collection below the home collection.
func (ts *testSession) mkdir(t *testing.T, rel string) {
	t.Helper()
	require.NoError(t, ts.catalog.CreateCollection(t.Context(), testHome+"/"+rel, true, nil))
}

// put creates a data object below the home collection.
func (ts *testSession) put(t *testing.T, rel, content string, avus ...data.AVU) {
	t.Helper()

	p := testHome + "/" + rel
	_, err := ts.catalog.PutDataObject(t.Context(), p, strings.NewReader(content), false, nil)
	require.NoError(t, err)

	for _, avu := range avus {
		require.NoError(t, ts.catalog.AddMetadata(t.Context(), data.NodeTypeDataObject, p, avu))
	}
}

func (ts *testSession) exists(t *testing.T, rel string) bool {
	t.Helper()

	_, err := ts.catalog.Stat(t.Context(), testHome+"/"+rel)
	if err != nil {
		require.ErrorIs(t, err, data.ErrNotExist)
		return false
	}
	return true
}

func TestNewSession_Home(t *testing.T) {
	s := newTestSession(t)
	assert.Equal(t, testHome, s.Home())
	assert.Equal(t, testHome, s.Cwd())

	s = newTestSession(t, vcat.WithHome("/tempZone/home/public"))
	assert.Equal(t, "/tempZone/home/public", s.Home())

	_, err := vcat.NewSession(s.catalog, vcat.WithHome("relative"))
	assert.ErrorIs(t, err, data.ErrResolution)

	plain, err := vcat.NewSession(s.catalog)
	require.NoError(t, err)
	assert.Equal(t, "/", plain.Home())
}
