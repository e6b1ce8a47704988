package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/vcat/config"
	"github.com/mwantia/vcat/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_JSON(t *testing.T) {
	file := writeFile(t, "environment.json", `{
		"zone": "labZone",
		"user": "alice",
		"trash": false,
		"store": {"driver": "memory"},
		"resources": [
			{"name": "fast", "driver": "memory"},
			{"name": "archive", "driver": "local", "options": {"path": "/srv/archive"}}
		],
		"log": {"level": "debug", "json": true}
	}`)

	env, err := config.LoadWithLookup(file, lookupMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "labZone", env.Zone)
	assert.Equal(t, "/labZone/home/alice", env.HomeCollection())
	assert.False(t, env.TrashEnabled())
	assert.Equal(t, "memory", env.Store.Driver)
	require.Len(t, env.Resources, 2)
	assert.Equal(t, "/srv/archive", env.Resources[1].Options["path"])
	assert.True(t, env.Log.JSON)
}

func TestLoad_YAML(t *testing.T) {
	file := writeFile(t, "environment.yaml", `
zone: labZone
user: bob
home: /labZone/projects/shared
store:
  driver: postgres
  options:
    url: postgres://localhost/vcat
`)

	env, err := config.LoadWithLookup(file, lookupMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "/labZone/projects/shared", env.HomeCollection())
	assert.True(t, env.TrashEnabled())
	assert.Equal(t, "postgres", env.Store.Driver)
	require.Len(t, env.Resources, 1, "default resource is used")
	assert.Equal(t, "local", env.Resources[0].Driver)
	assert.Equal(t, "info", env.Log.Level)
}

func TestLoad_LookupOrder(t *testing.T) {
	file := writeFile(t, "env.json", `{"zone": "fromFile", "user": "carol"}`)

	env, err := config.LoadWithLookup("", lookupMap(map[string]string{
		config.EnvEnvironmentFile: file,
		config.EnvUser:            "dave",
	}))
	require.NoError(t, err)
	assert.Equal(t, "fromFile", env.Zone)
	assert.Equal(t, "dave", env.User, "environment variables override the file")
	assert.Equal(t, "/fromFile/home/dave", env.HomeCollection())

	env, err = config.LoadWithLookup("", lookupMap(map[string]string{
		config.EnvEnvironmentFile: filepath.Join(t.TempDir(), "missing.json"),
	}))
	assert.Error(t, err, "a named file must exist")
	assert.Nil(t, env)

	_, err = config.LoadWithLookup(filepath.Join(t.TempDir(), "missing.json"), lookupMap(nil))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Overrides(t *testing.T) {
	file := writeFile(t, "env.json", `{"zone": "z", "user": "u"}`)

	env, err := config.LoadWithLookup(file, lookupMap(map[string]string{
		config.EnvHome: "/z/elsewhere",
		config.EnvZone: "other",
	}))
	require.NoError(t, err)
	assert.Equal(t, "other", env.Zone)
	assert.Equal(t, "/z/elsewhere", env.HomeCollection())
}

func TestValidate(t *testing.T) {
	tests := map[string]string{
		"relative home":      `{"home": "relative"}`,
		"duplicate resource": `{"resources": [{"name": "a", "driver": "memory"}, {"name": "a", "driver": "memory"}]}`,
		"unnamed resource":   `{"resources": [{"driver": "memory"}]}`,
		"bad level":          `{"log": {"level": "loud"}}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			file := writeFile(t, "env.json", content)
			_, err := config.LoadWithLookup(file, lookupMap(nil))
			assert.Error(t, err)
		})
	}

	_, err := config.Parse([]byte("zone: [unterminated"))
	assert.ErrorIs(t, err, data.ErrInvalid)
}

func TestOpen(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()

	env := config.DefaultEnvironment(dir)
	env.Resources = append(env.Resources, config.ResourceConfig{Name: "cache", Driver: "memory"})
	require.NoError(t, env.Validate())

	c, err := config.Open(ctx, env, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Close(ctx)
	})

	exists, err := c.CollectionExists(ctx, env.HomeCollection())
	require.NoError(t, err)
	assert.True(t, exists, "home collection is created")
	assert.Equal(t, []string{"demoResc", "cache"}, c.ResourceNames())
	assert.FileExists(t, filepath.Join(dir, "catalog.db"))

	env.Store.Driver = "unknown"
	_, err = config.Open(ctx, env, nil)
	assert.Error(t, err)
}
