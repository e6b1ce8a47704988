package builtin_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwantia/vcat"
	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/catalog/memory"
	"github.com/mwantia/vcat/command"
	"github.com/mwantia/vcat/command/builtin"
	"github.com/mwantia/vcat/data"
	storage "github.com/mwantia/vcat/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const home = "/tempZone/home/rods"

type shell struct {
	t       *testing.T
	manager *command.Manager
	session *vcat.Session
	catalog *catalog.Catalog
}

func newShell(t *testing.T, opts ...vcat.SessionOption) *shell {
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
	require.NoError(t, c.CreateCollection(t.Context(), home, true, nil))

	s, err := vcat.NewSession(c, append([]vcat.SessionOption{vcat.WithHome(home)}, opts...)...)
	require.NoError(t, err)

	m := command.NewManager(s)
	require.NoError(t, builtin.Register(m))

	return &shell{t: t, manager: m, session: s, catalog: c}
}

// run executes one command line split at white space and returns its output.
func (sh *shell) run(line string) string {
	sh.t.Helper()
	return sh.runArgs(strings.Fields(line)...)
}

func (sh *shell) runArgs(args ...string) string {
	sh.t.Helper()

	var out bytes.Buffer
	code, err := sh.manager.Execute(sh.t.Context(), &out, args...)
	require.NoError(sh.t, err, args)
	require.Equal(sh.t, command.ExitOK, code, args)
	return out.String()
}

func (sh *shell) fail(line string) error {
	sh.t.Helper()

	var out bytes.Buffer
	code, err := sh.manager.Execute(sh.t.Context(), &out, strings.Fields(line)...)
	assert.NotEqual(sh.t, command.ExitOK, code, line)
	return err
}

func TestBuiltins_Registered(t *testing.T) {
	sh := newShell(t)

	names := make([]string, 0)
	for _, cmd := range sh.manager.List() {
		names = append(names, cmd.Name())
		assert.NotEmpty(t, cmd.Usage())
		assert.NotEmpty(t, cmd.Description())
	}
	assert.Equal(t, []string{"cd", "du", "find", "get", "jobmeta", "ls", "meta", "mv", "put", "pwd", "rm"}, names)
}

func TestBuiltins_Navigation(t *testing.T) {
	sh := newShell(t)
	require.NoError(t, sh.catalog.CreateCollection(t.Context(), home+"/tmp", false, nil))

	assert.Equal(t, home+"\n", sh.run("pwd"))
	sh.run("cd tmp")
	assert.Equal(t, home+"/tmp\n", sh.run("pwd"))
	sh.run("cd")
	assert.Equal(t, home+"\n", sh.run("pwd"))

	assert.ErrorIs(t, sh.fail("cd missing"), data.ErrPrecondition)
	assert.ErrorIs(t, sh.fail("cd a b"), data.ErrInvalid)
}

func TestBuiltins_TransferAndList(t *testing.T) {
	sh := newShell(t)
	require.NoError(t, sh.catalog.CreateCollection(t.Context(), home+"/tmp", false, nil))

	local := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(local, "molecules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(local, "molecules", "a.xyz"), []byte("aaaa"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(local, "molecules", "b.xyz"), []byte("bb"), 0o644))

	sh.run("put -r " + filepath.Join(local, "molecules") + " tmp")

	listing := sh.run("ls tmp/molecules")
	assert.Equal(t, home+"/tmp/molecules:\n  a.xyz\n  b.xyz\n", listing)
	assert.Contains(t, sh.run("ls -l tmp/molecules/a.xyz"), "2 replica(s)")
	assert.Equal(t, "  C- molecules\n", strings.SplitN(sh.run("ls tmp"), "\n", 2)[1])

	assert.Equal(t, "tmp/molecules/a.xyz\ntmp/molecules/b.xyz\n", sh.run("find tmp -n *.xyz"))
	assert.Equal(t, "6\ttmp\n", sh.run("du -r tmp"))
	assert.Equal(t, "4 B\ttmp/molecules/a.xyz\n", sh.run("du -H tmp/molecules/a.xyz"))

	out := t.TempDir()
	sh.run("get -r tmp/molecules " + out)
	content, err := os.ReadFile(filepath.Join(out, "molecules", "a.xyz"))
	require.NoError(t, err)
	assert.Equal(t, "aaaa", string(content))

	assert.ErrorIs(t, sh.fail("get tmp/molecules/a.xyz "+filepath.Join(out, "molecules")), data.ErrRemoteOperation)
	sh.run("get -f tmp/molecules/a.xyz " + filepath.Join(out, "molecules"))
}

func TestBuiltins_MoveRemove(t *testing.T) {
	sh := newShell(t)
	ctx := t.Context()
	for _, name := range []string{"a.txt", "b.txt"} {
		_, err := sh.catalog.PutDataObject(ctx, home+"/"+name, strings.NewReader(name), false, nil)
		require.NoError(t, err)
	}
	require.NoError(t, sh.catalog.CreateCollection(ctx, home+"/archive", false, nil))

	assert.ErrorIs(t, sh.fail("mv *.txt missing"), data.ErrPrecondition)
	assert.ErrorIs(t, sh.fail("mv a.txt"), data.ErrInvalid)

	sh.run("mv *.txt archive")
	assert.Equal(t, "archive/a.txt\narchive/b.txt\n", sh.run("find archive"))

	sh.run("rm archive")
	assert.Equal(t, "archive/a.txt\narchive/b.txt\n", sh.run("find archive"), "collections need -r")

	sh.run("rm -rf archive")
	exists, err := sh.catalog.CollectionExists(ctx, home+"/archive")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBuiltins_Metadata(t *testing.T) {
	env := map[string]string{"SLURM_JOB_ID": "77"}
	sh := newShell(t, vcat.WithLookupEnv(func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}))
	ctx := t.Context()
	require.NoError(t, sh.catalog.CreateCollection(ctx, home+"/runs", false, nil))
	for _, name := range []string{"organic.dat", "inorganic.dat", "other.dat"} {
		_, err := sh.catalog.PutDataObject(ctx, home+"/runs/"+name, strings.NewReader(name), false, nil)
		require.NoError(t, err)
	}

	sh.run("meta add -a class=organic runs/organic.dat")
	sh.run("meta add -a class=inorganic runs/inorganic.dat")
	sh.run("meta add --collection-avu project=vcat -r runs")

	assert.Empty(t, sh.run("find runs -m class=organic -m class=inorganic"), "every condition applies")
	assert.Empty(t, sh.run("find runs -m class=organic -m class=inorganic -q"))

	like := sh.runArgs("find", "runs", "--meta", "class like %org%")
	assert.Equal(t, "runs/inorganic.dat\nruns/organic.dat\n", like)
	assert.Equal(t, like, sh.runArgs("find", "runs", "-q", "-m", "class like %org%"))

	found := sh.run("find runs --meta class=organic")
	assert.Equal(t, "runs/organic.dat\n", found)

	found = sh.run("find . -t d --collection-meta project=vcat")
	assert.Equal(t, "./runs\n", found)

	sh.run("meta rm -a class=organic runs/organic.dat")
	assert.Empty(t, sh.run("find runs --meta class=organic"))

	assert.ErrorIs(t, sh.fail("meta replace -a a=b runs"), data.ErrInvalid)

	sh.run("jobmeta runs/other.dat")
	assert.Equal(t, "runs/other.dat\n", sh.run("find runs --meta SLURM_JOB_ID=77"))
}
