package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mwantia/vcat"
	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/catalog/memory"
	"github.com/mwantia/vcat/command"
	"github.com/mwantia/vcat/command/builtin"
	"github.com/mwantia/vcat/log"
	storage "github.com/mwantia/vcat/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *command.Manager {
	t.Helper()

	c, err := catalog.New(memory.NewMemoryStore(),
		catalog.WithZone("tempZone"),
		catalog.WithResource(storage.NewMemoryResource("demoResc")),
	)
	require.NoError(t, err)
	require.NoError(t, c.Open(t.Context()))
	t.Cleanup(func() {
		c.Close(t.Context())
	})
	require.NoError(t, c.CreateCollection(t.Context(), "/tempZone/home/rods/data", true, nil))

	session, err := vcat.NewSession(c,
		vcat.WithZone("tempZone", "rods"),
		vcat.WithLogger(log.Discard()),
	)
	require.NoError(t, err)

	manager := command.NewManager(session)
	require.NoError(t, builtin.Register(manager))
	return manager
}

func TestRootOpts_Extract(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		rest    []string
		envFile string
		debug   bool
		help    bool
	}{
		{
			name: "plain",
			args: []string{"-r", "a*"},
			rest: []string{"-r", "a*"},
		},
		{
			name:    "persistent flags anywhere",
			args:    []string{"-d", "-r", "--env", "env.yaml", "a*"},
			rest:    []string{"-r", "a*"},
			envFile: "env.yaml",
			debug:   true,
		},
		{
			name:    "inline env",
			args:    []string{"--env=other.json", "x"},
			rest:    []string{"x"},
			envFile: "other.json",
		},
		{
			name: "help",
			args: []string{"--help"},
			rest: []string{},
			help: true,
		},
		{
			name: "terminator",
			args: []string{"-r", "--", "-d"},
			rest: []string{"-r", "--", "-d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &rootOpts{}
			rest, help := opts.extract(tt.args)

			assert.Equal(t, tt.rest, rest)
			assert.Equal(t, tt.help, help)
			assert.Equal(t, tt.envFile, opts.envFile)
			assert.Equal(t, tt.debug, opts.debug)
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}

	for _, builtinCmd := range builtin.Commands() {
		assert.Contains(t, names, builtinCmd.Name())
	}
	assert.Contains(t, names, "shell")
}

func TestRepl(t *testing.T) {
	manager := newTestManager(t)

	input := strings.Join([]string{
		"pwd",
		"",
		`cd "data"`,
		"pwd",
		"unknown",
		"exit",
		"pwd",
	}, "\n")

	out := &bytes.Buffer{}
	require.NoError(t, repl(t.Context(), manager, strings.NewReader(input), out))

	assert.Equal(t, 2, strings.Count(out.String(), "/tempZone/home/rods"))
	assert.Contains(t, out.String(), "/tempZone/home/rods/data\n")
}

func TestRepl_Help(t *testing.T) {
	manager := newTestManager(t)

	out := &bytes.Buffer{}
	require.NoError(t, repl(t.Context(), manager, strings.NewReader("help\n"), out))

	for _, builtinCmd := range builtin.Commands() {
		assert.Contains(t, out.String(), builtinCmd.Usage())
	}
}
