package command_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/mwantia/vcat/command"
	"github.com/mwantia/vcat/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoCommand struct {
	name string
}

func (e *echoCommand) Name() string        { return e.name }
func (e *echoCommand) Description() string { return "print the arguments" }
func (e *echoCommand) Usage() string       { return e.name + " [-n] args..." }

func (e *echoCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	if args.Bool("fail") {
		return command.ExitError, fmt.Errorf("failed")
	}
	fmt.Fprint(w, args.Args)
	return command.ExitOK, nil
}

func (e *echoCommand) GetFlags() *command.CommandFlagSet {
	return command.NewFlagSet(&command.CommandFlag{Name: "fail", Short: "x", Type: command.FlagBool})
}

func TestManager_Register(t *testing.T) {
	m := command.NewManager(nil)

	require.NoError(t, m.Register(&echoCommand{name: "echo"}, &echoCommand{name: "alpha"}))
	assert.ErrorIs(t, m.Register(&echoCommand{name: "echo"}), data.ErrExist)
	assert.ErrorIs(t, m.Register(&echoCommand{}), data.ErrInvalid)
	assert.ErrorIs(t, m.Register(nil), data.ErrInvalid)

	commands := m.List()
	require.Len(t, commands, 2)
	assert.Equal(t, "alpha", commands[0].Name())

	require.NoError(t, m.Unregister("alpha"))
	assert.ErrorIs(t, m.Unregister("alpha"), command.ErrUnknownCommand)

	_, err := m.Get("alpha")
	assert.ErrorIs(t, err, command.ErrUnknownCommand)
}

func TestManager_Execute(t *testing.T) {
	ctx := t.Context()
	m := command.NewManager(nil)
	require.NoError(t, m.Register(&echoCommand{name: "echo"}))

	var out bytes.Buffer
	code, err := m.Execute(ctx, &out, "echo", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, command.ExitOK, code)
	assert.Equal(t, "[a b]", out.String())

	code, err = m.Execute(ctx, &out, "echo", "-x")
	assert.Error(t, err)
	assert.Equal(t, command.ExitError, code)

	code, err = m.Execute(ctx, &out, "echo", "--unknown")
	assert.ErrorIs(t, err, data.ErrInvalid)
	assert.Equal(t, command.ExitUsage, code)

	code, err = m.Execute(ctx, &out, "missing")
	assert.ErrorIs(t, err, command.ErrUnknownCommand)
	assert.Equal(t, command.ExitUsage, code)

	_, err = m.Execute(ctx, &out)
	assert.ErrorIs(t, err, data.ErrInvalid)

	out.Reset()
	m.Help(&out)
	assert.Contains(t, out.String(), "echo [-n] args...")
	assert.Contains(t, out.String(), "print the arguments")
}
