package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/vcat/command"
)

type PwdCommand struct{}

func (*PwdCommand) Name() string {
	return "pwd"
}

func (*PwdCommand) Description() string {
	return "Print the working collection"
}

func (*PwdCommand) Usage() string {
	return "pwd"
}

func (*PwdCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	fmt.Fprintln(w, api.Cwd())
	return command.ExitOK, nil
}

func (*PwdCommand) GetFlags() *command.CommandFlagSet {
	return nil
}

type CdCommand struct{}

func (*CdCommand) Name() string {
	return "cd"
}

func (*CdCommand) Description() string {
	return "Change the working collection"
}

func (*CdCommand) Usage() string {
	return "cd [collection]"
}

func (c *CdCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	target := "~"
	switch len(args.Args) {
	case 0:
	case 1:
		target = args.Args[0]
	default:
		return command.ExitUsage, command.UsageError(c)
	}

	if err := api.ChangeDirectory(ctx, target); err != nil {
		return command.ExitError, err
	}
	return command.ExitOK, nil
}

func (*CdCommand) GetFlags() *command.CommandFlagSet {
	return nil
}
