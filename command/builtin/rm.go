package builtin

import (
	"context"
	"io"

	"github.com/mwantia/vcat"
	"github.com/mwantia/vcat/command"
)

type RmCommand struct{}

func (*RmCommand) Name() string {
	return "rm"
}

func (*RmCommand) Description() string {
	return "Remove collections and data objects"
}

func (*RmCommand) Usage() string {
	return "rm [-rfi] pattern..."
}

func (r *RmCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return command.ExitUsage, command.UsageError(r)
	}

	if err := api.Remove(ctx, vcat.Pattern(args.Args...), bulkOptions(args)...); err != nil {
		return command.ExitError, err
	}
	return command.ExitOK, nil
}

func (*RmCommand) GetFlags() *command.CommandFlagSet {
	return command.NewFlagSet(flagRecurse, flagForce, flagPrompt)
}
