package builtin

import (
	"context"
	"io"

	"github.com/mwantia/vcat"
	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/command"
)

type GetCommand struct{}

func (*GetCommand) Name() string {
	return "get"
}

func (*GetCommand) Description() string {
	return "Download data objects into a local directory"
}

func (*GetCommand) Usage() string {
	return "get [-rf] pattern... [directory]"
}

func (g *GetCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return command.ExitUsage, command.UsageError(g)
	}

	patterns, local := splitDestination(args.Args, ".")
	if _, err := api.Fetch(ctx, vcat.Pattern(patterns...), local, bulkOptions(args)...); err != nil {
		return command.ExitError, err
	}
	return command.ExitOK, nil
}

func (*GetCommand) GetFlags() *command.CommandFlagSet {
	return command.NewFlagSet(flagRecurse, flagForce)
}

type PutCommand struct{}

func (*PutCommand) Name() string {
	return "put"
}

func (*PutCommand) Description() string {
	return "Upload local files and directories into a collection"
}

func (*PutCommand) Usage() string {
	return "put [-rf] [-R resource] local... [collection]"
}

func (p *PutCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return command.ExitUsage, command.UsageError(p)
	}

	locals, dest := splitDestination(args.Args, ".")

	opts := bulkOptions(args)
	if resource := args.String("resource"); resource != "" {
		opts = append(opts, vcat.WithPassthrough(map[string]string{catalog.OptionResource: resource}))
	}
	if args.Bool("verify") {
		opts = append(opts, vcat.WithPassthrough(map[string]string{catalog.OptionChecksum: "verify"}))
	}

	if err := api.Push(ctx, vcat.LocalPattern(locals...), dest, opts...); err != nil {
		return command.ExitError, err
	}
	return command.ExitOK, nil
}

func (*PutCommand) GetFlags() *command.CommandFlagSet {
	return command.NewFlagSet(flagRecurse, flagForce,
		&command.CommandFlag{Name: "resource", Short: "R", Type: command.FlagString, Description: "write a single replica to this resource"},
		&command.CommandFlag{Name: "verify", Short: "K", Type: command.FlagBool, Description: "re-read replicas and compare checksums"},
	)
}

type MvCommand struct{}

func (*MvCommand) Name() string {
	return "mv"
}

func (*MvCommand) Description() string {
	return "Move or rename collections and data objects"
}

func (*MvCommand) Usage() string {
	return "mv [-i] pattern... destination"
}

func (m *MvCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) < 2 {
		return command.ExitUsage, command.UsageError(m)
	}

	patterns, dest := splitDestination(args.Args, "")
	if err := api.Move(ctx, vcat.Pattern(patterns...), dest, bulkOptions(args)...); err != nil {
		return command.ExitError, err
	}
	return command.ExitOK, nil
}

func (*MvCommand) GetFlags() *command.CommandFlagSet {
	return command.NewFlagSet(flagPrompt)
}
