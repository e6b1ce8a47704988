package builtin

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/vcat"
	"github.com/mwantia/vcat/command"
)

type DuCommand struct{}

func (*DuCommand) Name() string {
	return "du"
}

func (*DuCommand) Description() string {
	return "Print the size of data objects and collection trees"
}

func (*DuCommand) Usage() string {
	return "du [-rH] pattern..."
}

func (d *DuCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	patterns := args.Args
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	human := args.Bool("human")
	for entry, err := range api.SizeOf(ctx, vcat.Pattern(patterns...), bulkOptions(args)...) {
		if err != nil {
			return command.ExitError, err
		}

		size := strconv.FormatInt(entry.Size, 10)
		if human {
			size = humanize.IBytes(uint64(entry.Size))
		}
		fmt.Fprintf(w, "%s\t%s\n", size, entry.Path)
	}
	return command.ExitOK, nil
}

func (*DuCommand) GetFlags() *command.CommandFlagSet {
	return command.NewFlagSet(flagRecurse,
		&command.CommandFlag{Name: "human", Short: "H", Type: command.FlagBool, Description: "print sizes in KiB, MiB, GiB"},
	)
}
