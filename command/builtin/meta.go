package builtin

import (
	"context"
	"io"

	"github.com/mwantia/vcat"
	"github.com/mwantia/vcat/command"
	"github.com/mwantia/vcat/data"
)

type MetaCommand struct{}

func (*MetaCommand) Name() string {
	return "meta"
}

func (*MetaCommand) Description() string {
	return "Add or remove metadata triples"
}

func (*MetaCommand) Usage() string {
	return "meta add|remove [-r] -a attr=value[=unit]... pattern..."
}

func (m *MetaCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) < 2 {
		return command.ExitUsage, command.UsageError(m)
	}

	name := args.Args[0]
	if name == "rm" {
		name = string(vcat.MetadataRemove)
	}
	action, err := vcat.ParseMetadataAction(name)
	if err != nil {
		return command.ExitUsage, err
	}

	var collectionAVUs, objectAVUs []data.AVU
	for _, target := range []struct {
		flag        string
		collections bool
		objects     bool
	}{
		{"avu", true, true},
		{"collection-avu", true, false},
		{"object-avu", false, true},
	} {
		for _, expr := range args.Strings(target.flag) {
			avu, err := command.ParseAVU(expr)
			if err != nil {
				return command.ExitUsage, err
			}

			if target.collections {
				collectionAVUs = append(collectionAVUs, avu)
			}
			if target.objects {
				objectAVUs = append(objectAVUs, avu)
			}
		}
	}

	opts := append(bulkOptions(args),
		vcat.WithCollectionAVUs(collectionAVUs...),
		vcat.WithObjectAVUs(objectAVUs...),
	)

	if err := api.SetMetadata(ctx, vcat.Pattern(args.Args[1:]...), action, opts...); err != nil {
		return command.ExitError, err
	}
	return command.ExitOK, nil
}

func (*MetaCommand) GetFlags() *command.CommandFlagSet {
	return command.NewFlagSet(flagRecurse,
		&command.CommandFlag{Name: "avu", Short: "a", Type: command.FlagStringSlice, Description: "triple for collections and data objects"},
		&command.CommandFlag{Name: "collection-avu", Type: command.FlagStringSlice, Description: "triple for collections only"},
		&command.CommandFlag{Name: "object-avu", Type: command.FlagStringSlice, Description: "triple for data objects only"},
	)
}

type JobMetaCommand struct{}

func (*JobMetaCommand) Name() string {
	return "jobmeta"
}

func (*JobMetaCommand) Description() string {
	return "Attach PBS or Slurm job metadata"
}

func (*JobMetaCommand) Usage() string {
	return "jobmeta [-r] pattern..."
}

func (j *JobMetaCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return command.ExitUsage, command.UsageError(j)
	}

	if err := api.AddJobMetadata(ctx, vcat.Pattern(args.Args...), bulkOptions(args)...); err != nil {
		return command.ExitError, err
	}
	return command.ExitOK, nil
}

func (*JobMetaCommand) GetFlags() *command.CommandFlagSet {
	return command.NewFlagSet(flagRecurse)
}
