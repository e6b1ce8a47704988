package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/vcat"
	"github.com/mwantia/vcat/command"
)

type FindCommand struct{}

func (*FindCommand) Name() string {
	return "find"
}

func (*FindCommand) Description() string {
	return "Search a collection tree by name, type and metadata"
}

func (*FindCommand) Usage() string {
	return "find [root] [-n pattern] [-t d|f] [-m condition...]"
}

func (f *FindCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	root := "."
	switch len(args.Args) {
	case 0:
	case 1:
		root = args.Args[0]
	default:
		return command.ExitUsage, command.UsageError(f)
	}

	opts, err := searchOptions(args)
	if err != nil {
		return command.ExitUsage, err
	}

	for item, err := range api.Walk(ctx, root, args.String("name"), opts...) {
		if err != nil {
			return command.ExitError, err
		}
		fmt.Fprintln(w, item)
	}
	return command.ExitOK, nil
}

func (*FindCommand) GetFlags() *command.CommandFlagSet {
	return command.NewFlagSet(
		&command.CommandFlag{Name: "name", Short: "n", Type: command.FlagString, Description: "glob matched against the base name"},
		&command.CommandFlag{Name: "type", Short: "t", Type: command.FlagString, Description: "d for collections, f for data objects"},
		&command.CommandFlag{Name: "whole-path", Short: "w", Type: command.FlagBool, Description: "match the path below root, '*' crosses levels"},
		&command.CommandFlag{Name: "meta", Short: "m", Type: command.FlagStringSlice, Description: "data object condition, e.g. 'class like %org%'"},
		&command.CommandFlag{Name: "collection-meta", Type: command.FlagStringSlice, Description: "collection condition"},
		&command.CommandFlag{Name: "mindepth", Type: command.FlagInt, Default: int64(1), Description: "minimum depth, 0 includes root"},
		&command.CommandFlag{Name: "maxdepth", Type: command.FlagInt, Default: int64(-1), Description: "maximum depth, -1 is unbounded"},
		&command.CommandFlag{Name: "post-order", Type: command.FlagBool, Description: "emit children before their collection"},
		&command.CommandFlag{Name: "query", Short: "q", Type: command.FlagBool, Description: "let the catalog evaluate the search"},
	)
}

func searchOptions(args *command.CommandArgs) ([]vcat.SearchOption, error) {
	opts := []vcat.SearchOption{
		vcat.WithMinDepth(int(args.Int("mindepth"))),
		vcat.WithMaxDepth(int(args.Int("maxdepth"))),
	}

	if types := args.String("type"); types != "" {
		opts = append(opts, vcat.WithTypes(types))
	}
	if args.Bool("whole-path") {
		opts = append(opts, vcat.WithWholePath())
	}
	if args.Bool("post-order") {
		opts = append(opts, vcat.WithOrder(vcat.PostOrder))
	}
	if args.Bool("query") {
		opts = append(opts, vcat.WithQueryStrategy())
	}

	for _, expr := range args.Strings("meta") {
		criteria, err := command.ParseCondition(expr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vcat.WithObjectMetadata(criteria...))
	}
	for _, expr := range args.Strings("collection-meta") {
		criteria, err := command.ParseCondition(expr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vcat.WithCollectionMetadata(criteria...))
	}

	return opts, nil
}
