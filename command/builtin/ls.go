package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/vcat/command"
	"github.com/mwantia/vcat/data"
)

type LsCommand struct{}

// Name returns the command identifier
func (ls *LsCommand) Name() string {
	return "ls"
}

// Description returns human-readable help text
func (ls *LsCommand) Description() string {
	return "List collections and data objects"
}

// Usage returns a usage string for help
func (ls *LsCommand) Usage() string {
	return "ls [-l] [pattern...]"
}

// Execute runs the command with parsed arguments
func (ls *LsCommand) Execute(ctx context.Context, api command.API, args *command.CommandArgs, w io.Writer) (int, error) {
	patterns := args.Args
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	long := args.Bool("long")

	code := command.ExitOK
	for _, pattern := range patterns {
		found := false
		for item, err := range api.Match(ctx, pattern) {
			if err != nil {
				return command.ExitError, err
			}
			found = true

			abs, err := api.ResolvePath(item)
			if err != nil {
				return command.ExitError, err
			}

			node, err := api.Client().Stat(ctx, abs)
			if err != nil {
				return command.ExitError, err
			}

			if node.IsDataObject() {
				printNode(w, item, node, long)
				continue
			}

			children, err := api.Client().ListChildren(ctx, abs)
			if err != nil {
				return command.ExitError, err
			}

			fmt.Fprintf(w, "%s:\n", abs)
			for _, child := range children {
				printNode(w, child.Name(), child, long)
			}
		}

		if !found {
			fmt.Fprintf(w, "ls: %s: no such collection or data object\n", pattern)
			code = command.ExitError
		}
	}
	return code, nil
}

// GetFlags returns the flag set for this command
func (ls *LsCommand) GetFlags() *command.CommandFlagSet {
	return command.NewFlagSet(
		&command.CommandFlag{Name: "long", Short: "l", Type: command.FlagBool, Description: "show size, replicas and modify time"},
	)
}

func printNode(w io.Writer, name string, node *data.Node, long bool) {
	if node.IsCollection() {
		fmt.Fprintf(w, "  C- %s\n", name)
		return
	}

	if !long {
		fmt.Fprintf(w, "  %s\n", name)
		return
	}

	fmt.Fprintf(w, "  %-32s %12d  %d replica(s)  %s\n", name, node.Size, len(node.Replicas), node.ModifyTime.Format("2006-01-02 15:04"))
}
