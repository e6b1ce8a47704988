package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/mwantia/vcat/command"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

func newShellCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively against one session",
		Long: `Shell keeps a single session open so that cd and relative paths
carry over between commands. Type help to list the commands and exit
to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context(), func(manager *command.Manager) error {
				return repl(cmd.Context(), manager, os.Stdin, cmd.OutOrStdout())
			})
		},
	}
}

// repl reads one command per line until exit, end of input or cancellation.
func repl(ctx context.Context, manager *command.Manager, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "vcat> ")
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		args, err := shlex.Split(line)
		if err != nil {
			pterm.Error.Printfln("invalid input: %v", err)
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "help":
			manager.Help(w)
			continue
		}

		if _, err := manager.Execute(ctx, w, args...); err != nil {
			if errors.Is(err, command.ErrUnknownCommand) {
				pterm.Error.Printfln("%s: command not found (type help)", args[0])
				continue
			}
			pterm.Error.Println(err)
		}
	}
}
