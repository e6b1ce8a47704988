package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mwantia/vcat"
	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/command"
	"github.com/mwantia/vcat/command/builtin"
	"github.com/mwantia/vcat/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// rootOpts holds the persistent flags shared by every subcommand.
type rootOpts struct {
	envFile string
	debug   bool
}

// exitError carries the exit code of a builtin command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	cmd := &cobra.Command{
		Use:   "vcat",
		Short: "Search and bulk operations on a virtual data catalog",
		Long: `vcat browses a catalog of collections and data objects that carry
attribute-value-unit metadata. It expands glob patterns, walks trees
with metadata filters and runs bulk removals, transfers, moves and
metadata updates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addRootFlags(cmd, opts)

	for _, builtinCmd := range builtin.Commands() {
		cmd.AddCommand(newBuiltinCmd(opts, builtinCmd))
	}
	cmd.AddCommand(newShellCmd(opts))

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, opts *rootOpts) {
	cmd.PersistentFlags().StringVarP(&opts.envFile, "env", "e", "", "environment file path")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")
}

// newBuiltinCmd exposes a shell command as a cobra subcommand. Flags are
// left to the command parser so both front ends accept the same syntax.
func newBuiltinCmd(opts *rootOpts, builtinCmd command.Command) *cobra.Command {
	return &cobra.Command{
		Use:                builtinCmd.Usage(),
		Short:              builtinCmd.Description(),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, help := opts.extract(args)
			if help {
				return cmd.Help()
			}

			return opts.run(cmd.Context(), func(manager *command.Manager) error {
				code, err := manager.Execute(cmd.Context(), cmd.OutOrStdout(), append([]string{builtinCmd.Name()}, args...)...)
				if code != command.ExitOK {
					return &exitError{code: code, err: err}
				}
				return err
			})
		},
	}
}

// extract removes the persistent flags from raw arguments, since cobra
// hands them through untouched when flag parsing is disabled.
func (o *rootOpts) extract(args []string) ([]string, bool) {
	rest := make([]string, 0, len(args))
	help := false

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--":
			return append(rest, args[i:]...), help
		case "-d", "--debug":
			o.debug = true
		case "-h", "--help":
			help = true
		case "-e", "--env":
			if i+1 < len(args) {
				o.envFile = args[i+1]
				i++
			}
		default:
			if len(arg) > 6 && arg[:6] == "--env=" {
				o.envFile = arg[6:]
				continue
			}
			rest = append(rest, arg)
		}
	}
	return rest, help
}

// run opens the catalog described by the environment, builds a session
// with every builtin command registered and hands it to fn.
func (o *rootOpts) run(ctx context.Context, fn func(*command.Manager) error) error {
	env, err := config.Load(o.envFile)
	if err != nil {
		return errors.Errorf("loading environment: %w", err)
	}
	if o.debug {
		env.Log.Level = "debug"
	}

	if err := os.MkdirAll(config.DefaultDirectory(), 0o755); err != nil {
		return errors.Errorf("creating default directory: %w", err)
	}

	logger := env.Logger("vcat")

	cat, err := config.Open(ctx, env, logger)
	if err != nil {
		return errors.Errorf("opening catalog: %w", err)
	}
	defer func(cat *catalog.Catalog) {
		if err := cat.Close(context.Background()); err != nil {
			logger.Warn("Failed to close catalog: %v", err)
		}
	}(cat)

	session, err := vcat.NewSession(cat,
		vcat.WithZone(env.Zone, env.User),
		vcat.WithHome(env.HomeCollection()),
		vcat.WithLogger(logger),
		vcat.WithPrompter(confirm),
	)
	if err != nil {
		return errors.Errorf("creating session: %w", err)
	}

	manager := command.NewManager(session)
	if err := builtin.Register(manager); err != nil {
		return errors.Errorf("registering commands: %w", err)
	}

	return fn(manager)
}

// confirm asks on the terminal; anything but an explicit yes declines.
func confirm(question string) bool {
	result, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		Show(question)
	if err != nil {
		return false
	}
	return result
}
