// Package builtin contains the commands available in every shell.
package builtin

import (
	"github.com/mwantia/vcat"
	"github.com/mwantia/vcat/command"
)

// Commands returns a fresh instance of every builtin command.
func Commands() []command.Command {
	return []command.Command{
		&PwdCommand{},
		&CdCommand{},
		&LsCommand{},
		&FindCommand{},
		&RmCommand{},
		&GetCommand{},
		&PutCommand{},
		&MvCommand{},
		&MetaCommand{},
		&JobMetaCommand{},
		&DuCommand{},
	}
}

// Register adds every builtin command to the manager.
func Register(manager *command.Manager) error {
	return manager.Register(Commands()...)
}

var (
	flagRecurse = &command.CommandFlag{Name: "recursive", Short: "r", Type: command.FlagBool, Description: "descend into collections"}
	flagForce   = &command.CommandFlag{Name: "force", Short: "f", Type: command.FlagBool, Description: "overwrite or bypass the trash"}
	flagPrompt  = &command.CommandFlag{Name: "interactive", Short: "i", Type: command.FlagBool, Description: "confirm every item"}
)

// bulkOptions maps the shared flags onto bulk options.
func bulkOptions(args *command.CommandArgs) []vcat.BulkOption {
	opts := make([]vcat.BulkOption, 0)
	if args.Bool(flagRecurse.Name) {
		opts = append(opts, vcat.WithRecurse())
	}
	if args.Bool(flagForce.Name) {
		opts = append(opts, vcat.WithForce())
	}
	if args.Bool(flagPrompt.Name) {
		opts = append(opts, vcat.WithPrompt())
	}
	return opts
}

// splitDestination separates the sources from the trailing destination;
// a single argument is copied into def.
func splitDestination(args []string, def string) ([]string, string) {
	if len(args) == 1 {
		return args, def
	}
	return args[:len(args)-1], args[len(args)-1]
}
