// Package command runs shell-like commands against a session.
package command

import (
	"context"
	"io"
	"iter"

	"github.com/mwantia/vcat"
	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data"
)

// API is the part of a session that commands operate on.
type API interface {
	Home() string
	Cwd() string
	ResolvePath(p string) (string, error)
	ChangeDirectory(ctx context.Context, p string) error
	Client() catalog.Client

	Match(ctx context.Context, pattern string, opts ...vcat.SearchOption) iter.Seq2[string, error]
	Walk(ctx context.Context, root, pattern string, opts ...vcat.SearchOption) iter.Seq2[string, error]

	Remove(ctx context.Context, src vcat.Source, opts ...vcat.BulkOption) error
	Fetch(ctx context.Context, src vcat.Source, localPath string, opts ...vcat.BulkOption) ([]*data.Node, error)
	Push(ctx context.Context, src vcat.LocalSource, dest string, opts ...vcat.BulkOption) error
	Move(ctx context.Context, src vcat.Source, dest string, opts ...vcat.BulkOption) error
	SetMetadata(ctx context.Context, src vcat.Source, action vcat.MetadataAction, opts ...vcat.BulkOption) error
	AddJobMetadata(ctx context.Context, src vcat.Source, opts ...vcat.BulkOption) error
	SizeOf(ctx context.Context, src vcat.Source, opts ...vcat.BulkOption) iter.Seq2[vcat.SizeEntry, error]
}

var _ API = (*vcat.Session)(nil)

// Command represents an executable command.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "rm [-rf] pattern...")
	Usage() string

	// Execute runs the command with parsed arguments
	// The writer parameter is where command output should be written
	// Returns exit code (0 = success) and error message
	Execute(ctx context.Context, api API, args *CommandArgs, w io.Writer) (int, error)

	// GetFlags returns the flag set for this command (this is optional)
	GetFlags() *CommandFlagSet
}

// Exit codes returned by commands.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)
