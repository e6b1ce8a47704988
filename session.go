// Package vcat resolves glob-like path patterns against a hierarchical data
// catalog and applies recursive bulk operations to the matched collections
// and data objects.
package vcat

import (
	"os"
	"path"

	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data/errors"
	"github.com/mwantia/vcat/local"
	"github.com/mwantia/vcat/log"
)

// Session holds the working collection of one client. It is not safe for
// concurrent use; open one session per goroutine instead.
type Session struct {
	client catalog.Client
	fs     local.FS
	log    *log.Logger
	prompt Prompter
	getenv func(string) (string, bool)

	home string
	cwd  string
}

type SessionOptions struct {
	Home      string
	Zone      string
	User      string
	Logger    *log.Logger
	LocalFS   local.FS
	Prompter  Prompter
	LookupEnv func(string) (string, bool)
}

type SessionOption func(*SessionOptions) error

func newDefaultSessionOptions() *SessionOptions {
	return &SessionOptions{
		Logger:    log.Discard(),
		LocalFS:   local.OS{},
		Prompter:  AlwaysConfirm,
		LookupEnv: os.LookupEnv,
	}
}

// WithHome sets the home collection explicitly.
func WithHome(home string) SessionOption {
	return func(o *SessionOptions) error {
		if !path.IsAbs(home) {
			return errors.Resolution(nil, home)
		}
		o.Home = path.Clean(home)
		return nil
	}
}

// WithZone derives the home collection as /<zone>/home/<user> unless WithHome is used.
func WithZone(zone, user string) SessionOption {
	return func(o *SessionOptions) error {
		o.Zone = zone
		o.User = user
		return nil
	}
}

func WithLogger(logger *log.Logger) SessionOption {
	return func(o *SessionOptions) error {
		o.Logger = logger
		return nil
	}
}

func WithLocalFS(fs local.FS) SessionOption {
	return func(o *SessionOptions) error {
		o.LocalFS = fs
		return nil
	}
}

func WithPrompter(prompter Prompter) SessionOption {
	return func(o *SessionOptions) error {
		o.Prompter = prompter
		return nil
	}
}

// WithLookupEnv replaces the environment used to harvest job metadata.
func WithLookupEnv(lookup func(string) (string, bool)) SessionOption {
	return func(o *SessionOptions) error {
		o.LookupEnv = lookup
		return nil
	}
}

// NewSession creates a session whose working collection starts at home.
func NewSession(client catalog.Client, opts ...SessionOption) (*Session, error) {
	options := newDefaultSessionOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	home := options.Home
	if home == "" {
		home = "/"
		if options.Zone != "" {
			home = path.Join("/", options.Zone, "home", options.User)
		}
	}

	return &Session{
		client: client,
		fs:     options.LocalFS,
		log:    options.Logger,
		prompt: options.Prompter,
		getenv: options.LookupEnv,
		home:   home,
		cwd:    home,
	}, nil
}

// Client returns the catalog client used by the session.
func (s *Session) Client() catalog.Client {
	return s.client
}
