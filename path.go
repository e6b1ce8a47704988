package vcat

import (
	"context"
	"path"
	"strings"

	"github.com/mwantia/vcat/data/errors"
)

// Home returns the home collection used to expand '~'.
func (s *Session) Home() string {
	return s.home
}

// Cwd returns the current working collection used to expand relative paths.
func (s *Session) Cwd() string {
	return s.cwd
}

// ResolvePath returns the canonical absolute catalog path of p:
// "/x" is taken as is, "~/x" and "~x" are relative to the home collection,
// anything else is relative to the working collection.
func (s *Session) ResolvePath(p string) (string, error) {
	if strings.ContainsRune(p, 0) {
		return "", errors.Resolution(nil, p)
	}

	var abs string
	switch {
	case strings.HasPrefix(p, "/"):
		abs = p
	case strings.HasPrefix(p, "~/"):
		abs = path.Join(s.home, p[2:])
	case strings.HasPrefix(p, "~"):
		abs = path.Join(s.home, p[1:])
	default:
		abs = path.Join(s.cwd, p)
	}

	return path.Clean(abs), nil
}

// ChangeDirectory makes p the working collection. p must be a collection.
func (s *Session) ChangeDirectory(ctx context.Context, p string) error {
	abs, err := s.ResolvePath(p)
	if err != nil {
		return err
	}

	exists, err := s.client.CollectionExists(ctx, abs)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Precondition(nil, "collection '%s' does not exist", abs)
	}

	s.cwd = abs
	s.log.Debug("Changed working collection to %s", abs)
	return nil
}
