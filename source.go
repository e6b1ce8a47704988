package vcat

import (
	"context"
	"iter"
	"strings"

	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// Source supplies the catalog items a bulk operation works on.
type Source interface {
	items(ctx context.Context, s *Session) iter.Seq2[string, error]
	String() string
}

type patternSource []string

// Pattern expands each pattern with Match. A pattern without matches is
// reported as a warning and skipped.
func Pattern(patterns ...string) Source {
	return patternSource(patterns)
}

func (p patternSource) items(ctx context.Context, s *Session) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, pattern := range p {
			found := false
			for item, err := range s.Match(ctx, pattern) {
				if err != nil {
					yield("", err)
					return
				}

				found = true
				if !yield(item, nil) {
					return
				}
			}

			if !found {
				s.log.Warn("%v", errors.NotFound(nil, pattern))
			}
		}
	}
}

func (p patternSource) String() string {
	return strings.Join(p, " ")
}

type pathSource iter.Seq2[string, error]

// Paths uses an already produced sequence of paths, e.g. the result of Walk.
func Paths(seq iter.Seq2[string, error]) Source {
	return pathSource(seq)
}

func (p pathSource) items(context.Context, *Session) iter.Seq2[string, error] {
	return iter.Seq2[string, error](p)
}

func (pathSource) String() string {
	return "paths"
}

// LocalSource supplies the local files and directories pushed into the catalog.
type LocalSource interface {
	localItems(s *Session) iter.Seq2[string, error]
}

type localPatternSource []string

// LocalPattern expands each pattern on the local filesystem. A pattern
// without matches is reported as a warning and skipped.
func LocalPattern(patterns ...string) LocalSource {
	return localPatternSource(patterns)
}

func (p localPatternSource) localItems(s *Session) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, pattern := range p {
			matches, err := s.fs.Glob(pattern)
			if err != nil {
				yield("", errors.Invalid(err, "local pattern '"+pattern+"'"))
				return
			}

			if len(matches) == 0 {
				s.log.Warn("%v", errors.NotFound(nil, pattern))
				continue
			}

			for _, match := range matches {
				if !yield(match, nil) {
					return
				}
			}
		}
	}
}

// stat resolves item and reads its node. A node that vanished after it was
// matched is reported and skipped by returning a nil node.
func (s *Session) stat(ctx context.Context, item string) (string, *data.Node, error) {
	abs, err := s.ResolvePath(item)
	if err != nil {
		return "", nil, err
	}

	node, err := s.client.Stat(ctx, abs)
	if err != nil {
		if errors.Is(err, data.ErrNotExist) {
			s.log.Warn("%v", errors.NotFound(err, item))
			return abs, nil, nil
		}
		return abs, nil, err
	}
	return abs, node, nil
}
