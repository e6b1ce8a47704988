package vcat

import (
	"context"
	"iter"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// Characters that turn a path expression into a pattern. Only '*' does by
// default; WithExtendedGlob adds the others.
const (
	wildcard          = "*"
	extendedWildcards = "*?[{"
)

// Metacharacters taken literally unless extended globbing is enabled.
var literalMeta = strings.NewReplacer(`\`, `\\`, `?`, `\?`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`)

// HasWildcard reports whether p is a pattern rather than a literal path.
func HasWildcard(p string) bool {
	return strings.Contains(p, wildcard)
}

// Match lazily yields the paths matching pattern, one directory level per
// pattern segment: '*' never crosses a '/'. Other glob syntax is literal
// unless WithExtendedGlob is set. Results keep the anchor of the
// pattern, so "~/sub/*" yields "~/sub/..." and "./x*" yields "./x...".
// A literal pattern yields itself if a collection or data object exists there.
func (s *Session) Match(ctx context.Context, pattern string, opts ...SearchOption) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		options, err := applySearchOptions(opts)
		if err != nil {
			yield("", err)
			return
		}

		s.match(ctx, pattern, options, yield)
	}
}

// Glob collects the result of Match.
func (s *Session) Glob(ctx context.Context, pattern string, opts ...SearchOption) ([]string, error) {
	results := make([]string, 0)
	for item, err := range s.Match(ctx, pattern, opts...) {
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, nil
}

// match returns false once the consumer stopped or an error was yielded.
func (s *Session) match(ctx context.Context, pattern string, options *SearchOptions, yield func(string, error) bool) bool {
	if err := ctx.Err(); err != nil {
		yield("", err)
		return false
	}

	s.log.Debug("Processing pattern %s", pattern)

	index := strings.IndexAny(pattern, options.wildcards())
	if index < 0 {
		abs, err := s.ResolvePath(pattern)
		if err != nil {
			yield("", err)
			return false
		}

		_, err = s.client.Stat(ctx, abs)
		switch {
		case err == nil:
			return yield(pattern, nil)
		case errors.Is(err, data.ErrNotExist):
			return true
		default:
			yield("", err)
			return false
		}
	}

	base, remainder := splitPattern(pattern, index)
	baseAbs, err := s.ResolvePath(base)
	if err != nil {
		yield("", err)
		return false
	}

	segment, rest, deeper := strings.Cut(remainder, "/")
	s.log.Debug("Base %s (%s), remainder %s", base, baseAbs, remainder)

	children, err := s.matchChildren(ctx, baseAbs, segment, deeper, options)
	if err != nil {
		if errors.Is(err, data.ErrNotExist) || errors.Is(err, data.ErrNotCollection) {
			return true
		}
		yield("", err)
		return false
	}

	for _, child := range children {
		item := data.Join(base, child.Name())
		if !deeper {
			if !yield(item, nil) {
				return false
			}
			continue
		}

		next := data.Join(item, rest)
		s.log.Debug("Recursion with pattern %s", next)
		if !s.match(ctx, next, options, yield) {
			return false
		}
	}

	return true
}

// splitPattern cuts pattern at the last '/' before the first wildcard.
func splitPattern(pattern string, index int) (base, remainder string) {
	slash := strings.LastIndex(pattern[:index], "/")
	switch {
	case slash < 0:
		return "", pattern
	case slash == 0:
		return "/", pattern[1:]
	default:
		return pattern[:slash], pattern[slash+1:]
	}
}

// matchChildren returns the children of collection whose name matches
// segment: subcollections first, then data objects, each sorted by name.
func (s *Session) matchChildren(ctx context.Context, collection, segment string, collectionsOnly bool, options *SearchOptions) ([]*data.Node, error) {
	glob := globSegment(segment, options.ExtendedGlob)
	if !doublestar.ValidatePattern(glob) {
		return nil, errors.Invalid(doublestar.ErrBadPattern, "pattern segment '"+segment+"'")
	}

	if options.QueryStrategy {
		if like, ok := globToLike(segment, options.ExtendedGlob); ok {
			return s.queryChildren(ctx, collection, like, collectionsOnly)
		}
		s.log.Debug("Segment %s cannot be expressed as LIKE, filtering locally", segment)
	}

	children, err := s.client.ListChildren(ctx, collection)
	if err != nil {
		return nil, err
	}

	matches := make([]*data.Node, 0, len(children))
	for _, child := range children {
		if collectionsOnly && !child.IsCollection() {
			continue
		}
		if ok, _ := doublestar.Match(glob, child.Name()); ok {
			matches = append(matches, child)
		}
	}
	return matches, nil
}

// queryChildren lets the catalog match the children with one query per node type.
func (s *Session) queryChildren(ctx context.Context, collection, like string, collectionsOnly bool) ([]*data.Node, error) {
	node, err := s.client.Stat(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !node.IsCollection() {
		return nil, errors.NotCollection(nil, collection)
	}

	types := []data.NodeType{data.NodeTypeCollection}
	if !collectionsOnly {
		types = append(types, data.NodeTypeDataObject)
	}

	matches := make([]*data.Node, 0)
	for _, nodeType := range types {
		query := (&catalog.Query{Parent: collection, NameLike: like}).WithType(nodeType)
		nodes, err := s.client.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		matches = append(matches, nodes...)
	}
	return matches, nil
}

// globSegment returns the doublestar pattern for segment. Without extended
// globbing every metacharacter but '*' is escaped.
func globSegment(segment string, extended bool) string {
	if extended {
		return segment
	}
	return literalMeta.Replace(segment)
}

// globToLike translates a segment into a LIKE pattern. With extended
// globbing '?' becomes '_' and brackets or braces cannot be expressed.
func globToLike(segment string, extended bool) (string, bool) {
	var sb strings.Builder
	for _, r := range segment {
		switch {
		case r == '*':
			sb.WriteByte('%')
		case r == '?' && extended:
			sb.WriteByte('_')
		case (r == '[' || r == '{' || r == '\\') && extended:
			return "", false
		case r == '%' || r == '_' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String(), true
}
