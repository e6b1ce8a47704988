package vcat

import (
	"context"
	"iter"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// Walk lazily yields every collection and data object below root that
// satisfies pattern and the search options. Yielded paths are root joined
// with the path relative to it, so the anchor of root is preserved.
// An empty pattern matches every name.
func (s *Session) Walk(ctx context.Context, root, pattern string, opts ...SearchOption) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		options, err := applySearchOptions(opts)
		if err != nil {
			yield("", err)
			return
		}

		if !doublestar.ValidatePattern(pattern) {
			yield("", errors.Invalid(doublestar.ErrBadPattern, "pattern '"+pattern+"'"))
			return
		}
		if strings.Contains(pattern, "/") && !options.WholePath {
			s.log.Warn("Pattern '%s' contains '/' and never matches a base name; use whole path matching instead", pattern)
		}

		rootAbs, err := s.ResolvePath(root)
		if err != nil {
			yield("", err)
			return
		}

		node, err := s.client.Stat(ctx, rootAbs)
		if err != nil {
			if errors.Is(err, data.ErrNotExist) {
				s.log.Warn("%v", errors.NotFound(err, root))
				return
			}
			yield("", err)
			return
		}

		w := &walker{
			session: s,
			root:    root,
			rootAbs: rootAbs,
			pattern: pattern,
			options: options,
			yield:   yield,
		}

		if options.QueryStrategy {
			w.query(ctx, node)
			return
		}
		w.visit(ctx, root, node, 0)
	}
}

type walker struct {
	session *Session
	root    string
	rootAbs string
	pattern string
	options *SearchOptions
	yield   func(string, error) bool
}

// visit returns false once the consumer stopped or an error was yielded.
func (w *walker) visit(ctx context.Context, item string, node *data.Node, depth int) bool {
	if err := ctx.Err(); err != nil {
		w.yield("", err)
		return false
	}

	emit := w.accepts(node, depth)
	if emit && w.options.Order == PreOrder {
		if !w.yield(item, nil) {
			return false
		}
	}

	if node.IsCollection() && (w.options.MaxDepth < 0 || depth < w.options.MaxDepth) {
		children, err := w.session.client.ListChildren(ctx, node.Path)
		if err != nil {
			// The consumer may have removed or moved the collection already
			if errors.Is(err, data.ErrNotExist) {
				w.session.log.Warn("%v", errors.NotFound(err, item))
				return true
			}
			w.yield("", err)
			return false
		}

		for _, child := range children {
			if !w.visit(ctx, data.Join(item, child.Name()), child, depth+1) {
				return false
			}
		}
	}

	if emit && w.options.Order == PostOrder {
		return w.yield(item, nil)
	}
	return true
}

// query fetches all candidates below the root at once and emits them in
// path order, which places every collection before its children.
func (w *walker) query(ctx context.Context, root *data.Node) {
	candidates := []*data.Node{root}
	if root.IsCollection() {
		for _, nodeType := range []data.NodeType{data.NodeTypeCollection, data.NodeTypeDataObject} {
			if !w.options.emits(nodeType) {
				continue
			}

			query := catalog.DescendantsOf(w.rootAbs).WithType(nodeType)
			query.Criteria = w.options.criteria(nodeType)
			if like, ok := globToLike(w.pattern, true); ok && w.pattern != "" && !w.options.WholePath {
				query.NameLike = like
			}

			nodes, err := w.session.client.Query(ctx, query)
			if err != nil {
				w.yield("", err)
				return
			}
			candidates = append(candidates, nodes...)
		}
	}

	slices.SortFunc(candidates, func(a, b *data.Node) int {
		return strings.Compare(a.Path, b.Path)
	})
	if w.options.Order == PostOrder {
		slices.Reverse(candidates)
	}

	for _, node := range candidates {
		depth := data.Depth(node.Path, w.rootAbs)
		if w.options.MaxDepth >= 0 && depth > w.options.MaxDepth {
			continue
		}
		if !w.accepts(node, depth) {
			continue
		}

		item := w.root
		if depth > 0 {
			item = data.Join(w.root, data.ToRelativePath(node.Path, w.rootAbs))
		}
		if !w.yield(item, nil) {
			return
		}
	}
}

func (w *walker) accepts(node *data.Node, depth int) bool {
	if depth < w.options.MinDepth {
		return false
	}
	if w.options.MaxDepth >= 0 && depth > w.options.MaxDepth {
		return false
	}
	if !w.options.emits(node.Type) {
		return false
	}
	if !w.matches(node, depth) {
		return false
	}
	return node.HasMetadata(w.options.criteria(node.Type))
}

func (w *walker) matches(node *data.Node, depth int) bool {
	if w.pattern == "" {
		return true
	}

	if !w.options.WholePath || depth == 0 {
		ok, _ := doublestar.Match(w.pattern, node.Name())
		return ok
	}

	// Hide the separators so that '*' also matches across levels.
	subject := strings.ReplaceAll(data.ToRelativePath(node.Path, w.rootAbs), "/", "\x00")
	pattern := strings.ReplaceAll(w.pattern, "/", "\x00")
	ok, _ := doublestar.Match(pattern, subject)
	return ok
}
