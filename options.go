package vcat

import (
	"maps"
	"slices"
	"strings"

	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// TraversalOrder controls whether Walk emits a collection before or after its children.
type TraversalOrder int

const (
	PreOrder TraversalOrder = iota
	PostOrder
)

type SearchOptions struct {
	// Node types to emit; nil emits both
	Types []data.NodeType

	// Match the pattern against the path relative to the walk root instead of the base name
	WholePath bool

	// Criteria one triple of an emitted collection or data object must satisfy
	CollectionCriteria []data.Criterion
	ObjectCriteria     []data.Criterion

	Order TraversalOrder

	// Depth bounds relative to the walk root; MaxDepth < 0 is unbounded
	MinDepth int
	MaxDepth int

	// Let the catalog evaluate wildcards and criteria instead of filtering children locally
	QueryStrategy bool

	// Treat '?', '[...]' and '{...}' in Match patterns as glob syntax
	ExtendedGlob bool
}

type SearchOption func(*SearchOptions) error

func newDefaultSearchOptions() *SearchOptions {
	return &SearchOptions{
		MinDepth: 1,
		MaxDepth: -1,
	}
}

func applySearchOptions(opts []SearchOption) (*SearchOptions, error) {
	options := newDefaultSearchOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// WithTypes restricts the emitted node types: "d" for collections, "f" for
// data objects or "d,f" for both.
func WithTypes(types string) SearchOption {
	return func(o *SearchOptions) error {
		o.Types = nil
		for part := range strings.SplitSeq(types, ",") {
			switch strings.TrimSpace(part) {
			case "d":
				o.Types = append(o.Types, data.NodeTypeCollection)
			case "f":
				o.Types = append(o.Types, data.NodeTypeDataObject)
			default:
				return errors.Invalid(nil, "unknown type filter '"+types+"'")
			}
		}
		return nil
	}
}

// WithWholePath matches the pattern against the whole path below the walk
// root; '*' then also matches '/'.
func WithWholePath() SearchOption {
	return func(o *SearchOptions) error {
		o.WholePath = true
		return nil
	}
}

func WithCollectionMetadata(criteria ...data.Criterion) SearchOption {
	return func(o *SearchOptions) error {
		o.CollectionCriteria = append(o.CollectionCriteria, criteria...)
		return nil
	}
}

func WithObjectMetadata(criteria ...data.Criterion) SearchOption {
	return func(o *SearchOptions) error {
		o.ObjectCriteria = append(o.ObjectCriteria, criteria...)
		return nil
	}
}

func WithOrder(order TraversalOrder) SearchOption {
	return func(o *SearchOptions) error {
		o.Order = order
		return nil
	}
}

// WithMinDepth sets the minimum emitted depth; 0 includes the walk root itself.
func WithMinDepth(depth int) SearchOption {
	return func(o *SearchOptions) error {
		if depth < 0 {
			return errors.Invalid(nil, "minimum depth must not be negative")
		}
		o.MinDepth = depth
		return nil
	}
}

func WithMaxDepth(depth int) SearchOption {
	return func(o *SearchOptions) error {
		o.MaxDepth = depth
		return nil
	}
}

func WithQueryStrategy() SearchOption {
	return func(o *SearchOptions) error {
		o.QueryStrategy = true
		return nil
	}
}

// WithExtendedGlob makes Match honour '?', character classes and
// alternatives in addition to '*'. Without it they are plain characters.
func WithExtendedGlob() SearchOption {
	return func(o *SearchOptions) error {
		o.ExtendedGlob = true
		return nil
	}
}

func (o *SearchOptions) wildcards() string {
	if o.ExtendedGlob {
		return extendedWildcards
	}
	return wildcard
}

func (o *SearchOptions) emits(nodeType data.NodeType) bool {
	return len(o.Types) == 0 || slices.Contains(o.Types, nodeType)
}

func (o *SearchOptions) criteria(nodeType data.NodeType) []data.Criterion {
	if nodeType == data.NodeTypeCollection {
		return o.CollectionCriteria
	}
	return o.ObjectCriteria
}

type BulkOptions struct {
	Recurse bool
	Force   bool
	Prompt  bool

	// Return fetched data objects instead of writing local files
	ReturnObjects bool

	CollectionAVUs []data.AVU
	ObjectAVUs     []data.AVU

	// Forwarded verbatim to the catalog client
	Passthrough catalog.Options
}

type BulkOption func(*BulkOptions) error

func applyBulkOptions(opts []BulkOption) (*BulkOptions, error) {
	options := &BulkOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

func WithRecurse() BulkOption {
	return func(o *BulkOptions) error {
		o.Recurse = true
		return nil
	}
}

func WithForce() BulkOption {
	return func(o *BulkOptions) error {
		o.Force = true
		return nil
	}
}

// WithPrompt asks the session prompter before each top-level mutation.
func WithPrompt() BulkOption {
	return func(o *BulkOptions) error {
		o.Prompt = true
		return nil
	}
}

func WithReturnObjects() BulkOption {
	return func(o *BulkOptions) error {
		o.ReturnObjects = true
		return nil
	}
}

func WithCollectionAVUs(avus ...data.AVU) BulkOption {
	return func(o *BulkOptions) error {
		o.CollectionAVUs = append(o.CollectionAVUs, avus...)
		return nil
	}
}

func WithObjectAVUs(avus ...data.AVU) BulkOption {
	return func(o *BulkOptions) error {
		o.ObjectAVUs = append(o.ObjectAVUs, avus...)
		return nil
	}
}

func WithPassthrough(options map[string]string) BulkOption {
	return func(o *BulkOptions) error {
		if o.Passthrough == nil {
			o.Passthrough = make(catalog.Options, len(options))
		}
		maps.Copy(o.Passthrough, options)
		return nil
	}
}
