package vcat

import (
	"context"
	"iter"
	"slices"

	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// SizeEntry is the size of one item supplied to SizeOf.
type SizeEntry struct {
	Path string
	Size int64
}

// SizeOf lazily yields the size of each item supplied by src. The size of a
// collection is the sum over all data objects below it and is only computed
// when WithRecurse is set. Replicas of differing size are an error.
func (s *Session) SizeOf(ctx context.Context, src Source, opts ...BulkOption) iter.Seq2[SizeEntry, error] {
	return func(yield func(SizeEntry, error) bool) {
		options, err := applyBulkOptions(opts)
		if err != nil {
			yield(SizeEntry{}, err)
			return
		}

		for item, err := range src.items(ctx, s) {
			if err != nil {
				yield(SizeEntry{}, err)
				return
			}

			_, node, err := s.stat(ctx, item)
			if err != nil {
				yield(SizeEntry{}, err)
				return
			}
			if node == nil {
				continue
			}

			if node.IsCollection() && !options.Recurse {
				s.log.Info("Skipping collection %s (no recursion)", item)
				continue
			}

			size, err := s.sizeOfNode(ctx, node)
			if err != nil {
				yield(SizeEntry{}, err)
				return
			}

			if !yield(SizeEntry{Path: item, Size: size}, nil) {
				return
			}
		}
	}
}

func (s *Session) sizeOfNode(ctx context.Context, node *data.Node) (int64, error) {
	if node.IsDataObject() {
		return s.objectSize(ctx, node.Path)
	}

	children, err := s.client.ListChildren(ctx, node.Path)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, child := range children {
		size, err := s.sizeOfNode(ctx, child)
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

func (s *Session) objectSize(ctx context.Context, abs string) (int64, error) {
	sizes, err := s.client.ReplicaSizes(ctx, abs)
	if err != nil {
		return 0, err
	}

	distinct := slices.Compact(slices.Sorted(slices.Values(sizes)))
	switch len(distinct) {
	case 0:
		return 0, nil
	case 1:
		return distinct[0], nil
	default:
		return 0, errors.ReplicaInconsistency(nil, abs, sizes)
	}
}
