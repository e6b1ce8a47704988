package vcat

import (
	"context"

	"github.com/mwantia/vcat/data"
)

// Remove deletes the collections and data objects supplied by src.
// Collections are only removed when WithRecurse is set.
func (s *Session) Remove(ctx context.Context, src Source, opts ...BulkOption) error {
	options, err := applyBulkOptions(opts)
	if err != nil {
		return err
	}

	for item, err := range src.items(ctx, s) {
		if err != nil {
			return err
		}

		abs, node, err := s.stat(ctx, item)
		if err != nil {
			return err
		}
		if node == nil {
			continue
		}

		if err := s.removeNode(ctx, abs, node, options); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) removeNode(ctx context.Context, abs string, node *data.Node, options *BulkOptions) error {
	kind := node.Type.String()
	if node.IsCollection() && !options.Recurse {
		s.log.Info("Skipping collection %s (no recursion)", abs)
		return nil
	}

	if options.Prompt && !s.confirm("remove", kind, abs) {
		return nil
	}

	s.log.Info("Removing %s %s", kind, abs)
	if node.IsCollection() {
		err := s.client.RemoveCollection(ctx, abs, true, options.Force, options.Passthrough)
		return data.NewRemoteOperationError("remove", abs, err)
	}

	err := s.client.UnlinkDataObject(ctx, abs, options.Force, options.Passthrough)
	return data.NewRemoteOperationError("remove", abs, err)
}
