package vcat

import (
	"context"

	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// Move renames the collections and data objects supplied by src to dest.
// With more than one source dest must be an existing collection; this is
// checked before anything is moved.
func (s *Session) Move(ctx context.Context, src Source, dest string, opts ...BulkOption) error {
	options, err := applyBulkOptions(opts)
	if err != nil {
		return err
	}

	idest, err := s.ResolvePath(dest)
	if err != nil {
		return err
	}

	items := make([]string, 0)
	for item, err := range src.items(ctx, s) {
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		err := errors.NotFound(nil, src.String())
		s.log.Warn("%v", err)
		return err
	}

	if len(items) > 1 {
		exists, err := s.client.CollectionExists(ctx, idest)
		if err != nil {
			return err
		}
		if !exists {
			return errors.Precondition(nil, "target collection '%s' does not exist", idest)
		}
	}

	for _, item := range items {
		if err := s.moveOne(ctx, item, idest, options); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) moveOne(ctx context.Context, item, idest string, options *BulkOptions) error {
	abs, node, err := s.stat(ctx, item)
	if err != nil {
		return err
	}
	if node == nil {
		return nil
	}

	kind := node.Type.String()
	if options.Prompt && !s.confirm("move", kind, abs+" to "+idest) {
		return nil
	}

	s.log.Info("Moving %s %s to destination %s", kind, abs, idest)
	if node.IsCollection() {
		err = s.client.MoveCollection(ctx, abs, idest)
	} else {
		err = s.client.MoveDataObject(ctx, abs, idest)
	}
	return data.NewRemoteOperationError("move", abs, err)
}
