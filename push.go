package vcat

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// Push uploads the local files supplied by src into the collection dest.
// Directories are uploaded as collections when WithRecurse is set. Existing
// data objects are skipped unless WithForce is set.
func (s *Session) Push(ctx context.Context, src LocalSource, dest string, opts ...BulkOption) error {
	options, err := applyBulkOptions(opts)
	if err != nil {
		return err
	}

	idest, err := s.ResolvePath(dest)
	if err != nil {
		return err
	}

	exists, err := s.client.CollectionExists(ctx, idest)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Precondition(nil, "collection '%s' does not exist", idest)
	}

	for item, err := range src.localItems(s) {
		if err != nil {
			return err
		}

		if err := s.pushItem(ctx, item, idest, options); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) pushItem(ctx context.Context, item, collection string, options *BulkOptions) error {
	if trimmed := strings.TrimRight(item, "/"); trimmed != "" {
		item = trimmed
	}
	target := path.Join(collection, filepath.Base(item))

	switch {
	case s.fs.IsDir(item):
		if !options.Recurse {
			s.log.Info("Skipping directory %s (no recursion)", item)
			return nil
		}

		exists, err := s.client.CollectionExists(ctx, target)
		if err != nil {
			return err
		}
		if !exists {
			s.log.Info("Creating collection %s", target)
			err := s.client.CreateCollection(ctx, target, true, options.Passthrough)
			if err != nil {
				return data.NewRemoteOperationError("create", target, err)
			}
		}

		entries, err := s.fs.List(item)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if err := s.pushItem(ctx, entry, target, options); err != nil {
				return err
			}
		}
		return nil

	case s.fs.IsFile(item):
		exists, err := s.client.DataObjectExists(ctx, target)
		if err != nil {
			return err
		}
		if exists && !options.Force {
			s.log.Info("Skipping object %s, it already exists in collection %s (use force to overwrite)", item, collection)
			return nil
		}

		s.log.Info("Putting object %s in collection %s", item, collection)
		return data.NewRemoteOperationError("put", target, s.upload(ctx, item, target, options))

	default:
		s.log.Warn("Skipping %s, it is neither a file nor a directory", item)
		return nil
	}
}

func (s *Session) upload(ctx context.Context, item, target string, options *BulkOptions) error {
	r, err := s.fs.Open(item)
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = s.client.PutDataObject(ctx, target, r, options.Force, options.Passthrough)
	return err
}
