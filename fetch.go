package vcat

import (
	"context"
	"io"
	"path/filepath"

	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// Fetch downloads the data objects supplied by src into the local directory
// localPath, recreating the collection layout when WithRecurse is set.
// With WithReturnObjects nothing is written locally and the matched data
// objects are returned instead.
func (s *Session) Fetch(ctx context.Context, src Source, localPath string, opts ...BulkOption) ([]*data.Node, error) {
	options, err := applyBulkOptions(opts)
	if err != nil {
		return nil, err
	}

	if !options.ReturnObjects && !s.fs.IsDir(localPath) {
		return nil, errors.Precondition(nil, "local directory '%s' does not exist", localPath)
	}

	objects := make([]*data.Node, 0)
	for item, err := range src.items(ctx, s) {
		if err != nil {
			return objects, err
		}

		_, node, err := s.stat(ctx, item)
		if err != nil {
			return objects, err
		}
		if node == nil {
			continue
		}

		if err := s.fetchNode(ctx, item, node, localPath, options, &objects); err != nil {
			return objects, err
		}
	}
	return objects, nil
}

func (s *Session) fetchNode(ctx context.Context, item string, node *data.Node, localPath string, options *BulkOptions, objects *[]*data.Node) error {
	if node.IsCollection() {
		if !options.Recurse {
			s.log.Info("Skipping collection %s (no recursion)", item)
			return nil
		}

		dir := filepath.Join(localPath, node.Name())
		if !options.ReturnObjects && !s.fs.IsDir(dir) {
			s.log.Info("Creating directory %s", dir)
			if err := s.fs.Mkdir(dir); err != nil {
				return err
			}
		}

		children, err := s.client.ListChildren(ctx, node.Path)
		if err != nil {
			return err
		}

		for _, child := range children {
			if err := s.fetchNode(ctx, data.Join(item, child.Name()), child, dir, options, objects); err != nil {
				return err
			}
		}
		return nil
	}

	if options.ReturnObjects {
		s.log.Info("Getting object %s", item)
		*objects = append(*objects, node)
		return nil
	}

	target := filepath.Join(localPath, node.Name())
	if !options.Force && s.fs.Exists(target) {
		return data.NewRemoteOperationError("get", node.Path, errors.Exist(nil, target))
	}

	s.log.Info("Getting object %s to destination %s", node.Path, localPath)
	return data.NewRemoteOperationError("get", node.Path, s.download(ctx, node.Path, target))
}

func (s *Session) download(ctx context.Context, abs, target string) error {
	r, _, err := s.client.GetDataObject(ctx, abs)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := s.fs.Create(target)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, r)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// A partial file would block the next fetch without force
		if removeErr := s.fs.Remove(target); removeErr != nil {
			s.log.Warn("Failed to remove partial file %s: %v", target, removeErr)
		}
		return err
	}
	return nil
}
