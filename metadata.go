package vcat

import (
	"context"

	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// MetadataAction selects whether SetMetadata attaches or detaches triples.
type MetadataAction string

const (
	MetadataAdd    MetadataAction = "add"
	MetadataRemove MetadataAction = "remove"
)

func ParseMetadataAction(action string) (MetadataAction, error) {
	switch MetadataAction(action) {
	case MetadataAdd, MetadataRemove:
		return MetadataAction(action), nil
	default:
		return "", errors.Invalid(nil, "unknown metadata action '"+action+"'")
	}
}

// SetMetadata adds or removes triples on the items supplied by src.
// Collections receive the WithCollectionAVUs triples and data objects the
// WithObjectAVUs triples. The children of a collection are only visited
// when WithRecurse is set.
func (s *Session) SetMetadata(ctx context.Context, src Source, action MetadataAction, opts ...BulkOption) error {
	if _, err := ParseMetadataAction(string(action)); err != nil {
		return err
	}

	options, err := applyBulkOptions(opts)
	if err != nil {
		return err
	}

	for item, err := range src.items(ctx, s) {
		if err != nil {
			return err
		}

		_, node, err := s.stat(ctx, item)
		if err != nil {
			return err
		}
		if node == nil {
			continue
		}

		if err := s.metadataNode(ctx, node, action, options); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) metadataNode(ctx context.Context, node *data.Node, action MetadataAction, options *BulkOptions) error {
	if node.IsDataObject() {
		return s.applyMetadata(ctx, node, action, options.ObjectAVUs)
	}

	if err := s.applyMetadata(ctx, node, action, options.CollectionAVUs); err != nil {
		return err
	}
	if !options.Recurse {
		return nil
	}

	children, err := s.client.ListChildren(ctx, node.Path)
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := s.metadataNode(ctx, child, action, options); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) applyMetadata(ctx context.Context, node *data.Node, action MetadataAction, avus []data.AVU) error {
	kind := node.Type.String()
	for _, avu := range avus {
		var err error
		if action == MetadataAdd {
			s.log.Info("Adding metadata %s to %s %s", avu, kind, node.Path)
			err = s.client.AddMetadata(ctx, node.Type, node.Path, avu)
		} else {
			s.log.Info("Removing metadata %s from %s %s", avu, kind, node.Path)
			err = s.client.RemoveMetadata(ctx, node.Type, node.Path, avu)
		}

		if err != nil {
			return data.NewRemoteOperationError("metadata "+string(action), node.Path, err)
		}
	}
	return nil
}
