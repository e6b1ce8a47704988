package data

import (
	"slices"
	"time"
)

// GetMetadata returns every triple carrying the given attribute.
func (n *Node) GetMetadata(attribute string) []AVU {
	var result []AVU
	for _, avu := range n.Metadata {
		if avu.Attribute == attribute {
			result = append(result, avu)
		}
	}
	return result
}

// AddMetadata appends a triple. Duplicates are not collapsed.
func (n *Node) AddMetadata(avu AVU) {
	n.Metadata = append(n.Metadata, avu)
	n.ModifyTime = time.Now()
}

// RemoveMetadata removes every copy of the exact triple.
// Returns false if the triple was not attached.
func (n *Node) RemoveMetadata(avu AVU) bool {
	before := len(n.Metadata)
	n.Metadata = slices.DeleteFunc(n.Metadata, func(other AVU) bool {
		return other == avu
	})

	if len(n.Metadata) == before {
		return false
	}

	n.ModifyTime = time.Now()
	return true
}

// HasAVU checks if the exact triple is attached.
func (n *Node) HasAVU(avu AVU) bool {
	return slices.Contains(n.Metadata, avu)
}
