package data

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
)

// NodeType identifies the kind of catalog entity stored at a path.
type NodeType int

const (
	NodeTypeDataObject NodeType = iota // File-like leaf
	NodeTypeCollection                 // Directory-like container
)

// String returns the human-readable name used in log messages.
func (t NodeType) String() string {
	switch t {
	case NodeTypeCollection:
		return "collection"
	case NodeTypeDataObject:
		return "data object"
	default:
		return "unknown"
	}
}

// Replica describes one physical copy of a data object on a resource.
type Replica struct {
	// Ordinal of the replica, starting at 0
	Number int `json:"number"`

	// Name of the resource holding the bytes
	Resource string `json:"resource"`

	// Size in bytes as recorded when the replica was written
	Size int64 `json:"size"`

	// Hex encoded sha256 of the replica content
	Checksum string `json:"checksum,omitempty"`
}

// Node is a catalog entry: either a collection or a data object.
// Nodes are fetched on demand and never cached by the session.
type Node struct {
	// Identity - unique identifier, also used as the replica key
	ID string `json:"id"`

	// Canonical absolute path
	Path string `json:"path"`

	// Type of node (collection or data object)
	Type NodeType `json:"type"`

	// Size in bytes of the first replica (0 for collections)
	Size int64 `json:"size"`

	CreateTime time.Time `json:"create_time"`
	ModifyTime time.Time `json:"modify_time"`

	// Physical copies; always empty for collections
	Replicas []Replica `json:"replicas,omitempty"`

	// Attached attribute-value-unit triples
	Metadata []AVU `json:"metadata,omitempty"`
}

// NewNode creates a node with a fresh time-ordered identifier.
func NewNode(path string, nodeType NodeType) *Node {
	now := time.Now()
	return &Node{
		ID:         NewID(),
		Path:       path,
		Type:       nodeType,
		CreateTime: now,
		ModifyTime: now,
	}
}

// NewCollection creates a node describing a collection.
func NewCollection(path string) *Node {
	return NewNode(path, NodeTypeCollection)
}

// NewDataObject creates a node describing an empty data object.
func NewDataObject(path string) *Node {
	return NewNode(path, NodeTypeDataObject)
}

// NewID returns a uuid v7 string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Name returns the base name of the node.
func (n *Node) Name() string {
	return Base(n.Path)
}

// Parent returns the path of the collection holding this node.
func (n *Node) Parent() string {
	return Dir(n.Path)
}

// IsCollection returns true if this node is a collection.
func (n *Node) IsCollection() bool {
	return n.Type == NodeTypeCollection
}

// IsDataObject returns true if this node is a data object.
func (n *Node) IsDataObject() bool {
	return n.Type == NodeTypeDataObject
}

// ReplicaSizes returns the recorded size of every replica, in replica order.
func (n *Node) ReplicaSizes() []int64 {
	sizes := make([]int64, 0, len(n.Replicas))
	for _, replica := range n.Replicas {
		sizes = append(sizes, replica.Size)
	}
	return sizes
}

// HasMetadata reports whether one single triple satisfies every criterion.
// An empty criteria list is always satisfied.
func (n *Node) HasMetadata(criteria []Criterion) bool {
	if len(criteria) == 0 {
		return true
	}

	return slices.ContainsFunc(n.Metadata, func(avu AVU) bool {
		return avu.MatchesAll(criteria)
	})
}

// Clone creates a deep copy of the node.
func (n *Node) Clone() *Node {
	clone := *n
	clone.Replicas = slices.Clone(n.Replicas)
	clone.Metadata = slices.Clone(n.Metadata)
	return &clone
}

// Marshal provides JSON serialization for Node.
func (n *Node) Marshal() ([]byte, error) {
	return json.Marshal(n)
}

// Unmarshal provides JSON deserialization for Node.
func (n *Node) Unmarshal(data []byte) error {
	return json.Unmarshal(data, n)
}
