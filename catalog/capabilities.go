package catalog

import "slices"

// BackendCapability represents a capability that a backend can provide
type BackendCapability string

const (
	// Core capabilities by backend
	CapabilityIndex    BackendCapability = "index"
	CapabilityReplicas BackendCapability = "replicas"

	// Optional features of an index store
	CapabilityQueryPushdown BackendCapability = "query_pushdown"
	CapabilityTransactions  BackendCapability = "transactions"
	CapabilityPersistent    BackendCapability = "persistent"
)

// BackendCapabilities describes what a backend supports
type BackendCapabilities struct {
	Capabilities  []BackendCapability `json:"capabilities"`
	MaxObjectSize int64               `json:"max_object_size"`
}

// Contains checks if a capability is supported
func (bc *BackendCapabilities) Contains(capability BackendCapability) bool {
	return slices.Contains(bc.Capabilities, capability)
}
