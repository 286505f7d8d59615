package dag

import "encoding/json"

// InputDescriptor describes one root input of a vertex. It is immutable
// and read-only to the initializer manager.
type InputDescriptor struct {
	// EntityName is the unique name of the root input within its vertex.
	EntityName string `json:"entityName"`

	// InitializerName selects the initializer implementation from the
	// registry.
	InitializerName string `json:"initializerName"`

	// Config is an opaque configuration payload handed to the initializer.
	Config json.RawMessage `json:"config,omitempty"`
}
