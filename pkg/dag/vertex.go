// Package dag defines the contracts between the root-input initializer
// manager and its collaborators: the owning vertex, the application
// context, and the event types exchanged with the vertex state machine.
package dag

import (
	"github.com/google/uuid"
)

// VertexID uniquely identifies a vertex within a DAG.
type VertexID struct {
	id uuid.UUID
}

// NewVertexID generates a fresh vertex identifier.
func NewVertexID() VertexID {
	return VertexID{id: uuid.New()}
}

// ParseVertexID parses a vertex identifier from its string form.
func ParseVertexID(s string) (VertexID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return VertexID{}, err
	}
	return VertexID{id: id}, nil
}

// String returns the canonical string form of the identifier.
func (v VertexID) String() string {
	return v.id.String()
}

// IsZero reports whether the identifier is the zero value.
func (v VertexID) IsZero() bool {
	return v.id == uuid.UUID{}
}

// Vertex is the read-only view of the owning vertex exposed to the
// initializer manager and to initializer implementations.
type Vertex interface {
	// Name returns the vertex name, unique within its DAG.
	Name() string

	// LogIdentifier returns a human-readable identifier used in log lines.
	LogIdentifier() string

	// ID returns the stable vertex identifier.
	ID() VertexID

	// NumTasks returns the currently configured task parallelism of the
	// vertex. Initializers may use this as a sizing hint.
	NumTasks() int
}

// AppContext exposes application-scoped capabilities to the manager.
type AppContext interface {
	// DAGName returns the name of the DAG the vertex belongs to.
	DAGName() string

	// Emitter returns the completion sink notifications are reported to.
	Emitter() EventEmitter
}
