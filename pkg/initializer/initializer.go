// Package initializer manages the concurrent, asynchronous initialization
// of a vertex's root inputs. Each root input names a pluggable Initializer
// implementation; the Manager runs one worker per input under the DAG's
// submitting identity, routes late external events to the still-running
// initializer, and reports per-input success or failure to the vertex's
// completion sink.
package initializer

import (
	"context"
	"encoding/json"

	"github.com/wehubfusion/Talaria/pkg/dag"
)

// Initializer computes how a root input's data is split into work for
// downstream processing. Implementations are created once per input and
// exclusively owned by the manager.
//
// Run blocks until the split computation completes or fails.
// HandleInputInitializerEvent may be invoked zero or more times while Run
// is still in flight, on the goroutine delivering the event; implementations
// must synchronize their own state between the two.
type Initializer interface {
	// Run executes the initializer and returns the output events describing
	// the computed splits. The context carries the DAG's submitting identity
	// and is cancelled when the manager shuts down.
	Run(ctx context.Context, ictx *Context) ([]dag.OutputEvent, error)

	// HandleInputInitializerEvent delivers externally generated events to a
	// still-active initializer.
	HandleInputInitializerEvent(events []*dag.InitializerEvent) error
}

// Context is the per-input read-only handle exposing vertex and DAG
// metadata to an initializer implementation.
type Context struct {
	descriptor  dag.InputDescriptor
	vertexName  string
	vertexID    dag.VertexID
	vertexLogID string
	numTasks    int
	dagName     string
}

// NewContext builds an initializer context binding one input descriptor to
// its owning vertex.
func NewContext(descriptor dag.InputDescriptor, vertex dag.Vertex, appCtx dag.AppContext) *Context {
	return &Context{
		descriptor:  descriptor,
		vertexName:  vertex.Name(),
		vertexID:    vertex.ID(),
		vertexLogID: vertex.LogIdentifier(),
		numTasks:    vertex.NumTasks(),
		dagName:     appCtx.DAGName(),
	}
}

// InputName returns the entity name of the root input.
func (c *Context) InputName() string {
	return c.descriptor.EntityName
}

// InputConfig returns the descriptor's opaque configuration payload.
func (c *Context) InputConfig() json.RawMessage {
	return c.descriptor.Config
}

// VertexName returns the owning vertex's name.
func (c *Context) VertexName() string {
	return c.vertexName
}

// VertexID returns the owning vertex's identifier.
func (c *Context) VertexID() dag.VertexID {
	return c.vertexID
}

// VertexLogIdentifier returns the owning vertex's log identifier.
func (c *Context) VertexLogIdentifier() string {
	return c.vertexLogID
}

// NumTasks returns the vertex's configured task parallelism.
func (c *Context) NumTasks() int {
	return c.numTasks
}

// DAGName returns the name of the DAG the vertex belongs to.
func (c *Context) DAGName() string {
	return c.dagName
}
