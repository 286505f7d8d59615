package dag

import (
	"context"
	"encoding/json"
)

// Event is implemented by everything the manager reports or routes.
type Event interface {
	// EventType returns a stable, machine-readable event type name.
	EventType() string
}

// Event type names emitted to the completion sink.
const (
	EventTypeRootInputInitialized = "root_input_initialized"
	EventTypeRootInputFailed      = "root_input_failed"
	EventTypeInitializerEvent     = "initializer_event"
)

// OutputEvent is one unit of configuration produced by an initializer run.
// The manager treats the payload as opaque and passes it through to the
// completion sink untouched.
type OutputEvent struct {
	Payload json.RawMessage `json:"payload,omitempty"`
}

// InitializerEvent is an externally generated event targeted at a specific
// root input of a specific vertex. It is routed, not inspected, by the
// manager.
type InitializerEvent struct {
	// TargetVertexName is the name of the vertex the event is meant for.
	TargetVertexName string `json:"targetVertexName"`

	// TargetInputName is the entity name of the root input the event is
	// meant for.
	TargetInputName string `json:"targetInputName"`

	// Payload is the opaque event body.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EventType implements Event.
func (e *InitializerEvent) EventType() string {
	return EventTypeInitializerEvent
}

// RootInputInitialized notifies the vertex state machine that one root
// input's initializer ran to completion.
type RootInputInitialized struct {
	VertexID  VertexID
	InputName string
	Events    []OutputEvent
}

// EventType implements Event.
func (e *RootInputInitialized) EventType() string {
	return EventTypeRootInputInitialized
}

// RootInputFailed notifies the vertex state machine that one root input's
// initializer failed.
type RootInputFailed struct {
	VertexID  VertexID
	InputName string
	Cause     error
}

// EventType implements Event.
func (e *RootInputFailed) EventType() string {
	return EventTypeRootInputFailed
}

// EventEmitter is the completion sink capability. Implementations must be
// safe for concurrent use; the manager calls Emit from worker goroutines.
type EventEmitter interface {
	Emit(ctx context.Context, event Event) error
}

// EmitterFunc adapts a plain function to the EventEmitter interface.
type EmitterFunc func(ctx context.Context, event Event) error

// Emit implements EventEmitter.
func (f EmitterFunc) Emit(ctx context.Context, event Event) error {
	return f(ctx, event)
}
