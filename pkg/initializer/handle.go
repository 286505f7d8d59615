package initializer

import (
	"sync/atomic"

	"github.com/wehubfusion/Talaria/pkg/dag"
)

// handle binds one input descriptor to its initializer instance, its
// context, and a completion flag. It is the manager's unit of bookkeeping
// and never leaves the manager.
type handle struct {
	descriptor  dag.InputDescriptor
	initializer Initializer
	ictx        *Context
	vertexLogID string

	// complete transitions false to true exactly once, set by the worker's
	// completion path and read by the event router.
	complete atomic.Bool
}

func newHandle(descriptor dag.InputDescriptor, init Initializer, vertex dag.Vertex, appCtx dag.AppContext) *handle {
	return &handle{
		descriptor:  descriptor,
		initializer: init,
		ictx:        NewContext(descriptor, vertex, appCtx),
		vertexLogID: vertex.LogIdentifier(),
	}
}

func (h *handle) inputName() string {
	return h.descriptor.EntityName
}

func (h *handle) isComplete() bool {
	return h.complete.Load()
}

func (h *handle) setComplete() {
	h.complete.Store(true)
}
