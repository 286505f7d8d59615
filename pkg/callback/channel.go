package callback

import (
	"context"

	"github.com/wehubfusion/Talaria/pkg/dag"
)

// ChannelEmitter delivers completion notifications on an in-process
// channel, for vertex state machines that consume events directly.
type ChannelEmitter struct {
	events chan dag.Event
}

// NewChannelEmitter creates a channel emitter with the given buffer size.
func NewChannelEmitter(buffer int) *ChannelEmitter {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelEmitter{
		events: make(chan dag.Event, buffer),
	}
}

// Emit implements dag.EventEmitter. It blocks until the event is accepted
// or the context is cancelled.
func (c *ChannelEmitter) Emit(ctx context.Context, event dag.Event) error {
	select {
	case c.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the channel notifications are delivered on.
func (c *ChannelEmitter) Events() <-chan dag.Event {
	return c.events
}

var _ dag.EventEmitter = (*ChannelEmitter)(nil)
