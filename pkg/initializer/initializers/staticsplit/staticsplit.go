// Package staticsplit provides an initializer whose split set is declared
// directly in the input descriptor's configuration. It is the simplest
// built-in and the reference for writing new initializers.
package staticsplit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/wehubfusion/Talaria/pkg/dag"
	"github.com/wehubfusion/Talaria/pkg/initializer"
)

// Name is the registry name of this initializer.
const Name = "staticsplit"

// Initializer emits one output event per declared partition. The
// configuration either lists explicit partition payloads:
//
//	{"partitions": [{...}, {...}]}
//
// or declares a count, producing numbered partitions:
//
//	{"numPartitions": 4}
//
// External events received while active replace the declared partitions
// for any run that has not read them yet.
type Initializer struct {
	mu       sync.Mutex
	override []dag.OutputEvent
}

// New creates a staticsplit initializer.
func New(descriptor dag.InputDescriptor) (initializer.Initializer, error) {
	if len(descriptor.Config) == 0 {
		return nil, fmt.Errorf("staticsplit requires a configuration")
	}
	if !gjson.ValidBytes(descriptor.Config) {
		return nil, fmt.Errorf("staticsplit configuration is not valid JSON")
	}
	return &Initializer{}, nil
}

// Run implements initializer.Initializer.
func (s *Initializer) Run(ctx context.Context, ictx *initializer.Context) ([]dag.OutputEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	override := s.override
	s.mu.Unlock()
	if override != nil {
		return override, nil
	}

	config := ictx.InputConfig()

	if partitions := gjson.GetBytes(config, "partitions"); partitions.IsArray() {
		events := make([]dag.OutputEvent, 0, len(partitions.Array()))
		for _, partition := range partitions.Array() {
			events = append(events, dag.OutputEvent{Payload: json.RawMessage(partition.Raw)})
		}
		return events, nil
	}

	numPartitions := gjson.GetBytes(config, "numPartitions")
	if !numPartitions.Exists() {
		return nil, fmt.Errorf("staticsplit config for input %q declares neither partitions nor numPartitions", ictx.InputName())
	}
	count := int(numPartitions.Int())
	if count <= 0 {
		return nil, fmt.Errorf("staticsplit numPartitions must be positive, got %d", count)
	}

	events := make([]dag.OutputEvent, 0, count)
	for i := 0; i < count; i++ {
		payload, err := json.Marshal(map[string]int{"partition": i})
		if err != nil {
			return nil, err
		}
		events = append(events, dag.OutputEvent{Payload: payload})
	}
	return events, nil
}

// HandleInputInitializerEvent implements initializer.Initializer. Each
// event payload is expected to carry a replacement partitions array.
func (s *Initializer) HandleInputInitializerEvent(events []*dag.InitializerEvent) error {
	for _, event := range events {
		if event == nil || len(event.Payload) == 0 {
			continue
		}
		partitions := gjson.GetBytes(event.Payload, "partitions")
		if !partitions.IsArray() {
			return fmt.Errorf("staticsplit event payload has no partitions array")
		}
		replacement := make([]dag.OutputEvent, 0, len(partitions.Array()))
		for _, partition := range partitions.Array() {
			replacement = append(replacement, dag.OutputEvent{Payload: json.RawMessage(partition.Raw)})
		}
		s.mu.Lock()
		s.override = replacement
		s.mu.Unlock()
	}
	return nil
}
