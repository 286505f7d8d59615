// Package jssplit provides an initializer that computes a root input's
// split set by running a user-supplied JavaScript program in a sandboxed
// VM.
package jssplit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/wehubfusion/Talaria/pkg/dag"
	"github.com/wehubfusion/Talaria/pkg/identity"
	"github.com/wehubfusion/Talaria/pkg/initializer"
)

// Name is the registry name of this initializer.
const Name = "jssplit"

// Initializer runs the configured script once. The script sees an `input`
// object with the vertex/DAG metadata and any external event payloads
// received before the run started, and must evaluate to an array of split
// objects.
type Initializer struct {
	config *Config

	mu     sync.Mutex
	events []json.RawMessage
}

// New creates a jssplit initializer from the descriptor's configuration.
func New(descriptor dag.InputDescriptor) (initializer.Initializer, error) {
	config, err := ParseConfig(descriptor.Config)
	if err != nil {
		return nil, err
	}
	return &Initializer{config: config}, nil
}

// Run implements initializer.Initializer.
func (j *Initializer) Run(ctx context.Context, ictx *initializer.Context) ([]dag.OutputEvent, error) {
	vm := goja.New()
	if err := applySandbox(vm); err != nil {
		return nil, err
	}

	input := map[string]interface{}{
		"inputName":  ictx.InputName(),
		"vertexName": ictx.VertexName(),
		"dagName":    ictx.DAGName(),
		"numTasks":   ictx.NumTasks(),
	}
	if id, ok := identity.FromContext(ctx); ok {
		input["principal"] = id.Principal
	}
	for key, value := range j.config.ManualInputs {
		input[key] = value
	}

	j.mu.Lock()
	received := make([]interface{}, 0, len(j.events))
	for _, payload := range j.events {
		var decoded interface{}
		if err := json.Unmarshal(payload, &decoded); err == nil {
			received = append(received, decoded)
		}
	}
	j.mu.Unlock()
	input["events"] = received

	if err := vm.Set("input", input); err != nil {
		return nil, fmt.Errorf("failed to set script input: %w", err)
	}

	// Interrupt the VM on timeout or manager shutdown; RunString returns
	// an *InterruptedError in that case.
	runCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	go func() {
		select {
		case <-runCtx.Done():
			vm.Interrupt(runCtx.Err())
		case <-watchdogDone:
		}
	}()

	value, err := vm.RunString(j.config.Script)
	if err != nil {
		if _, ok := err.(*goja.InterruptedError); ok {
			if ctxErr := runCtx.Err(); ctxErr != nil {
				if ctxErr == context.DeadlineExceeded {
					return nil, fmt.Errorf("split script for input %q timed out after %s", ictx.InputName(), j.config.Timeout)
				}
				return nil, ctxErr
			}
		}
		return nil, fmt.Errorf("split script for input %q failed: %w", ictx.InputName(), err)
	}

	return exportSplits(value, ictx.InputName())
}

// exportSplits converts the script's result into output events.
func exportSplits(value goja.Value, inputName string) ([]dag.OutputEvent, error) {
	exported := value.Export()
	splits, ok := exported.([]interface{})
	if !ok {
		return nil, fmt.Errorf("split script for input %q must evaluate to an array, got %T", inputName, exported)
	}

	events := make([]dag.OutputEvent, 0, len(splits))
	for i, split := range splits {
		payload, err := json.Marshal(split)
		if err != nil {
			return nil, fmt.Errorf("split %d for input %q is not serializable: %w", i, inputName, err)
		}
		events = append(events, dag.OutputEvent{Payload: payload})
	}
	return events, nil
}

// HandleInputInitializerEvent implements initializer.Initializer. Payloads
// are queued and exposed to the script as `input.events` if the run has
// not started reading them yet.
func (j *Initializer) HandleInputInitializerEvent(events []*dag.InitializerEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, event := range events {
		if event == nil || len(event.Payload) == 0 {
			continue
		}
		j.events = append(j.events, event.Payload)
	}
	return nil
}
