package initializer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wehubfusion/Talaria/pkg/concurrency"
	"github.com/wehubfusion/Talaria/pkg/dag"
	errs "github.com/wehubfusion/Talaria/pkg/errors"
	"github.com/wehubfusion/Talaria/pkg/identity"
)

// Manager owns the lifecycle of a vertex's root-input initializers: it
// launches one worker per input, tracks per-input completion, routes
// late-arriving external events to the matching still-running initializer,
// and reports outcomes to the vertex's completion sink.
//
// One Manager exists per vertex. RunInputInitializers is invoked exactly
// once per instance; Shutdown may be invoked any number of times but only
// the first call has effect.
type Manager struct {
	vertex      dag.Vertex
	appCtx      dag.AppContext
	emitter     dag.EventEmitter
	dagIdentity identity.Identity
	registry    *Registry
	logger      *zap.Logger
	tracer      trace.Tracer
	limiter     *concurrency.Limiter

	// poolCtx scopes every worker to the manager's lifetime; Shutdown
	// cancels it, abandoning in-flight work.
	poolCtx context.Context
	cancel  context.CancelFunc

	// handles is written only during the single-threaded submission phase
	// of RunInputInitializers and read-only afterwards.
	handles map[string]*handle

	launched atomic.Bool
	stopped  atomic.Bool
	active   atomic.Int64
}

// Option configures a Manager instance.
type Option func(*Manager)

// WithLogger injects a logger into the manager.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMaxConcurrent caps the number of simultaneously running initializer
// workers. Zero or negative leaves the pool unbounded, the default. This
// option takes precedence over the TALARIA_MAX_CONCURRENT environment
// variable.
func WithMaxConcurrent(maxConcurrent int) Option {
	return func(m *Manager) {
		if maxConcurrent > 0 {
			m.limiter = concurrency.NewLimiter(maxConcurrent)
		}
	}
}

// NewManager creates a manager for the given vertex. The application
// context supplies the completion sink; dagIdentity is the identity every
// initializer run executes under. No initializers are created yet.
func NewManager(vertex dag.Vertex, appCtx dag.AppContext, dagIdentity identity.Identity, registry *Registry, opts ...Option) (*Manager, error) {
	if vertex == nil {
		return nil, errors.New("vertex cannot be nil")
	}
	if appCtx == nil {
		return nil, errors.New("app context cannot be nil")
	}
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	emitter := appCtx.Emitter()
	if emitter == nil {
		return nil, errors.New("app context must provide an event emitter")
	}

	poolCtx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		vertex:      vertex,
		appCtx:      appCtx,
		emitter:     emitter,
		dagIdentity: dagIdentity,
		registry:    registry,
		logger:      zap.NewNop(),
		tracer:      otel.Tracer("talaria/initializer"),
		poolCtx:     poolCtx,
		cancel:      cancel,
		handles:     make(map[string]*handle),
	}

	for _, opt := range opts {
		opt(m)
	}

	// Without an explicit cap, honor the environment-driven concurrency
	// configuration.
	if m.limiter == nil {
		if config := concurrency.LoadConfig(); config.MaxConcurrent > 0 {
			m.limiter = concurrency.NewLimiter(config.MaxConcurrent)
		}
	}

	return m, nil
}

// RunInputInitializers creates one initializer per input descriptor, in the
// order given, and dispatches each to its own worker. Submission is
// non-blocking; results resolve independently and out of order.
//
// A descriptor naming an unregistered or non-constructible initializer
// fails the whole call: no handle is registered for that input and no
// further descriptors are processed. Workers already launched for earlier
// descriptors keep running.
func (m *Manager) RunInputInitializers(inputs []dag.InputDescriptor) error {
	if !m.launched.CompareAndSwap(false, true) {
		return errs.NewError("ALREADY_RUNNING",
			fmt.Sprintf("input initializers already running for vertex %s", m.vertex.LogIdentifier()),
			errs.ErrAlreadyRunning)
	}

	for _, input := range inputs {
		if _, exists := m.handles[input.EntityName]; exists {
			return errs.NewError("CONSTRUCTION_FAILED",
				fmt.Sprintf("duplicate root input name %q", input.EntityName),
				errs.ErrConstructionFailed)
		}

		init, err := m.registry.Create(input.InitializerName, input)
		if err != nil {
			return fmt.Errorf("failed to create initializer for input %q: %w", input.EntityName, err)
		}

		h := newHandle(input, init, m.vertex, m.appCtx)
		m.handles[input.EntityName] = h
		m.launch(h)
	}

	return nil
}

// launch dispatches one handle's run to a worker goroutine.
func (m *Manager) launch(h *handle) {
	go func() {
		if m.limiter != nil {
			if err := m.limiter.Acquire(m.poolCtx); err != nil {
				// Pool shut down before the worker could start; the input
				// is abandoned like any task still running at shutdown.
				return
			}
			defer m.limiter.Release()
		}

		m.active.Add(1)
		defer m.active.Add(-1)

		events, err := m.invoke(h)

		// Tasks still running at shutdown bypass the completion path
		// entirely; their outcome is never reported.
		if m.stopped.Load() {
			return
		}

		if err != nil {
			m.onFailure(h, err)
		} else {
			m.onSuccess(h, events)
		}
	}()
}

// invoke runs one handle's initializer under the DAG identity, inside a
// tracing span.
func (m *Manager) invoke(h *handle) (events []dag.OutputEvent, err error) {
	ctx, span := m.tracer.Start(m.poolCtx, "initializer.Run",
		trace.WithAttributes(
			attribute.String("vertex.name", m.vertex.Name()),
			attribute.String("input.name", h.inputName()),
			attribute.String("initializer.name", h.descriptor.InitializerName),
		))
	defer span.End()

	// A panicking initializer is reported as a failed input, not a crashed
	// manager.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("initializer for input %q panicked: %v", h.inputName(), r)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	m.logger.Info("Starting input initializer",
		zap.String("input", h.inputName()),
		zap.String("vertex", h.vertexLogID))

	err = identity.RunAs(ctx, m.dagIdentity, func(ctx context.Context) error {
		var runErr error
		events, runErr = h.initializer.Run(ctx, h.ictx)
		return runErr
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "initializer completed")
	}

	return events, err
}

// onSuccess marks the handle complete and reports the produced events to
// the completion sink.
func (m *Manager) onSuccess(h *handle, events []dag.OutputEvent) {
	h.setComplete()
	m.logger.Info("Succeeded input initializer",
		zap.String("input", h.inputName()),
		zap.String("vertex", h.vertexLogID),
		zap.Int("events", len(events)))
	m.emit(&dag.RootInputInitialized{
		VertexID:  m.vertex.ID(),
		InputName: h.inputName(),
		Events:    events,
	})
}

// onFailure marks the handle complete and reports the failure cause to the
// completion sink.
func (m *Manager) onFailure(h *handle, cause error) {
	h.setComplete()
	m.logger.Info("Failed input initializer",
		zap.String("input", h.inputName()),
		zap.String("vertex", h.vertexLogID),
		zap.Error(cause))
	m.emit(&dag.RootInputFailed{
		VertexID:  m.vertex.ID(),
		InputName: h.inputName(),
		Cause:     cause,
	})
}

// emit reports one notification to the completion sink. The completion
// path never fails: emitter errors are logged and swallowed.
func (m *Manager) emit(event dag.Event) {
	if err := m.emitter.Emit(context.Background(), event); err != nil {
		m.logger.Error("Failed to emit completion notification",
			zap.String("event_type", event.EventType()),
			zap.String("vertex", m.vertex.LogIdentifier()),
			zap.Error(err))
	}
}

// HandleInitializerEvent routes one externally generated event to the
// initializer whose input name matches the event's target.
//
// A mismatched target vertex, an unset target input name, or an unknown
// target input is a fatal error returned to the caller. After shutdown,
// events are logged and dropped. Events targeting an already-completed
// input are still forwarded, with a warning; the completion flag is a
// best-effort liveness check, not a barrier, and the forwarding race is
// deliberate.
func (m *Manager) HandleInitializerEvent(event *dag.InitializerEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	if event.TargetVertexName != m.vertex.Name() {
		return errs.NewError("VERTEX_MISMATCH",
			fmt.Sprintf("received event for vertex %q on vertex %q", event.TargetVertexName, m.vertex.Name()),
			errs.ErrVertexMismatch)
	}
	if event.TargetInputName == "" {
		return errs.NewError("MISSING_TARGET_INPUT",
			"received event without a target input name",
			errs.ErrMissingTargetInput)
	}

	h, ok := m.handles[event.TargetInputName]
	if !ok {
		return errs.NewError("UNKNOWN_INPUT",
			fmt.Sprintf("received event for unknown input %q", event.TargetInputName),
			errs.ErrUnknownInput)
	}

	if m.stopped.Load() {
		m.logger.Warn("Initializer manager already stopped, dropping event",
			zap.String("vertex", m.vertex.LogIdentifier()),
			zap.String("input", event.TargetInputName))
		return nil
	}

	if h.isComplete() {
		m.logger.Warn("Event targets an input that has already been initialized",
			zap.String("vertex", m.vertex.LogIdentifier()),
			zap.String("input", h.inputName()))
	}

	if err := h.initializer.HandleInputInitializerEvent([]*dag.InitializerEvent{event}); err != nil {
		return errs.NewError("EVENT_HANDLING_FAILED",
			fmt.Sprintf("initializer for input %q failed to process event", event.TargetInputName),
			fmt.Errorf("%w: %w", errs.ErrEventHandlingFailed, err))
	}

	return nil
}

// Shutdown stops the manager. The first call cancels the pool context,
// abandoning all in-flight workers without awaiting them; subsequent calls
// are no-ops. After shutdown, HandleInitializerEvent drops events instead
// of routing them.
func (m *Manager) Shutdown() {
	if !m.stopped.CompareAndSwap(false, true) {
		return
	}
	m.logger.Info("Shutting down initializer manager",
		zap.String("vertex", m.vertex.LogIdentifier()),
		zap.Int64("active_workers", m.active.Load()))
	m.cancel()
}

// IsStopped reports whether Shutdown has been invoked.
func (m *Manager) IsStopped() bool {
	return m.stopped.Load()
}

// ActiveWorkers returns the number of initializer workers currently
// running, for observability.
func (m *Manager) ActiveWorkers() int64 {
	return m.active.Load()
}
