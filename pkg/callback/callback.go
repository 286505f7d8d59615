// Package callback provides completion sink implementations for the
// initializer manager: a NATS-backed emitter that publishes completion
// notifications to a result subject, and an in-process channel emitter for
// the vertex state machine.
package callback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wehubfusion/Talaria/pkg/dag"
)

// Publisher publishes raw bytes to a subject. *nats.Conn satisfies this
// interface.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Config holds configuration for the NATS emitter
type Config struct {
	Subject         string        // Subject to publish notifications to (default: "vertex.events")
	MaxRetries      int           // Maximum number of retry attempts (default: 3)
	RetryDelay      time.Duration // Delay between retries (default: 1s)
	CaptureFailures bool          // Report RootInputFailed causes to Sentry (default: false)
	Logger          *zap.Logger   // Custom logger instance (optional, no-op if nil)
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Subject:    "vertex.events",
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Emitter publishes completion notifications to a NATS subject as JSON
// envelopes. It implements dag.EventEmitter.
type Emitter struct {
	publisher Publisher
	config    *Config
	logger    *zap.Logger
}

// NewEmitter creates a NATS emitter with the default configuration.
func NewEmitter(publisher Publisher) (*Emitter, error) {
	return NewEmitterWithConfig(publisher, DefaultConfig())
}

// NewEmitterWithConfig creates a NATS emitter with custom configuration.
func NewEmitterWithConfig(publisher Publisher, config *Config) (*Emitter, error) {
	if publisher == nil {
		return nil, fmt.Errorf("publisher cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Subject == "" {
		config.Subject = "vertex.events"
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Emitter{
		publisher: publisher,
		config:    config,
		logger:    logger,
	}, nil
}

// notification is the wire envelope for completion notifications.
type notification struct {
	CorrelationID string            `json:"correlationId"`
	EventType     string            `json:"eventType"`
	VertexID      string            `json:"vertexId"`
	InputName     string            `json:"inputName"`
	Events        []dag.OutputEvent `json:"events,omitempty"`
	Cause         string            `json:"cause,omitempty"`
	EmittedAt     string            `json:"emittedAt"`
}

// Emit implements dag.EventEmitter. Only completion notifications are
// publishable; anything else is rejected.
func (e *Emitter) Emit(ctx context.Context, event dag.Event) error {
	envelope := notification{
		CorrelationID: uuid.NewString(),
		EventType:     event.EventType(),
		EmittedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}

	switch ev := event.(type) {
	case *dag.RootInputInitialized:
		envelope.VertexID = ev.VertexID.String()
		envelope.InputName = ev.InputName
		envelope.Events = ev.Events
	case *dag.RootInputFailed:
		envelope.VertexID = ev.VertexID.String()
		envelope.InputName = ev.InputName
		if ev.Cause != nil {
			envelope.Cause = ev.Cause.Error()
			if e.config.CaptureFailures {
				sentry.CaptureException(ev.Cause)
			}
		}
	default:
		return fmt.Errorf("unsupported event type %q", event.EventType())
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	return e.publishWithRetries(ctx, data, envelope)
}

func (e *Emitter) publishWithRetries(ctx context.Context, data []byte, envelope notification) error {
	var lastErr error
	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(e.config.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := e.publisher.Publish(e.config.Subject, data); err != nil {
			lastErr = err
			e.logger.Warn("Failed to publish completion notification",
				zap.String("subject", e.config.Subject),
				zap.String("event_type", envelope.EventType),
				zap.String("input", envelope.InputName),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}

		e.logger.Info("Published completion notification",
			zap.String("subject", e.config.Subject),
			zap.String("event_type", envelope.EventType),
			zap.String("input", envelope.InputName),
			zap.String("correlation_id", envelope.CorrelationID))
		return nil
	}

	return fmt.Errorf("failed to publish notification after %d attempts: %w", e.config.MaxRetries+1, lastErr)
}

var _ dag.EventEmitter = (*Emitter)(nil)
