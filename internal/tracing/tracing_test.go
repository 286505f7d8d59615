package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("talaria-publisher")

	assert.Equal(t, "talaria-publisher", config.ServiceName)
	assert.Equal(t, "1.0.0", config.ServiceVersion)
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "127.0.0.1:4318", config.OTLPEndpoint)
	assert.Equal(t, 1.0, config.SampleRatio)
}

func TestSetupReturnsShutdown(t *testing.T) {
	// The OTLP/HTTP exporter connects lazily, so setup succeeds without a
	// collector listening.
	shutdown, err := Setup(context.Background(), DefaultConfig("test-service"), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
}

func TestShutdownHelper(t *testing.T) {
	err := Shutdown(func(ctx context.Context) error { return nil }, zap.NewNop())
	assert.NoError(t, err)

	want := errors.New("flush failed")
	err = Shutdown(func(ctx context.Context) error { return want }, nil)
	assert.ErrorIs(t, err, want)
}

func TestShutdownHelperHonoursDeadline(t *testing.T) {
	var deadline bool
	err := Shutdown(func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, deadline, "shutdown must bound the flush with a deadline")
}
