package jssplit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wehubfusion/Talaria/pkg/dag"
	"github.com/wehubfusion/Talaria/pkg/identity"
	"github.com/wehubfusion/Talaria/pkg/initializer"
)

type fakeVertex struct{ id dag.VertexID }

func (v fakeVertex) Name() string { return "map_1" }

func (v fakeVertex) LogIdentifier() string { return "vertex_map_1" }

func (v fakeVertex) ID() dag.VertexID { return v.id }

func (v fakeVertex) NumTasks() int { return 3 }

type fakeAppContext struct{}

func (fakeAppContext) DAGName() string { return "testdag" }

func (fakeAppContext) Emitter() dag.EventEmitter { return nil }

func newInitializer(t *testing.T, config string) (*Initializer, *initializer.Context) {
	t.Helper()
	descriptor := dag.InputDescriptor{
		EntityName:      "shards",
		InitializerName: Name,
		Config:          json.RawMessage(config),
	}
	init, err := New(descriptor)
	require.NoError(t, err)
	ictx := initializer.NewContext(descriptor, fakeVertex{id: dag.NewVertexID()}, fakeAppContext{})
	return init.(*Initializer), ictx
}

func TestParseConfigDefaults(t *testing.T) {
	config, err := ParseConfig(json.RawMessage(`{"script": "[]"}`))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, config.Timeout)
}

func TestParseConfigRejectsMissingScript(t *testing.T) {
	_, err := ParseConfig(json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestParseConfigRejectsInvalidJSON(t *testing.T) {
	_, err := ParseConfig(json.RawMessage(`{"script":`))
	assert.Error(t, err)
}

func TestRunProducesSplits(t *testing.T) {
	init, ictx := newInitializer(t, `{"script": "var out = []; for (var i = 0; i < input.numTasks; i++) { out.push({shard: i}); } out;"}`)

	events, err := init.Run(context.Background(), ictx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.JSONEq(t, `{"shard": 0}`, string(events[0].Payload))
	assert.JSONEq(t, `{"shard": 2}`, string(events[2].Payload))
}

func TestRunExposesMetadataAndIdentity(t *testing.T) {
	init, ictx := newInitializer(t, `{"script": "[{name: input.inputName, vertex: input.vertexName, dag: input.dagName, who: input.principal}];"}`)

	ctx := identity.WithIdentity(context.Background(), identity.Identity{Principal: "submitter"})
	events, err := init.Run(ctx, ictx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.JSONEq(t,
		`{"name": "shards", "vertex": "map_1", "dag": "testdag", "who": "submitter"}`,
		string(events[0].Payload))
}

func TestRunExposesManualInputs(t *testing.T) {
	init, ictx := newInitializer(t, `{"script": "[{source: input.source}];", "manual_inputs": {"source": "s3"}}`)

	events, err := init.Run(context.Background(), ictx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.JSONEq(t, `{"source": "s3"}`, string(events[0].Payload))
}

func TestRunExposesQueuedEvents(t *testing.T) {
	init, ictx := newInitializer(t, `{"script": "input.events.map(function(e) { return {hint: e.hint}; });"}`)

	require.NoError(t, init.HandleInputInitializerEvent([]*dag.InitializerEvent{
		{Payload: json.RawMessage(`{"hint": "a"}`)},
		{Payload: json.RawMessage(`{"hint": "b"}`)},
	}))

	events, err := init.Run(context.Background(), ictx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.JSONEq(t, `{"hint": "a"}`, string(events[0].Payload))
}

func TestRunRejectsNonArrayResult(t *testing.T) {
	init, ictx := newInitializer(t, `{"script": "42;"}`)

	_, err := init.Run(context.Background(), ictx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must evaluate to an array")
}

func TestRunReportsScriptErrors(t *testing.T) {
	init, ictx := newInitializer(t, `{"script": "throw new Error('bad split');"}`)

	_, err := init.Run(context.Background(), ictx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad split")
}

func TestRunTimesOut(t *testing.T) {
	init, ictx := newInitializer(t, `{"script": "while (true) {}", "timeout": 50000000}`)

	start := time.Now()
	_, err := init.Run(context.Background(), ictx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunInterruptedByContext(t *testing.T) {
	init, ictx := newInitializer(t, `{"script": "while (true) {}"}`)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := init.Run(ctx, ictx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSandboxBlocksHostAccess(t *testing.T) {
	for _, global := range []string{"require", "process", "Buffer", "global"} {
		init, ictx := newInitializer(t, `{"script": "[typeof `+global+`];"}`)
		events, err := init.Run(context.Background(), ictx)
		require.NoError(t, err, global)
		assert.JSONEq(t, `["undefined"]`, string(events[0].Payload), global)
	}
}
