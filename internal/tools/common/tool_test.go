package common

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/mailclerk/internal/instrumentation"
)

type fakeTool struct {
	name   string
	result string
	err    error
	calls  int
}

func (t *fakeTool) Name() string        { return t.name }
func (t *fakeTool) Description() string { return "a fake tool" }
func (t *fakeTool) Parameters() jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Object}
}
func (t *fakeTool) Invoke(_ context.Context, _ json.RawMessage) (string, error) {
	t.calls++
	return t.result, t.err
}

func TestRegistryExecute(t *testing.T) {
	tool := &fakeTool{name: "save_email", result: "Email saved, pending approval."}
	registry := NewRegistry(tool)

	result, err := registry.Execute(context.Background(), "save_email", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "Email saved, pending approval.", result)
	assert.Equal(t, 1, tool.calls)
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Execute(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistryToolsSorted(t *testing.T) {
	registry := NewRegistry(
		&fakeTool{name: "send_email"},
		&fakeTool{name: "get_email"},
		&fakeTool{name: "save_email"},
	)

	var names []string
	for _, tool := range registry.Tools() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"get_email", "save_email", "send_email"}, names)
}

func TestRegisterReplaces(t *testing.T) {
	first := &fakeTool{name: "save_email", result: "one"}
	second := &fakeTool{name: "save_email", result: "two"}

	registry := NewRegistry(first)
	registry.Register(second)

	result, err := registry.Execute(context.Background(), "save_email", nil)
	require.NoError(t, err)
	assert.Equal(t, "two", result)
}

func TestInstrumentedToolDelegates(t *testing.T) {
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName: "test",
		Enabled:     true,
	})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	inner := &fakeTool{name: "get_email", result: "No email found.", err: nil}
	wrapped := Instrument(provider.Metrics(), inner)
	require.Len(t, wrapped, 1)

	assert.Equal(t, "get_email", wrapped[0].Name())
	result, err := wrapped[0].Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "No email found.", result)
	assert.Equal(t, 1, inner.calls)
}

func TestInstrumentedToolPropagatesError(t *testing.T) {
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName: "test",
		Enabled:     true,
	})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	inner := &fakeTool{name: "broken", err: errors.New("boom")}
	wrapped := Instrument(provider.Metrics(), inner)

	_, err = wrapped[0].Invoke(context.Background(), nil)
	require.Error(t, err)
}

func TestInstrumentNilMetrics(t *testing.T) {
	inner := &fakeTool{name: "x"}
	out := Instrument(nil, inner)
	require.Len(t, out, 1)
	// Without metrics the tool is passed through unwrapped.
	assert.Same(t, Tool(inner), out[0])
}
