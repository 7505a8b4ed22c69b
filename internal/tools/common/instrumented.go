package common

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/teemow/mailclerk/internal/instrumentation"
)

// InstrumentedTool wraps a Tool and records invocation count and duration.
type InstrumentedTool struct {
	tool    Tool
	metrics *instrumentation.Metrics
}

// Instrument wraps every given tool with metrics recording. A nil metrics
// recorder leaves the tools unwrapped.
func Instrument(metrics *instrumentation.Metrics, tools ...Tool) []Tool {
	if metrics == nil {
		return tools
	}
	out := make([]Tool, len(tools))
	for i, tool := range tools {
		out[i] = &InstrumentedTool{tool: tool, metrics: metrics}
	}
	return out
}

var _ Tool = (*InstrumentedTool)(nil)

// Name implements Tool.
func (t *InstrumentedTool) Name() string { return t.tool.Name() }

// Description implements Tool.
func (t *InstrumentedTool) Description() string { return t.tool.Description() }

// Parameters implements Tool.
func (t *InstrumentedTool) Parameters() jsonschema.Definition { return t.tool.Parameters() }

// Invoke implements Tool.
func (t *InstrumentedTool) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	start := time.Now()
	result, err := t.tool.Invoke(ctx, args)
	t.metrics.RecordToolInvocation(ctx, t.tool.Name(), time.Since(start), err)
	return result, err
}
