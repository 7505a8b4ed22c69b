package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/teemow/mailclerk/internal/history"
	"github.com/teemow/mailclerk/internal/instrumentation"
	"github.com/teemow/mailclerk/internal/logging"
	"github.com/teemow/mailclerk/internal/tools/common"
)

// SystemPrompt is prepended fresh to every model invocation. Persisted
// system turns are never replayed.
const SystemPrompt = "You are a helpful assistant. If you are uncertain of any action, ask for help."

// GiveUpReply is returned when the model keeps requesting tools past the
// round limit.
const GiveUpReply = "I was not able to finish this with the tools available. Could you tell me more precisely what you would like me to do?"

// Defaults for optional configuration.
const (
	DefaultMaxToolRounds = 8
	DefaultModelTimeout  = 60 * time.Second
)

// ChatCompleter is the slice of the OpenAI client the assistant uses.
// Tests substitute a scripted implementation.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config assembles an Assistant's dependencies. Model, Deployment, History
// and Tools are required.
type Config struct {
	// Model produces chat completions.
	Model ChatCompleter

	// Deployment is the Azure OpenAI deployment name used as model id.
	Deployment string

	// History persists conversation turns.
	History history.Store

	// Tools are the capabilities offered to the model.
	Tools *common.Registry

	// MaxToolRounds bounds the automatic tool-invocation loop.
	// Zero selects DefaultMaxToolRounds.
	MaxToolRounds int

	// ModelTimeout bounds each individual model call.
	// Zero selects DefaultModelTimeout.
	ModelTimeout time.Duration

	// Metrics records chat and completion metrics. Optional.
	Metrics *instrumentation.Metrics

	// Logger receives orchestration logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// Assistant runs chat exchanges. Construct one per request with explicit
// dependencies; it holds no ambient state.
type Assistant struct {
	model         ChatCompleter
	deployment    string
	history       history.Store
	tools         *common.Registry
	maxToolRounds int
	modelTimeout  time.Duration
	metrics       *instrumentation.Metrics
	logger        *slog.Logger
}

// New validates the configuration and creates an Assistant.
func New(cfg Config) (*Assistant, error) {
	if cfg.Model == nil {
		return nil, errors.New("assistant: model is required")
	}
	if cfg.Deployment == "" {
		return nil, errors.New("assistant: deployment is required")
	}
	if cfg.History == nil {
		return nil, errors.New("assistant: history store is required")
	}
	if cfg.Tools == nil {
		return nil, errors.New("assistant: tool registry is required")
	}
	if cfg.MaxToolRounds == 0 {
		cfg.MaxToolRounds = DefaultMaxToolRounds
	}
	if cfg.ModelTimeout == 0 {
		cfg.ModelTimeout = DefaultModelTimeout
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &instrumentation.Metrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Assistant{
		model:         cfg.Model,
		deployment:    cfg.Deployment,
		history:       cfg.History,
		tools:         cfg.Tools,
		maxToolRounds: cfg.MaxToolRounds,
		modelTimeout:  cfg.ModelTimeout,
		metrics:       cfg.Metrics,
		logger:        logging.WithService(cfg.Logger, "assistant"),
	}, nil
}

// Chat runs one exchange: load history, persist the user turn, drive the
// model-and-tools loop to a final reply, persist and return it.
func (a *Assistant) Chat(ctx context.Context, conversationID, message string) (string, error) {
	logger := logging.WithConversation(a.logger, conversationID)

	turns, err := a.history.Read(ctx, conversationID)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}
	transcript := a.buildTranscript(logger, turns)

	transcript = append(transcript, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
	// The user turn is persisted before the model is invoked, so it survives
	// a model failure.
	if _, err := a.history.Append(ctx, conversationID, history.RoleUser, message); err != nil {
		return "", fmt.Errorf("failed to persist user turn: %w", err)
	}

	reply, rounds, err := a.complete(ctx, logger, transcript)
	a.metrics.RecordChatCompletion(ctx, rounds, err)
	if err != nil {
		return "", err
	}

	if _, err := a.history.Append(ctx, conversationID, history.RoleAssistant, reply); err != nil {
		return "", fmt.Errorf("failed to persist assistant turn: %w", err)
	}
	logger.Info("chat completed",
		logging.Operation("assistant.chat"),
		slog.Int("tool_rounds", rounds),
		logging.Status(logging.StatusSuccess),
	)
	return reply, nil
}

// buildTranscript converts stored turns into model messages. The fixed
// system prompt is always inserted fresh; persisted system turns are skipped
// and unknown roles are logged and dropped.
func (a *Assistant) buildTranscript(logger *slog.Logger, turns []history.Turn) []openai.ChatCompletionMessage {
	transcript := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemPrompt,
	}}
	for _, turn := range turns {
		role, known := history.ParseRole(string(turn.Role))
		if !known {
			logger.Warn("skipping turn with unknown role",
				logging.Role(string(turn.Role)),
				slog.Int("sequence", turn.Sequence),
			)
			continue
		}
		switch role {
		case history.RoleSystem:
			continue
		case history.RoleUser:
			transcript = append(transcript, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: turn.Text,
			})
		case history.RoleAssistant:
			transcript = append(transcript, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: turn.Text,
			})
		case history.RoleTool:
			transcript = append(transcript, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleTool,
				Content: turn.Text,
			})
		}
	}
	return transcript
}

// complete drives the model until it returns a reply without tool calls or
// the round limit is reached. It returns the reply and the number of
// tool-call rounds taken.
func (a *Assistant) complete(ctx context.Context, logger *slog.Logger, transcript []openai.ChatCompletionMessage) (string, int, error) {
	definitions := a.toolDefinitions()

	for rounds := 0; ; rounds++ {
		msg, err := a.invokeModel(ctx, transcript, definitions)
		if err != nil {
			return "", rounds, err
		}
		if len(msg.ToolCalls) == 0 {
			return msg.Content, rounds, nil
		}
		if rounds >= a.maxToolRounds {
			logger.Warn("tool round limit reached, giving up",
				slog.Int("rounds", rounds),
			)
			return GiveUpReply, rounds, nil
		}

		transcript = append(transcript, msg)
		for _, call := range msg.ToolCalls {
			transcript = append(transcript, a.resolveToolCall(ctx, logger, call))
		}
	}
}

func (a *Assistant) invokeModel(ctx context.Context, transcript []openai.ChatCompletionMessage, definitions []openai.Tool) (openai.ChatCompletionMessage, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.modelTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:    a.deployment,
		Messages: transcript,
	}
	if len(definitions) > 0 {
		req.Tools = definitions
		req.ToolChoice = "auto"
	}

	resp, err := a.model.CreateChatCompletion(callCtx, req)
	if err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message, nil
}

// resolveToolCall executes one requested tool call and wraps the outcome as
// a tool message. Invocation failures become textual results so the model
// can recover or explain instead of the whole exchange failing.
func (a *Assistant) resolveToolCall(ctx context.Context, logger *slog.Logger, call openai.ToolCall) openai.ChatCompletionMessage {
	result, err := a.tools.Execute(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
	if err != nil {
		logger.Warn("tool invocation failed",
			logging.Tool(call.Function.Name),
			logging.Err(err),
		)
		result = fmt.Sprintf("The %s tool failed: %v", call.Function.Name, err)
	} else {
		logger.Info("tool invoked",
			logging.Tool(call.Function.Name),
			logging.Status(logging.StatusSuccess),
		)
	}
	return openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    result,
		ToolCallID: call.ID,
	}
}

func (a *Assistant) toolDefinitions() []openai.Tool {
	tools := a.tools.Tools()
	if len(tools) == 0 {
		return nil
	}
	definitions := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		definitions = append(definitions, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}
	return definitions
}
