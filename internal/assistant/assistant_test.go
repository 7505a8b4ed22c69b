package assistant

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/mailclerk/internal/drafts"
	"github.com/teemow/mailclerk/internal/history"
	"github.com/teemow/mailclerk/internal/tools/common"
	"github.com/teemow/mailclerk/internal/tools/email_tools"
)

// scriptedModel replays a fixed sequence of responses and records every
// request it receives.
type scriptedModel struct {
	responses []openai.ChatCompletionResponse
	errs      []error
	requests  []openai.ChatCompletionRequest
}

func (m *scriptedModel) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.requests = append(m.requests, req)
	call := len(m.requests) - 1
	if call < len(m.errs) && m.errs[call] != nil {
		return openai.ChatCompletionResponse{}, m.errs[call]
	}
	if call >= len(m.responses) {
		return openai.ChatCompletionResponse{}, errors.New("scripted model exhausted")
	}
	return m.responses[call], nil
}

func reply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
		}},
	}
}

func toolCall(id, name, arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					ID:   id,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      name,
						Arguments: arguments,
					},
				}},
			},
		}},
	}
}

func newAssistant(t *testing.T, model ChatCompleter, store history.Store, registry *common.Registry) *Assistant {
	t.Helper()
	a, err := New(Config{
		Model:      model,
		Deployment: "gpt-4",
		History:    store,
		Tools:      registry,
		Logger:     slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return a
}

func TestChatDirectReply(t *testing.T) {
	model := &scriptedModel{responses: []openai.ChatCompletionResponse{
		reply("Hello there."),
	}}
	store := history.NewMemoryStore()
	a := newAssistant(t, model, store, common.NewRegistry())

	answer, err := a.Chat(context.Background(), "chat-1", "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", answer)

	turns, err := store.Read(context.Background(), "chat-1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, history.RoleUser, turns[0].Role)
	assert.Equal(t, "Hi", turns[0].Text)
	assert.Equal(t, history.RoleAssistant, turns[1].Role)
	assert.Equal(t, "Hello there.", turns[1].Text)
}

func TestChatSystemPromptAlwaysFirst(t *testing.T) {
	model := &scriptedModel{responses: []openai.ChatCompletionResponse{
		reply("ok"),
	}}
	store := history.NewMemoryStore()
	_, err := store.Append(context.Background(), "chat-1", history.RoleSystem, "stale system prompt")
	require.NoError(t, err)
	_, err = store.Append(context.Background(), "chat-1", history.RoleUser, "earlier question")
	require.NoError(t, err)
	_, err = store.Append(context.Background(), "chat-1", history.RoleAssistant, "earlier answer")
	require.NoError(t, err)

	a := newAssistant(t, model, store, common.NewRegistry())
	_, err = a.Chat(context.Background(), "chat-1", "next")
	require.NoError(t, err)

	require.Len(t, model.requests, 1)
	messages := model.requests[0].Messages
	require.Len(t, messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, SystemPrompt, messages[0].Content)
	assert.Equal(t, "earlier question", messages[1].Content)
	assert.Equal(t, "earlier answer", messages[2].Content)
	assert.Equal(t, "next", messages[3].Content)
}

func TestChatToolRoundTrip(t *testing.T) {
	model := &scriptedModel{responses: []openai.ChatCompletionResponse{
		toolCall("call-1", "save_email", `{"email_address":"jolene@example.com","subject":"Meeting","content":"See you at 3pm."}`),
		reply("Done"),
	}}
	store := history.NewMemoryStore()
	draftStore := drafts.NewMemoryStore()
	registry := common.NewRegistry(
		email_tools.NewSaveTool(email_tools.Deps{
			Drafts: draftStore,
			Logger: slog.New(slog.DiscardHandler),
		}),
	)
	a := newAssistant(t, model, store, registry)

	answer, err := a.Chat(context.Background(), "chat-1", "email jolene@example.com about the meeting")
	require.NoError(t, err)
	assert.Equal(t, "Done", answer)

	// Only the user message and the final reply are persisted. Tool calls
	// and their results stay within the exchange.
	turns, err := store.Read(context.Background(), "chat-1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, history.RoleUser, turns[0].Role)
	assert.Equal(t, history.RoleAssistant, turns[1].Role)
	assert.Equal(t, "Done", turns[1].Text)

	draft, err := draftStore.Get(context.Background(), "jolene@example.com")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "Meeting", draft.Subject)
	assert.Equal(t, "See you at 3pm.", draft.Body)

	// The second model call carries the tool result back.
	require.Len(t, model.requests, 2)
	second := model.requests[1].Messages
	last := second[len(second)-1]
	assert.Equal(t, openai.ChatMessageRoleTool, last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)
	assert.Equal(t, email_tools.SavedSentinel, last.Content)
}

func TestChatUnknownToolFedBack(t *testing.T) {
	model := &scriptedModel{responses: []openai.ChatCompletionResponse{
		toolCall("call-1", "no_such_tool", `{}`),
		reply("Sorry, I cannot do that."),
	}}
	store := history.NewMemoryStore()
	a := newAssistant(t, model, store, common.NewRegistry())

	answer, err := a.Chat(context.Background(), "chat-1", "do something odd")
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I cannot do that.", answer)

	require.Len(t, model.requests, 2)
	messages := model.requests[1].Messages
	last := messages[len(messages)-1]
	assert.Equal(t, openai.ChatMessageRoleTool, last.Role)
	assert.Contains(t, last.Content, "no_such_tool")
}

func TestChatToolRoundLimit(t *testing.T) {
	responses := make([]openai.ChatCompletionResponse, 0, DefaultMaxToolRounds+1)
	for i := 0; i <= DefaultMaxToolRounds; i++ {
		responses = append(responses, toolCall("call", "loop_forever", `{}`))
	}
	model := &scriptedModel{responses: responses}
	store := history.NewMemoryStore()
	a := newAssistant(t, model, store, common.NewRegistry())

	answer, err := a.Chat(context.Background(), "chat-1", "loop")
	require.NoError(t, err)
	assert.Equal(t, GiveUpReply, answer)

	turns, err := store.Read(context.Background(), "chat-1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, GiveUpReply, turns[1].Text)
}

func TestChatModelErrorKeepsUserTurn(t *testing.T) {
	model := &scriptedModel{errs: []error{errors.New("deployment unavailable")}}
	store := history.NewMemoryStore()
	a := newAssistant(t, model, store, common.NewRegistry())

	_, err := a.Chat(context.Background(), "chat-1", "Hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion failed")

	turns, readErr := store.Read(context.Background(), "chat-1")
	require.NoError(t, readErr)
	require.Len(t, turns, 1)
	assert.Equal(t, history.RoleUser, turns[0].Role)
}

func TestNewValidation(t *testing.T) {
	store := history.NewMemoryStore()
	registry := common.NewRegistry()
	model := &scriptedModel{}

	_, err := New(Config{Deployment: "d", History: store, Tools: registry})
	assert.Error(t, err)

	_, err = New(Config{Model: model, History: store, Tools: registry})
	assert.Error(t, err)

	_, err = New(Config{Model: model, Deployment: "d", Tools: registry})
	assert.Error(t, err)

	_, err = New(Config{Model: model, Deployment: "d", History: store})
	assert.Error(t, err)
}
