// Package assistant implements the conversation orchestration loop.
//
// One Assistant handles one chat exchange: it rehydrates the conversation
// history, appends the new user turn, and invokes the chat model with the
// registered tool capabilities under an automatic tool-invocation policy.
// When the model requests tool calls, each is executed synchronously and its
// result fed back into the model context until the model produces a plain
// reply; the number of tool rounds is bounded, and when the bound is hit the
// assistant gives up and asks the user instead of looping.
//
// Only the user turn and the final assistant reply are persisted to history.
// Intermediate tool exchanges live in the transient model context.
package assistant
