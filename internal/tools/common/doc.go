// Package common defines the tool capability contract shared by the chat
// orchestrator and the MCP server.
//
// A Tool is a named, schema-described function the language model may
// request to be invoked on its behalf. Tools return their outcome as text
// routed back through the tool-call channel; "not found" and similar
// conditions are sentinel strings the model can read, not errors. An error
// return is reserved for genuine invocation failures.
//
// The Registry maps tool names to implementations and is handed to the
// orchestrator as an explicit dependency.
package common
