// Package server implements the HTTP surface of the assistant: the chat
// endpoint, health probes and the Prometheus metrics endpoint.
//
// The chat endpoint accepts a conversation id and a user message and returns
// the assistant's reply:
//
//	POST /chat {"chatId": "...", "message": "..."}
//	200 {"response": "..."}
//
// Requests with a missing chatId or message are rejected with 400. Any
// unhandled failure, including panics, is mapped to a generic 500 body so
// internal details never leak to clients.
//
// Health endpoints follow the usual probe split: /healthz reports process
// liveness, /readyz reports readiness and flips during shutdown, and
// /health_check is a plain-text alias kept for existing monitors.
package server
