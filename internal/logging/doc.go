// Package logging provides structured logging utilities for the mailclerk
// application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (email anonymization)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "assistant.chat")
//	logger.Info("chat completed",
//	    logging.Conversation(chatID),
//	    logging.Status(logging.StatusSuccess))
//
// Recipient addresses are logged anonymized:
//
//	logger.Info("email sent", logging.Recipient(address))
package logging
