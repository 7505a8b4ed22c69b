// Package tablestore wraps the Azure Table Storage SDK with the small surface
// mailclerk needs: connection-string based client construction, idempotent
// table creation, and error classification helpers.
//
// Conversation history and pending email drafts both live in table storage;
// the typed stores in the history and drafts packages build on this package.
package tablestore
