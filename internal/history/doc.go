// Package history stores per-conversation chat transcripts.
//
// A conversation is an append-only, ordered log of turns keyed by
// conversation id. The store assigns sequence numbers itself, so concurrent
// appenders for the same conversation cannot silently overwrite each other:
// the table-backed implementation inserts with if-absent semantics and
// retries on conflict, the in-memory implementation serializes with a mutex.
//
// Turns are never updated or deleted once written.
package history
