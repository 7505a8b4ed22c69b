// Package drafts stores emails the assistant has written but not yet sent.
//
// A draft is keyed by recipient address with last-write-wins semantics: at
// most one pending draft exists per address, and saving again replaces the
// previous one. A draft is deleted only after the mail API confirms a send.
package drafts
