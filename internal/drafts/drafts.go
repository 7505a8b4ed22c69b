package drafts

import "context"

// Draft is an email pending approval before transmission.
type Draft struct {
	// Address is the recipient and the draft's key.
	Address string

	// Subject is the email subject line.
	Subject string

	// Body is the plain-text email content.
	Body string
}

// Store persists pending drafts keyed by recipient address.
type Store interface {
	// Save stores a draft, replacing any existing draft for the same address.
	Save(ctx context.Context, draft Draft) error

	// Get returns the pending draft for an address, or nil when there is none.
	Get(ctx context.Context, address string) (*Draft, error)

	// Delete removes the pending draft for an address. Deleting an address
	// without a draft is not an error.
	Delete(ctx context.Context, address string) error
}
