package email_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/teemow/mailclerk/internal/drafts"
	"github.com/teemow/mailclerk/internal/graph"
	"github.com/teemow/mailclerk/internal/logging"
)

// Sentinel results routed back through the tool channel.
const (
	SavedSentinel         = "Email saved, pending approval."
	NotFoundSentinel      = "No email found."
	NothingToSendSentinel = "No email found to send"
	SentSentinel          = "Email sent."
	SendFailedSentinel    = "Error sending email."
)

// mailSender is the slice of the Graph client this package needs.
type mailSender interface {
	SendMail(ctx context.Context, fromUser string, msg graph.Message) error
}

// Deps bundles the collaborators shared by the email tools.
type Deps struct {
	// Drafts persists pending emails.
	Drafts drafts.Store

	// Mail submits approved emails.
	Mail mailSender

	// ApplicationUser is the mailbox emails are sent from.
	ApplicationUser string

	// Logger receives tool activity; defaults to slog.Default.
	Logger *slog.Logger
}

func (d *Deps) logger() *slog.Logger {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logging.WithService(logger, "email")
}

func addressParam() jsonschema.Definition {
	return jsonschema.Definition{
		Type:        jsonschema.String,
		Description: "Recipient email address",
	}
}

type addressArgs struct {
	EmailAddress string `json:"email_address"`
}

// SaveTool stores a draft pending approval.
type SaveTool struct {
	deps Deps
}

// NewSaveTool creates the save_email tool.
func NewSaveTool(deps Deps) *SaveTool { return &SaveTool{deps: deps} }

// Name implements common.Tool.
func (t *SaveTool) Name() string { return "save_email" }

// Description implements common.Tool.
func (t *SaveTool) Description() string {
	return "Saves an email with the given email address, subject, and content while waiting for approvals."
}

// Parameters implements common.Tool.
func (t *SaveTool) Parameters() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"email_address": addressParam(),
			"subject": {
				Type:        jsonschema.String,
				Description: "Email subject line",
			},
			"content": {
				Type:        jsonschema.String,
				Description: "Plain-text email body",
			},
		},
		Required: []string{"email_address", "subject", "content"},
	}
}

type saveArgs struct {
	EmailAddress string `json:"email_address"`
	Subject      string `json:"subject"`
	Content      string `json:"content"`
}

// Invoke implements common.Tool. Saving overwrites any earlier draft for the
// same address.
func (t *SaveTool) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var in saveArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("invalid arguments for %s: %w", t.Name(), err)
	}
	if err := t.deps.Drafts.Save(ctx, drafts.Draft{
		Address: in.EmailAddress,
		Subject: in.Subject,
		Body:    in.Content,
	}); err != nil {
		return "", fmt.Errorf("failed to save draft: %w", err)
	}
	t.deps.logger().Info("draft saved",
		logging.Operation("drafts.save"),
		logging.Recipient(in.EmailAddress),
	)
	return SavedSentinel, nil
}

// GetTool reads a pending draft back for review.
type GetTool struct {
	deps Deps
}

// NewGetTool creates the get_email tool.
func NewGetTool(deps Deps) *GetTool { return &GetTool{deps: deps} }

// Name implements common.Tool.
func (t *GetTool) Name() string { return "get_email" }

// Description implements common.Tool.
func (t *GetTool) Description() string {
	return "Get an email based on email address. Returns a subject, content, and email address."
}

// Parameters implements common.Tool.
func (t *GetTool) Parameters() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"email_address": addressParam(),
		},
		Required: []string{"email_address"},
	}
}

// Invoke implements common.Tool.
func (t *GetTool) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var in addressArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("invalid arguments for %s: %w", t.Name(), err)
	}
	draft, err := t.deps.Drafts.Get(ctx, in.EmailAddress)
	if err != nil {
		return "", fmt.Errorf("failed to fetch draft: %w", err)
	}
	if draft == nil {
		return NotFoundSentinel, nil
	}
	rendered, err := json.Marshal(map[string]string{
		"subject": draft.Subject,
		"content": draft.Body,
		"to":      draft.Address,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render draft: %w", err)
	}
	return string(rendered), nil
}

// SendTool submits an approved draft through the mail API.
type SendTool struct {
	deps Deps
}

// NewSendTool creates the send_email tool.
func NewSendTool(deps Deps) *SendTool { return &SendTool{deps: deps} }

// Name implements common.Tool.
func (t *SendTool) Name() string { return "send_email" }

// Description implements common.Tool.
func (t *SendTool) Description() string {
	return "Send an email for a given email address. Email should be approved before sending."
}

// Parameters implements common.Tool.
func (t *SendTool) Parameters() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"email_address": addressParam(),
		},
		Required: []string{"email_address"},
	}
}

// Invoke implements common.Tool. The draft is deleted only after the mail
// service confirms the send; on failure it stays pending for a manual retry.
func (t *SendTool) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var in addressArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("invalid arguments for %s: %w", t.Name(), err)
	}
	logger := t.deps.logger()

	draft, err := t.deps.Drafts.Get(ctx, in.EmailAddress)
	if err != nil {
		return "", fmt.Errorf("failed to fetch draft: %w", err)
	}
	if draft == nil {
		return NothingToSendSentinel, nil
	}

	if err := t.deps.Mail.SendMail(ctx, t.deps.ApplicationUser, graph.Message{
		To:      draft.Address,
		Subject: draft.Subject,
		Body:    draft.Body,
	}); err != nil {
		logger.Warn("send failed, draft preserved",
			logging.Operation("mail.send"),
			logging.Recipient(draft.Address),
			logging.Err(err),
		)
		return SendFailedSentinel, nil
	}

	if err := t.deps.Drafts.Delete(ctx, in.EmailAddress); err != nil {
		// The email is out; a stale draft is the lesser problem, but it must
		// not masquerade as a failed send.
		logger.Error("sent but failed to delete draft",
			logging.Operation("drafts.delete"),
			logging.Recipient(draft.Address),
			logging.Err(err),
		)
	}
	logger.Info("email sent",
		logging.Operation("mail.send"),
		logging.Recipient(draft.Address),
	)
	return SentSentinel, nil
}
