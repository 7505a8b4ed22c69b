package directory_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/teemow/mailclerk/internal/graph"
	"github.com/teemow/mailclerk/internal/logging"
)

// NoMatchesSentinel is returned to the model when a lookup yields no addresses.
const NoMatchesSentinel = "No matching users found."

// directoryClient is the slice of the Graph client this package needs.
type directoryClient interface {
	SearchUsersByPrefix(ctx context.Context, fragment string) ([]graph.User, error)
}

// LookupTool resolves name fragments to email addresses.
type LookupTool struct {
	directory directoryClient
	logger    *slog.Logger
}

// NewLookupTool creates the directory lookup tool.
func NewLookupTool(directory directoryClient, logger *slog.Logger) *LookupTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &LookupTool{
		directory: directory,
		logger:    logging.WithService(logger, "directory"),
	}
}

// Name implements common.Tool.
func (t *LookupTool) Name() string { return "get_email_address" }

// Description implements common.Tool.
func (t *LookupTool) Description() string {
	return "Get an email address based on a users name. Returns one or many email addresses based on name."
}

// Parameters implements common.Tool.
func (t *LookupTool) Parameters() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"name": {
				Type:        jsonschema.String,
				Description: "Full or partial display name of the person to look up",
			},
		},
		Required: []string{"name"},
	}
}

type lookupArgs struct {
	Name string `json:"name"`
}

// Invoke implements common.Tool.
func (t *LookupTool) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var in lookupArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("invalid arguments for %s: %w", t.Name(), err)
	}

	addresses := t.lookup(ctx, in.Name)
	if len(addresses) == 0 {
		return NoMatchesSentinel, nil
	}
	rendered, err := json.Marshal(addresses)
	if err != nil {
		return "", fmt.Errorf("failed to render lookup result: %w", err)
	}
	return string(rendered), nil
}

// lookup performs the directory query. Failures are logged and collapse to
// an empty result so the tool channel stays natural-language friendly.
func (t *LookupTool) lookup(ctx context.Context, fragment string) []string {
	users, err := t.directory.SearchUsersByPrefix(ctx, fragment)
	if err != nil {
		t.logger.Warn("directory lookup failed",
			logging.Operation("directory.search"),
			logging.Err(err),
		)
		return nil
	}
	addresses := make([]string, 0, len(users))
	for _, user := range users {
		addresses = append(addresses, user.Mail)
	}
	return addresses
}

// RegisterDirectoryTools registers the directory tools with the MCP server.
func RegisterDirectoryTools(s *mcpserver.MCPServer, directory directoryClient, logger *slog.Logger) {
	lookup := NewLookupTool(directory, logger)

	tool := mcp.NewTool(lookup.Name(),
		mcp.WithDescription(lookup.Description()),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Full or partial display name of the person to look up"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		result, err := lookup.Invoke(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	})
}
