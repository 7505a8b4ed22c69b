package email_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mailclerk/internal/tools/common"
)

// RegisterEmailTools registers the draft and send tools with the MCP server.
func RegisterEmailTools(s *mcpserver.MCPServer, deps Deps) {
	saveTool := mcp.NewTool("save_email",
		mcp.WithDescription(NewSaveTool(deps).Description()),
		mcp.WithString("email_address",
			mcp.Required(),
			mcp.Description("Recipient email address"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject line"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Plain-text email body"),
		),
	)
	s.AddTool(saveTool, mcpHandler(NewSaveTool(deps)))

	getTool := mcp.NewTool("get_email",
		mcp.WithDescription(NewGetTool(deps).Description()),
		mcp.WithString("email_address",
			mcp.Required(),
			mcp.Description("Recipient email address"),
		),
	)
	s.AddTool(getTool, mcpHandler(NewGetTool(deps)))

	sendTool := mcp.NewTool("send_email",
		mcp.WithDescription(NewSendTool(deps).Description()),
		mcp.WithString("email_address",
			mcp.Required(),
			mcp.Description("Recipient email address"),
		),
	)
	s.AddTool(sendTool, mcpHandler(NewSendTool(deps)))
}

// mcpHandler bridges a common.Tool into an MCP tool handler.
func mcpHandler(tool common.Tool) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		result, err := tool.Invoke(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}
