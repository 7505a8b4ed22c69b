package cmd

import (
	"context"
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/mailclerk/internal/config"
	"github.com/teemow/mailclerk/internal/drafts"
	"github.com/teemow/mailclerk/internal/graph"
	"github.com/teemow/mailclerk/internal/tablestore"
	"github.com/teemow/mailclerk/internal/tools/directory_tools"
	"github.com/teemow/mailclerk/internal/tools/email_tools"
)

func newMcpCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Expose the assistant's tools over the Model Context Protocol so MCP
clients can look up email addresses, draft emails and send approved drafts
directly.

The same configuration environment variables as the serve command apply.
Logs go to stderr; stdout is reserved for the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMcp(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to an env file to load before reading configuration")

	return cmd
}

func runMcp(envFile string) error {
	// stdout carries MCP traffic, so logs must go to stderr.
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tables, err := tablestore.NewClient(cfg.StorageConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create table storage client: %w", err)
	}
	draftsTable, err := tables.Table(ctx, drafts.TableName)
	if err != nil {
		return fmt.Errorf("failed to open drafts table: %w", err)
	}

	directory, err := graph.NewClient(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	if err != nil {
		return fmt.Errorf("failed to create graph client: %w", err)
	}

	mcpSrv := mcpserver.NewMCPServer("mailclerk", version,
		mcpserver.WithToolCapabilities(true),
	)

	directory_tools.RegisterDirectoryTools(mcpSrv, directory, logger)
	email_tools.RegisterEmailTools(mcpSrv, email_tools.Deps{
		Drafts:          drafts.NewTableStore(draftsTable),
		Mail:            directory,
		ApplicationUser: cfg.ApplicationUser,
		Logger:          logger,
	})

	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
