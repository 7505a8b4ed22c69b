package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/teemow/mailclerk/internal/assistant"
	"github.com/teemow/mailclerk/internal/config"
	"github.com/teemow/mailclerk/internal/drafts"
	"github.com/teemow/mailclerk/internal/graph"
	"github.com/teemow/mailclerk/internal/history"
	"github.com/teemow/mailclerk/internal/inbox"
	"github.com/teemow/mailclerk/internal/instrumentation"
	"github.com/teemow/mailclerk/internal/server"
	"github.com/teemow/mailclerk/internal/tablestore"
	"github.com/teemow/mailclerk/internal/tools/common"
	"github.com/teemow/mailclerk/internal/tools/directory_tools"
	"github.com/teemow/mailclerk/internal/tools/email_tools"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP chat service",
		Long: `Start the chat service. It serves POST /chat, health probes and
Prometheus metrics, and runs the periodic inbox check in the background.

Configuration comes from the environment (a .env file is honored):
  DEPLOYMENT_NAME, API_KEY, ENDPOINT       Azure OpenAI chat deployment
  APPLICATION_USER                         Mailbox emails are sent from
  CLIENT_ID, CLIENT_SECRET, TENANT_ID      Microsoft Graph app credentials
  STORAGE_CONNECTION_STRING                Azure Table Storage account`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, envFile)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "HTTP server address")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to an env file to load before reading configuration")

	return cmd
}

func runServe(addr, envFile string) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger(os.Stdout)
	if err != nil {
		return err
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	tables, err := tablestore.NewClient(cfg.StorageConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create table storage client: %w", err)
	}
	historyTable, err := tables.Table(shutdownCtx, history.TableName)
	if err != nil {
		return fmt.Errorf("failed to open history table: %w", err)
	}
	draftsTable, err := tables.Table(shutdownCtx, drafts.TableName)
	if err != nil {
		return fmt.Errorf("failed to open drafts table: %w", err)
	}
	historyStore := history.NewTableStore(historyTable)
	draftStore := drafts.NewTableStore(draftsTable)

	directory, err := graph.NewClient(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	if err != nil {
		return fmt.Errorf("failed to create graph client: %w", err)
	}

	emailDeps := email_tools.Deps{
		Drafts:          draftStore,
		Mail:            directory,
		ApplicationUser: cfg.ApplicationUser,
		Logger:          logger,
	}
	registry := common.NewRegistry(common.Instrument(provider.Metrics(),
		directory_tools.NewLookupTool(directory, logger),
		email_tools.NewSaveTool(emailDeps),
		email_tools.NewGetTool(emailDeps),
		email_tools.NewSendTool(emailDeps),
	)...)

	model := openai.NewClientWithConfig(openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint))

	asst, err := assistant.New(assistant.Config{
		Model:      model,
		Deployment: cfg.DeploymentName,
		History:    historyStore,
		Tools:      registry,
		Metrics:    provider.Metrics(),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create assistant: %w", err)
	}

	var metricsHandler http.Handler
	if provider.Enabled() {
		metricsHandler = provider.Handler()
	}
	srv, err := server.New(server.Config{
		Addr:           addr,
		Chat:           asst,
		Metrics:        provider.Metrics(),
		MetricsHandler: metricsHandler,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// The inbox checker runs for the lifetime of the server and stops with it.
	checker := inbox.NewChecker(logger)
	go func() {
		_ = checker.Run(shutdownCtx)
	}()

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
		drainCtx, drainCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer drainCancel()
		if err := srv.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("error shutting down server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
	}

	return nil
}
