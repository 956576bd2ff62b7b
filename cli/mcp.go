package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/upb/research-assistant/app"
	"github.com/upb/research-assistant/internal/mcp"
	"github.com/upb/research-assistant/internal/observability"
	"github.com/upb/research-assistant/internal/rag"
)

func newMCPCommand() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol server exposing the paper library.

Tools:
  search_documents   rank papers against a query
  list_documents     list papers filtered by title/author and category

Resources:
  papers://documents/{id}   full record of one paper
  papers://categories       categories in the library

By default the server speaks JSON-RPC over stdio. Use --port (or MCP_PORT)
to serve streamable HTTP instead.

Examples:
  research-assistant mcp serve
  research-assistant mcp serve --port 8090`,
		Args: cobra.NoArgs,
		RunE: runMCPServe,
	}
	serveCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")

	mcpCmd.AddCommand(serveCmd)
	return mcpCmd
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	port := cfg.MCP.Port
	if cmd.Flags().Changed("port") {
		if port, err = cmd.Flags().GetInt("port"); err != nil {
			return fmt.Errorf("getting port flag: %w", err)
		}
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, err := app.LoadCorpus(cfg.Corpus, logger)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(store, rag.NewEngine(store), app.Version, logger)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
