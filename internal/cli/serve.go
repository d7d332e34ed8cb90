package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	erpmcpserver "erpmcp/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the erpmcp MCP server on stdio",
	Long: `Start the MCP server on stdio transport.

The server exposes the ERP knowledge base as MCP tools that AI coding
assistants can call: query_knowledge, list_operations, list_flows,
get_flow_details, recommend_flow, recommend_operation, validate_request,
diagnose_error, health_check, list_erps, check_knowledge_files.

Stdout carries only protocol frames; all logging goes to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Registry == nil {
			return fmt.Errorf("ERP registry not initialized")
		}

		srv := erpmcpserver.NewServer(Registry, Audit, Logger, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if Logger != nil {
			Logger.Info("starting MCP server", "erps", Registry.Keys(), "version", appVersion)
		}

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
