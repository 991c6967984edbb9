package main

import (
	"context"
	"fmt"

	"github.com/aretw0/maitre/internal/cli"
	"github.com/aretw0/maitre/pkg/adapters/mcp"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the booking agent as MCP tools (start_booking, send_message, get_booking).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		sc := cli.NewSignalContext(context.Background())
		defer sc.Cancel()

		_, logger, svc, err := bootstrap(sc, cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		srv := mcp.NewServer(svc.Engine, svc.Sessions,
			mcp.WithLogger(logger),
			mcp.WithOnComplete(func(s *domain.Session) { svc.Metrics.RecordOutcome(s.Outcome) }),
		)

		switch transport {
		case "stdio":
			logger.Info("starting maitre MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting maitre MCP server (SSE)", "port", port)
			return srv.ServeSSE(sc, port)
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
