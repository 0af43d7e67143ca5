package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arborhq/arbor"
	"github.com/arborhq/arbor/internal/cli"
	mcpadapter "github.com/arborhq/arbor/pkg/adapters/mcp"
	"github.com/arborhq/arbor/pkg/replan"
	"github.com/arborhq/arbor/pkg/session"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts arbor as an MCP Server.
This allows AI agents (like Claude Desktop) to plan, replan, and inspect domains as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		repoPath, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			repoPath = args[0]
		}

		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		redisURL, _ := cmd.Flags().GetString("redis-url")

		// Logs must stay off Stdout: the stdio transport speaks JSON-RPC there.
		opts := &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		planner, err := arbor.New(repoPath, arbor.WithLogger(logger))
		if err != nil {
			log.Fatalf("Error initializing arbor: %v", err)
		}

		store, err := cli.OpenStore(repoPath, redisURL)
		if err != nil {
			log.Fatalf("Error opening session store: %v", err)
		}
		sessions := session.New(store, session.WithLogger(logger))
		replanner := replan.New(sessions, planner.PlanWithOptions,
			replan.WithDomainName(planner.Domain().Name()),
			replan.WithLogger(logger),
		)

		srv := mcpadapter.NewServer(planner,
			mcpadapter.WithReplanner(replanner),
			mcpadapter.WithLogger(logger),
		)

		switch transport {
		case "stdio":
			log.SetOutput(os.Stderr)
			slog.Info("Starting Arbor MCP Server (Stdio)...")
			if err := srv.ServeStdio(); err != nil {
				slog.Error("MCP Server execution failed", "error", err)
				os.Exit(1)
			}
		case "sse":
			slog.Info("Starting Arbor MCP Server (SSE)", "port", port)

			// Create a context that cancels on interrupt signal
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				// Ignore server closed error if it was caused by context cancellation
				if err != http.ErrServerClosed {
					slog.Error("MCP Server execution failed", "error", err)
					os.Exit(1)
				}
			}
			slog.Info("MCP Server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("redis-url", "", "Redis URL for session storage (defaults to $REDIS_URL, then local files)")
}
