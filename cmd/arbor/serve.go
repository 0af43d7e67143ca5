package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/arborhq/arbor"
	"github.com/arborhq/arbor/internal/cli"
	"github.com/arborhq/arbor/internal/logging"
	httpadapter "github.com/arborhq/arbor/pkg/adapters/http"
	"github.com/arborhq/arbor/pkg/replan"
	"github.com/arborhq/arbor/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the planning HTTP server",
	Long:  `Starts arbor in server mode, exposing planning, replanning sessions, and domain introspection over a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		addr, _ := cmd.Flags().GetString("addr")
		redisURL, _ := cmd.Flags().GetString("redis-url")
		debugMode, _ := cmd.Flags().GetBool("debug")

		level := slog.LevelInfo
		if debugMode {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		reg := prometheus.NewRegistry()
		planner, err := arbor.New(dir,
			arbor.WithLogger(logger),
			arbor.WithMetrics(reg),
		)
		if err != nil {
			fmt.Printf("Error initializing arbor: %v\n", err)
			os.Exit(1)
		}

		store, err := cli.OpenStore(dir, redisURL)
		if err != nil {
			fmt.Printf("Error opening session store: %v\n", err)
			os.Exit(1)
		}
		sessions := session.New(store, session.WithLogger(logger))
		replanner := replan.New(sessions, planner.PlanWithOptions,
			replan.WithDomainName(planner.Domain().Name()),
			replan.WithLogger(logger),
		)

		handler := httpadapter.NewHandler(planner,
			httpadapter.WithReplanner(replanner),
			httpadapter.WithGatherer(reg),
			httpadapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:    addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Arbor Server on %s\n", srv.Addr)
			fmt.Printf("Serving domain from: %s\n", dir)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Arbor Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis-url", "", "Redis URL for session storage (defaults to $REDIS_URL, then local files)")
	serveCmd.Flags().Bool("debug", false, "Log at debug level")
}
