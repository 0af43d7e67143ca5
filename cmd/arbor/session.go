package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arborhq/arbor/internal/cli"
	"github.com/arborhq/arbor/pkg/ports"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent plan sessions",
	Long:  `List, inspect, and remove plan records stored in .arbor/sessions (or Redis when configured).`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		sessions, err := store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}

		if len(sessions) == 0 {
			fmt.Println("No stored sessions found.")
			return
		}

		fmt.Println("Stored Sessions:")
		for _, s := range sessions {
			fmt.Println("- " + s)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the stored plan of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID := args[0]
		store := getStore(cmd)

		record, err := store.Load(cmd.Context(), sessionID)
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", sessionID, err)
			os.Exit(1)
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling record: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		hasError := false

		for _, sessionID := range args {
			if err := store.Delete(cmd.Context(), sessionID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", sessionID, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", sessionID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionCmd.PersistentFlags().String("redis-url", "", "Redis URL for session storage (defaults to $REDIS_URL, then local files)")
}

func getStore(cmd *cobra.Command) ports.PlanStore {
	projectDir, _ := cmd.Flags().GetString("dir")
	if projectDir == "" {
		projectDir = "."
	}
	redisURL, _ := cmd.Flags().GetString("redis-url")

	store, err := cli.OpenStore(projectDir, redisURL)
	if err != nil {
		fmt.Printf("Error opening session store: %v\n", err)
		os.Exit(1)
	}
	return store
}
