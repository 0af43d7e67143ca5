package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arborhq/arbor/internal/cli"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a plan from the domain repository",
	Long:  `Decomposes the domain's root tasks against an initial world state and prints the resulting action plan.`,
	Run: func(cmd *cobra.Command, args []string) {
		repoPath, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			repoPath = args[0]
		}
		state, _ := cmd.Flags().GetString("state")
		roots, _ := cmd.Flags().GetStringSlice("root")
		sessionID, _ := cmd.Flags().GetString("session")
		redisURL, _ := cmd.Flags().GetString("redis-url")
		maxDepth, _ := cmd.Flags().GetInt("max-depth")
		debugMode, _ := cmd.Flags().GetBool("debug")
		jsonMode, _ := cmd.Flags().GetBool("json")
		watchMode, _ := cmd.Flags().GetBool("watch")
		fresh, _ := cmd.Flags().GetBool("fresh")

		err := cli.Execute(cli.PlanOptions{
			RepoPath:  repoPath,
			State:     state,
			Roots:     roots,
			SessionID: sessionID,
			RedisURL:  redisURL,
			MaxDepth:  maxDepth,
			Debug:     debugMode,
			JSON:      jsonMode,
			Watch:     watchMode,
			Fresh:     fresh,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().String("state", "", "Initial world state as JSON, or @file to read it from a file")
	planCmd.Flags().StringSlice("root", nil, "Root task to plan (repeatable; defaults to the domain's roots)")
	planCmd.Flags().String("session", "", "Session ID for persistent replanning")
	planCmd.Flags().String("redis-url", "", "Redis URL for session storage (defaults to $REDIS_URL, then local files)")
	planCmd.Flags().Int("max-depth", 0, "Maximum decomposition depth (0 uses the engine default)")
	planCmd.Flags().BoolP("debug", "d", false, "Log planner events and print the decomposition tree")
	planCmd.Flags().Bool("json", false, "Print the plan result as JSON")
	planCmd.Flags().BoolP("watch", "w", false, "Replan whenever the domain repository changes")
	planCmd.Flags().Bool("fresh", false, "Discard the stored session plan before planning")

	// Make 'plan' the default if no command is provided
	rootCmd.Run = planCmd.Run
}
