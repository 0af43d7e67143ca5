package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arborhq/arbor"
	"github.com/arborhq/arbor/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the task network visualization",
	Long:  `Inspects the domain repository and outputs a Mermaid diagram (graph TD) of tasks, methods, and subtask edges.`,
	Run: func(cmd *cobra.Command, args []string) {
		repoPath, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			repoPath = args[0]
		}

		planner, err := arbor.New(repoPath)
		if err != nil {
			fmt.Printf("Error initializing arbor: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.Mermaid(planner.Domain(), nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
