package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arborhq/arbor"
	"github.com/arborhq/arbor/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the domain for consistency",
	Long:  `Builds the domain and reports dangling method references, compounds without methods, and tasks unreachable from any root.`,
	Run: func(cmd *cobra.Command, args []string) {
		report, err := runValidate(cmd, args)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		for _, issue := range report.Issues {
			fmt.Printf("%s: %s\n", issue.Severity, issue)
		}
		if !report.OK() {
			os.Exit(1)
		}
		fmt.Println("Domain is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) (*validator.Report, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		dir = args[0]
	}

	planner, err := arbor.New(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to init planner: %w", err)
	}

	return validator.Check(planner.Domain()), nil
}
