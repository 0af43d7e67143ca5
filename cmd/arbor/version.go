package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arborhq/arbor"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of arbor",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arbor version %s\n", strings.TrimSpace(arbor.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
