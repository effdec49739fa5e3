package main

import (
	"github.com/spf13/cobra"

	"cipherkit/internal/version"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version and build information",
	Annotations: map[string]string{lenient: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Current()
		return writeOutput(cmd.OutOrStdout(), &info)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
