package main

import (
	"github.com/spf13/cobra"

	"cipherkit/internal/dispatch"
)

var algorithmsLong bool

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List cipher algorithms",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := dispatch.NewRegistry()
		resp := &AlgorithmsResponseCLI{Long: algorithmsLong}
		for _, a := range reg.All() {
			resp.Algorithms = append(resp.Algorithms, AlgorithmCLI{
				Name:          a.Name,
				Family:        string(a.Family),
				Usage:         a.Usage(),
				Description:   a.Description,
				Param:         a.ParamHelp,
				ParamRequired: a.Param.Required(),
			})
		}
		return writeOutput(cmd.OutOrStdout(), resp)
	},
}

func init() {
	algorithmsCmd.Flags().BoolVarP(&algorithmsLong, "long", "l", false, "Describe each parameter")
	rootCmd.AddCommand(algorithmsCmd)
}
