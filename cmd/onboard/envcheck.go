package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(envCheckCmd)
}

var envCheckCmd = &cobra.Command{
	Use:   "env-check",
	Short: "Report whether an OpenAI API key is configured",
	Long:  `Prints the same JSON as GET /env-check. Only the first 8 characters of the key are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg.KeyStatus())
	},
}
