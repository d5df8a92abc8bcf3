package main

import (
	"github.com/spf13/cobra"

	"github.com/DarlingtonDeveloper/onboarding-agent/serve"
)

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to serve on (default: config or $PORT, then 3000)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the onboarding API server",
	Long: `Starts the onboarding checklist API and the agent router.

The OpenAI key is read from OPENAI_API_KEY. Without it the server still
starts, but /api/agent/respond answers 500.

Example:
  onboard serve                  # Start on $PORT or 3000
  onboard serve -p 8080          # Start on port 8080
  onboard serve -c onboard.yaml  # Load settings from a file`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != 0 {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	return serve.Run(cmd.Context(), cfg, logger)
}
