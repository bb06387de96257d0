package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xping/xping-go/cmd/xping/commands"
	"github.com/xping/xping-go/logger"
	"github.com/xping/xping-go/version"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "xping",
	Short: "xping - test telemetry SDK diagnostics",
	Long: `xping - diagnostics for the xping test telemetry SDK.

Verify configuration and backend connectivity before wiring the SDK
into a test suite.

Available commands:
  config - Show and validate the resolved configuration
  ping   - Send a probe session to verify endpoint and credentials
  env    - Print the environment snapshot attached to sessions

Examples:
  xping config show        # Show resolved configuration
  xping config validate    # Validate configuration
  xping ping               # Probe the backend
  xping env                # Print environment info`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonOutput); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON log output")

	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.PingCmd)
	rootCmd.AddCommand(commands.EnvCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
