package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xping/xping-go/config"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and validate the resolved configuration",
	Long: `config — Show and validate the resolved xping configuration.

Configuration sources (in order of precedence):
1. Environment variables (XPING_* prefix)
2. Project config (./xping.toml, searched upward)
3. User config (~/.xping/xping.toml)
4. Default values

Examples:
  xping config show        # Show resolved configuration
  xping config validate    # Validate configuration`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate resolved configuration",
	RunE:  runConfigValidate,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Show everything except credentials
	display := *cfg
	display.APIKey = redact(cfg.APIKey)

	out, err := json.MarshalIndent(display, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	if !cfg.Enabled {
		fmt.Println("Configuration valid (telemetry disabled)")
		return nil
	}
	fmt.Println("Configuration valid")
	return nil
}

func redact(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
