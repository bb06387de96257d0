package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xping/xping-go/telemetry"
)

// EnvCmd represents the env command
var EnvCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the environment snapshot attached to sessions",
	RunE:  runEnv,
}

func runEnv(cmd *cobra.Command, args []string) error {
	info := telemetry.CaptureEnvironment()

	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
