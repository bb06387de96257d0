package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xping/xping-go/config"
	"github.com/xping/xping-go/identity"
	"github.com/xping/xping-go/serializer"
	"github.com/xping/xping-go/telemetry"
	"github.com/xping/xping-go/uploader"
)

// PingCmd represents the ping command
var PingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Send a probe session to verify endpoint and credentials",
	Long: `ping — Send a one-record probe session to the backend.

Exercises the full upload path (serialization, compression policy,
authentication headers) so endpoint and credential problems surface
here instead of mid-test-run.`,
	RunE: runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	if !cfg.Enabled {
		return fmt.Errorf("telemetry is disabled; enable it to probe the backend")
	}

	// One synthetic heartbeat record so the uploader doesn't short-circuit
	// on an empty session.
	gen := identity.NewGenerator()
	id, err := gen.Generate("xping.diagnostics.Probe.Heartbeat", "xping")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	session := telemetry.NewSession()
	session.Executions = []*telemetry.TestExecution{{
		ExecutionID: uuid.NewString(),
		Identity:    id,
		Outcome:     telemetry.OutcomePassed,
		StartedAt:   now,
		FinishedAt:  now,
	}}

	up := uploader.NewHTTP(cfg, serializer.NewJSON(), nil)
	defer up.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.UploadTimeout())
	defer cancel()

	result, err := up.Upload(ctx, session)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("probe failed: %s", result.ErrorMessage)
	}

	fmt.Printf("Backend reachable: session %s acknowledged in %s", session.SessionID, result.Duration.Round(time.Millisecond))
	if result.ReceiptID != "" {
		fmt.Printf(" (receipt %s)", result.ReceiptID)
	}
	fmt.Println()
	return nil
}
