package cli

import (
	"fmt"

	"college-quiz-service/internal/config"
	"github.com/spf13/cobra"
)

// NewSweepCmd force-submits overdue attempts once, for cron-driven deployments
// that run the server with the background sweeper disabled.
func NewSweepCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Auto-submit attempts whose deadline has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			svc, err := buildServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			n, err := svc.attempts.SweepExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "auto-submitted %d attempts\n", n)
			return nil
		},
	}
}

