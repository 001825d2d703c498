package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/panel-go/internal/infrastructure/session"
)

// NewMonitorCommand creates the monitor command
func NewMonitorCommand(handle *helpers.ContainerHandle) *cobra.Command {
	var (
		kindName string
		duration time.Duration
		userID   string
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Stream insights for a user until the duration elapses",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := domain.ParseMonitorKind(kindName)
			if !ok {
				return errors.Newf(ErrUnknownMonitorKind, kindName)
			}
			container, err := handle.Get(cmd.Context())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if userID != "" {
				ctx = session.WithUser(ctx, userID)
			}
			user, _ := container.Sessions.Current(ctx)

			svc := container.CommandService
			if err := svc.StartMonitoring(user, kind); err != nil {
				return err
			}
			defer svc.StopMonitoring(user, kind)

			fmt.Fprintf(cmd.OutOrStdout(), "Monitoring %s insights for %s (%s)\n", kind, user, duration)
			ctx, cancel := context.WithTimeout(ctx, duration)
			defer cancel()

			ticker := time.NewTicker(InsightPollInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					helpers.RenderInsights(cmd.OutOrStdout(), svc.PendingInsights(user))
					return nil
				case <-ticker.C:
					helpers.RenderInsights(cmd.OutOrStdout(), svc.PendingInsights(user))
				}
			}
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", string(domain.MonitorRealtime), "Monitor kind (realtime|proactive)")
	cmd.Flags().DurationVar(&duration, "duration", DefaultMonitorDuration, "How long to stream insights")
	cmd.Flags().StringVar(&userID, "user", "", "User to monitor (defaults to config or $USER)")
	return cmd
}
