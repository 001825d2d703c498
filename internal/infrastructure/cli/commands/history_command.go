package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/doeshing/panel-go/internal/app"
	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/panel-go/internal/infrastructure/history"
)

// NewHistoryCommand creates the history command with subcommands
func NewHistoryCommand(handle *helpers.ContainerHandle) *cobra.Command {
	var filter domain.HistoryFilter

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect command history",
	}
	historyCmd.PersistentFlags().StringVar(&filter.UserID, "user", "", "Only entries of this user")
	historyCmd.PersistentFlags().StringVar(&filter.SessionID, "session", "", "Only entries of this session")

	historyCmd.AddCommand(
		newHistoryListCommand(handle, &filter),
		newHistoryStatsCommand(handle, &filter),
		newHistoryExportCommand(handle, &filter),
		newHistoryClearCommand(handle),
	)
	return historyCmd
}

func newHistoryListCommand(handle *helpers.ContainerHandle, filter *domain.HistoryFilter) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent commands, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := handle.Get(cmd.Context())
			if err != nil {
				return err
			}
			return listHistoryEntries(cmd.OutOrStdout(), container, *filter, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Maximum entries to show (0 for all)")
	return cmd
}

func newHistoryStatsCommand(handle *helpers.ContainerHandle, filter *domain.HistoryFilter) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show success rate, top commands and daily trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := handle.Get(cmd.Context())
			if err != nil {
				return err
			}
			helpers.RenderAnalytics(cmd.OutOrStdout(), container.CommandService.GetAnalytics(*filter))
			return nil
		},
	}
}

func newHistoryExportCommand(handle *helpers.ContainerHandle, filter *domain.HistoryFilter) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export retained history as JSON lines, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := handle.Get(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return exportHistory(cmd.OutOrStdout(), container, *filter)
			}
			f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.SecureFilePermissions)
			if err != nil {
				return errors.Wrapf(err, "open %s", output)
			}
			if err := exportHistory(f, container, *filter); err != nil {
				_ = f.Close()
				return errors.Wrapf(err, "export history to %s", output)
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Destination file (- for stdout)")
	return cmd
}

func newHistoryClearCommand(handle *helpers.ContainerHandle) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear in-memory and archived history",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := handle.Get(cmd.Context())
			if err != nil {
				return err
			}
			if container.History == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			removed := container.History.Len()
			if err := container.History.Clear(); err != nil {
				return errors.Wrap(err, "clear history")
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgHistoryCleared, removed)
			return nil
		},
	}
}

func listHistoryEntries(out io.Writer, container *app.Container, filter domain.HistoryFilter, limit int) error {
	entries := container.CommandService.GetHistory(filter, limit)
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}
	helpers.RenderHistory(out, entries, time.Now())
	return nil
}

func exportHistory(out io.Writer, container *app.Container, filter domain.HistoryFilter) error {
	entries := container.CommandService.GetHistory(filter, 0)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return history.ExportJSONL(out, entries)
}
