package commands

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/panel-go/internal/application/command"
	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/infrastructure/cli/helpers"
)

// NewRunCommand creates the one-shot run command
func NewRunCommand(handle *helpers.ContainerHandle) *cobra.Command {
	var (
		assumeYes bool
		sessionID string
		userID    string
	)

	cmd := &cobra.Command{
		Use:   "run <text>",
		Short: "Run one natural-language command",
		Example: `  panel run "Ahmet'ten 1000 TL bağış al"
  panel run --yes "Görevi tamamla: rapor"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := handle.Get(cmd.Context())
			if err != nil {
				return err
			}
			svc := container.CommandService
			out := cmd.OutOrStdout()
			req := command.SubmitRequest{
				SessionID: sessionID,
				UserID:    userID,
				Text:      strings.Join(args, " "),
			}

			outcome := svc.SubmitCommand(cmd.Context(), req)
			helpers.RenderSubmitOutcome(out, outcome, time.Now())
			if outcome.Kind != domain.SubmitNeedsConfirmation || outcome.Ticket == nil {
				return nil
			}

			accept := assumeYes || askConfirmation(out, bufio.NewReader(cmd.InOrStdin()))
			confirmed := svc.Confirm(cmd.Context(), sessionID, outcome.Ticket.ID, accept)
			helpers.RenderConfirmOutcome(out, confirmed)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Accept the confirmation without prompting")
	cmd.Flags().StringVar(&sessionID, "session", DefaultSessionID, "Session identifier")
	cmd.Flags().StringVar(&userID, "user", "", "Acting user (defaults to config or $USER)")
	return cmd
}

func askConfirmation(out io.Writer, reader *bufio.Reader) bool {
	return helpers.PromptForYesNo(out, reader, "Proceed?", false)
}
