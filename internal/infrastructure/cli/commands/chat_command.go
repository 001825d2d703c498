package commands

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/panel-go/internal/application/command"
	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/panel-go/internal/infrastructure/session"
)

// NewChatCommand creates the interactive chat command
func NewChatCommand(handle *helpers.ContainerHandle) *cobra.Command {
	var (
		sessionID string
		userID    string
		monitor   bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		Long:  "Reads one command per line. Risky commands ask for y/n. Type exit to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := handle.Get(cmd.Context())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if userID != "" {
				ctx = session.WithUser(ctx, userID)
			}
			user, _ := container.Sessions.Current(ctx)

			chat := &chatLoop{
				svc:       container.CommandService,
				sessionID: sessionID,
				userID:    user,
				in:        bufio.NewReader(cmd.InOrStdin()),
				out:       cmd.OutOrStdout(),
			}
			if monitor {
				if err := chat.svc.StartMonitoring(user, domain.MonitorRealtime); err != nil {
					return err
				}
				defer chat.svc.StopMonitoring(user, domain.MonitorRealtime)
			}
			chat.run(ctx)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", DefaultSessionID, "Session identifier")
	cmd.Flags().StringVar(&userID, "user", "", "Acting user (defaults to config or $USER)")
	cmd.Flags().BoolVar(&monitor, "monitor", false, "Print realtime insights between commands")
	return cmd
}

type chatLoop struct {
	svc       *command.Service
	sessionID string
	userID    string
	in        *bufio.Reader
	out       io.Writer
}

func (c *chatLoop) run(ctx context.Context) {
	for ctx.Err() == nil {
		line, ok := helpers.ReadLine(c.out, c.in, chatPrompt)
		if !ok {
			return
		}
		switch strings.ToLower(line) {
		case "":
			continue
		case chatExit, chatQuit:
			return
		}
		c.handle(ctx, line)
		helpers.RenderInsights(c.out, c.svc.PendingInsights(c.userID))
	}
}

func (c *chatLoop) handle(ctx context.Context, text string) {
	outcome := c.svc.SubmitCommand(ctx, command.SubmitRequest{
		SessionID: c.sessionID,
		UserID:    c.userID,
		Text:      text,
	})
	helpers.RenderSubmitOutcome(c.out, outcome, time.Now())
	if outcome.Kind != domain.SubmitNeedsConfirmation || outcome.Ticket == nil {
		return
	}

	accept := askConfirmation(c.out, c.in)
	helpers.RenderConfirmOutcome(c.out, c.svc.Confirm(ctx, c.sessionID, outcome.Ticket.ID, accept))
}
