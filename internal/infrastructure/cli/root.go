package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/panel-go/internal/app"
	"github.com/doeshing/panel-go/internal/infrastructure/cli/commands"
	"github.com/doeshing/panel-go/internal/infrastructure/cli/helpers"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	// Container, when set, is used instead of building one from the config file.
	Container *app.Container
}

// NewRootCmd wires the cobra root command. The application container is
// built lazily by the first subcommand that needs it; the returned closer
// releases it.
func NewRootCmd(opts Options) (*cobra.Command, io.Closer) {
	handle := &helpers.ContainerHandle{Options: app.Options{Verbose: opts.Verbose}}
	if opts.Container != nil {
		handle.Set(opts.Container)
	}

	root := &cobra.Command{
		Use:           "panel",
		Short:         "NGO admin panel command line",
		Long:          "panel turns Turkish or English admin requests into donation, task, report and settings operations.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&handle.Options.ConfigPath, "config", "", "Config file (default $PANEL_CONFIG or ~/.panel/config.yaml)")
	root.PersistentFlags().BoolVarP(&handle.Options.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging")

	root.AddCommand(
		commands.NewRunCommand(handle),
		commands.NewChatCommand(handle),
		commands.NewHistoryCommand(handle),
		commands.NewMonitorCommand(handle),
		commands.NewDoctorCommand(handle),
		commands.NewConfigCommand(handle),
		commands.NewVersionCommand(),
	)
	return root, handle
}
