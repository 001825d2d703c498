package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/doeshing/panel-go/internal/infrastructure/cli/helpers"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(handle *helpers.ContainerHandle) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, handlers and storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, handle)
		},
	}
}

func runDoctorDiagnostics(cmd *cobra.Command, handle *helpers.ContainerHandle) error {
	container, err := handle.Get(cmd.Context())
	if err != nil {
		return err
	}
	if container.DoctorService == nil {
		return errors.New(ErrDoctorServiceUnavailable)
	}

	report, err := container.DoctorService.Run(cmd.Context())
	// The report is shown even when checks fail.
	helpers.RenderDoctorReport(cmd.OutOrStdout(), report)
	if err != nil {
		return errors.Wrap(err, "diagnostics completed with errors")
	}
	if report.Failed() {
		return errors.New("diagnostics found errors")
	}
	return nil
}
