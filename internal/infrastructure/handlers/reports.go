package handlers

import (
	"context"
	"fmt"

	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/ports"
)

// ModuleReports is the target module served by ReportBuilder.
const ModuleReports = "reports"

// ReportBuilder summarizes the donation ledger and task board.
type ReportBuilder struct {
	donations *DonationLedger
	tasks     *TaskBoard
	clock     Clock
}

// NewReportBuilder builds a report handler over the given sources.
func NewReportBuilder(donations *DonationLedger, tasks *TaskBoard, clock Clock) *ReportBuilder {
	return &ReportBuilder{donations: donations, tasks: tasks, clock: clockOrNow(clock)}
}

// Handle implements ports.Handler.
func (r *ReportBuilder) Handle(ctx context.Context, req domain.HandlerRequest) (domain.HandlerResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.HandlerResponse{}, err
	}
	if req.ActionType != "report.generate" {
		return domain.HandlerResponse{}, unsupportedAction(ModuleReports, req.ActionType)
	}

	period := req.Parameters["period"]
	if period == "" {
		period = "all time"
	}
	donations := r.donations.Snapshot()
	total, open := r.tasks.Counts()

	summary := "no donations"
	if len(donations) > 0 {
		summary = fmt.Sprintf("%d donations totalling %s", len(donations), formatTotals(Totals(donations)))
	}
	return domain.HandlerResponse{
		Message: fmt.Sprintf("Report (%s): %s; %d tasks, %d open", period, summary, total, open),
		Data: map[string]any{
			"period":       period,
			"locale":       req.Parameters["locale"],
			"generated_at": r.clock().Format(domain.TimestampFormat),
			"donations":    len(donations),
			"totals":       Totals(donations),
			"tasks_total":  total,
			"tasks_open":   open,
		},
		NextSteps: []string{"send the report to the board"},
	}, nil
}

var _ ports.Handler = (*ReportBuilder)(nil)
