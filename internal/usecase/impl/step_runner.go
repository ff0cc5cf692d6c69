package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"mlm/internal/domain/entity"
	"mlm/internal/domain/service"
	"mlm/internal/usecase"

	"github.com/google/uuid"
)

// workflowStep is one named unit of an admin workflow. A step may append
// warnings or mark itself skipped through the report it receives.
type workflowStep struct {
	name      string
	essential bool
	run       func(ctx context.Context, report *usecase.StepReport) error
}

// stepRunner executes steps in order. A failing best-effort step is recorded and
// the run continues; a failing essential step stops the run and every later step
// is reported as skipped.
type stepRunner struct {
	action  entity.OrderAction
	metrics service.WorkflowMetrics
	logger  *slog.Logger
}

func (r *stepRunner) run(ctx context.Context, result *usecase.WorkflowResult, steps []workflowStep) error {
	for i, step := range steps {
		report := usecase.StepReport{Name: step.name, Essential: step.essential}
		err := step.run(ctx, &report)

		switch {
		case err != nil:
			report.Outcome = entity.StepFailed
			report.Detail = err.Error()
		case report.Outcome == "" && len(report.Warnings) > 0:
			report.Outcome = entity.StepWarning
		case report.Outcome == "":
			report.Outcome = entity.StepOK
		}

		result.Steps = append(result.Steps, report)
		r.metrics.ObserveStep(string(r.action), step.name, string(report.Outcome))

		if err == nil {
			continue
		}

		r.logger.WarnContext(ctx, "Workflow step failed",
			slog.String("action", string(r.action)),
			slog.String("step", step.name),
			slog.Bool("essential", step.essential),
			slog.Any("error", err),
		)
		if step.essential {
			for _, rest := range steps[i+1:] {
				result.Steps = append(result.Steps, usecase.StepReport{
					Name:      rest.name,
					Essential: rest.essential,
					Outcome:   entity.StepSkipped,
					Detail:    "not run after " + step.name + " failed",
				})
				r.metrics.ObserveStep(string(r.action), rest.name, string(entity.StepSkipped))
			}

			return err
		}
	}

	return nil
}

// auditEntries converts the reports of a run into audit trail rows.
func auditEntries(orderID uuid.UUID, action entity.OrderAction, actorID uuid.UUID, reports []usecase.StepReport) []*entity.OrderAuditEntry {
	now := time.Now()
	entries := make([]*entity.OrderAuditEntry, 0, len(reports))
	for _, report := range reports {
		detail := report.Detail
		if len(report.Warnings) > 0 {
			if detail != "" {
				detail += "; "
			}
			detail += strings.Join(report.Warnings, "; ")
		}
		entries = append(entries, &entity.OrderAuditEntry{
			ID:        uuid.New(),
			OrderID:   orderID,
			Action:    action,
			Step:      report.Name,
			Essential: report.Essential,
			Outcome:   report.Outcome,
			Detail:    detail,
			ActorID:   actorID,
			CreatedAt: now,
		})
	}

	return entries
}
