package impl

import (
	"context"
	"testing"

	"mlm/internal/domain/entity"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepRunner_Run(t *testing.T) {
	var ran []string
	step := func(name string, essential bool, run func(report *usecase.StepReport) error) workflowStep {
		return workflowStep{name: name, essential: essential, run: func(_ context.Context, report *usecase.StepReport) error {
			ran = append(ran, name)

			return run(report)
		}}
	}

	tests := []struct {
		name     string
		steps    []workflowStep
		wantErr  bool
		wantRan  []string
		outcomes []entity.StepOutcome
	}{
		{
			name: "all ok",
			steps: []workflowStep{
				step("a", false, func(*usecase.StepReport) error { return nil }),
				step("b", true, func(*usecase.StepReport) error { return nil }),
			},
			wantRan:  []string{"a", "b"},
			outcomes: []entity.StepOutcome{entity.StepOK, entity.StepOK},
		},
		{
			name: "best-effort failure continues",
			steps: []workflowStep{
				step("a", false, func(*usecase.StepReport) error { return errors.New("boom") }),
				step("b", false, func(r *usecase.StepReport) error {
					r.Warnings = append(r.Warnings, "partial")

					return nil
				}),
				step("c", false, func(r *usecase.StepReport) error {
					r.Outcome = entity.StepSkipped

					return nil
				}),
			},
			wantRan:  []string{"a", "b", "c"},
			outcomes: []entity.StepOutcome{entity.StepFailed, entity.StepWarning, entity.StepSkipped},
		},
		{
			name: "essential failure skips the rest",
			steps: []workflowStep{
				step("a", false, func(*usecase.StepReport) error { return nil }),
				step("b", true, func(*usecase.StepReport) error { return errors.New("conflict") }),
				step("c", false, func(*usecase.StepReport) error { return nil }),
				step("d", false, func(*usecase.StepReport) error { return nil }),
			},
			wantErr:  true,
			wantRan:  []string{"a", "b"},
			outcomes: []entity.StepOutcome{entity.StepOK, entity.StepFailed, entity.StepSkipped, entity.StepSkipped},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran = nil
			metrics := newRecordingMetrics()
			runner := &stepRunner{action: entity.OrderActionApprove, metrics: metrics, logger: newDiscardLogger()}
			result := &usecase.WorkflowResult{}

			err := runner.run(context.Background(), result, tt.steps)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantRan, ran)
			require.Len(t, result.Steps, len(tt.outcomes))
			for i, want := range tt.outcomes {
				assert.Equal(t, want, result.Steps[i].Outcome, result.Steps[i].Name)
			}

			total := 0
			for _, n := range metrics.steps {
				total += n
			}
			assert.Equal(t, len(tt.steps), total)
		})
	}
}

func TestStepRunner_SkippedDetailNamesFailedStep(t *testing.T) {
	runner := &stepRunner{action: entity.OrderActionReject, metrics: newRecordingMetrics(), logger: newDiscardLogger()}
	result := &usecase.WorkflowResult{}

	err := runner.run(context.Background(), result, []workflowStep{
		{name: StepMarkRejected, essential: true, run: func(context.Context, *usecase.StepReport) error { return errors.New("gone") }},
		{name: StepPublishEvent, run: func(context.Context, *usecase.StepReport) error { return nil }},
	})
	require.EqualError(t, err, "gone")

	report, ok := result.Step(StepPublishEvent)
	require.True(t, ok)
	assert.Equal(t, "not run after mark_rejected failed", report.Detail)
	assert.Empty(t, result.Warnings())
}

func TestAuditEntries_JoinsWarnings(t *testing.T) {
	orderID := uuid.New()
	actorID := uuid.New()

	entries := auditEntries(orderID, entity.OrderActionApprove, actorID, []usecase.StepReport{
		{Name: StepSettleStock, Essential: true, Outcome: entity.StepWarning, Detail: "settled", Warnings: []string{"w1", "w2"}},
		{Name: StepPublishEvent, Outcome: entity.StepOK},
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "settled; w1; w2", entries[0].Detail)
	assert.True(t, entries[0].Essential)
	assert.Equal(t, orderID, entries[1].OrderID)
	assert.Equal(t, actorID, entries[1].ActorID)
	assert.Equal(t, entity.OrderActionApprove, entries[1].Action)
	assert.Empty(t, entries[1].Detail)
}
