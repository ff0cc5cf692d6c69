package entity

import (
	"time"

	"github.com/google/uuid"
)

// OrderAction names the admin workflow that produced an audit entry.
type OrderAction string

const (
	OrderActionApprove OrderAction = "approve"
	OrderActionReject  OrderAction = "reject"
)

// StepOutcome is the result of one workflow step.
type StepOutcome string

const (
	StepOK      StepOutcome = "ok"
	StepWarning StepOutcome = "warning"
	StepFailed  StepOutcome = "failed"
	StepSkipped StepOutcome = "skipped"
)

// OrderAuditEntry records what happened to one step of an approval or rejection,
// so best-effort failures stay visible to admins.
type OrderAuditEntry struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Action    OrderAction
	Step      string
	Essential bool
	Outcome   StepOutcome
	Detail    string
	ActorID   uuid.UUID
	CreatedAt time.Time
}
