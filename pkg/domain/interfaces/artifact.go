package interfaces

import (
	"context"
	"time"

	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

type ArtifactRepository interface {
	// Get retrieves the latest artifact for (employee, kind).
	// Returns a not-found error when no artifact has been stored.
	Get(ctx context.Context, employeeID types.EmployeeID, kind types.TaskKind) (*model.Artifact, error)

	// Put upserts the artifact keyed by (employee, kind), replacing
	// any previous entry.
	Put(ctx context.Context, artifact *model.Artifact) error
}

type EmailHistoryRepository interface {
	// Append adds a record to the append-only email history. Missing
	// ID and creation timestamp are assigned by the backend.
	Append(ctx context.Context, record *model.EmailRecord) (*model.EmailRecord, error)

	// ListByEmployee retrieves an employee's email history, newest first
	ListByEmployee(ctx context.Context, employeeID types.EmployeeID) ([]*model.EmailRecord, error)

	// MarkSent flags a history record as sent. Invoked by the
	// downstream delivery concern, never by the generation core.
	MarkSent(ctx context.Context, id model.EmailRecordID, sentAt time.Time) error
}

type NudgeRepository interface {
	// Put stores nudge rows, assigning IDs to new rows
	Put(ctx context.Context, rows []*model.NudgeRow) ([]*model.NudgeRow, error)

	// ListByEmployee retrieves an employee's nudges in insertion order
	ListByEmployee(ctx context.Context, employeeID types.EmployeeID) ([]*model.NudgeRow, error)
}
