package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/badpower45/ttyyttmed/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// List returns appointments visible under the scope, newest date first,
	// plus the total count for pagination.
	List(ctx context.Context, scope Scope, page pagination.Params) ([]Appointment, int, error)
	// UpcomingForPatient returns PENDING and CONFIRMED appointments on or
	// after the given date, soonest first.
	UpcomingForPatient(ctx context.Context, patientID uuid.UUID, fromDate string) ([]Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
