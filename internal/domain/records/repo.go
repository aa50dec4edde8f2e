package records

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists the record and all of its prescription lines
	// atomically. Callers must never be able to observe the record without
	// its prescriptions.
	Create(ctx context.Context, r *MedicalRecord) error
	// ListByPatient returns records newest visit first; records sharing a
	// visit date come most recently created first. Each record carries its
	// prescription lines in position order.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]MedicalRecord, error)
}
