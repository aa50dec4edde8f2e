package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Every booking starts PENDING regardless of what the
// caller submitted; COMPLETED and CANCELLED are terminal.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Appointment types.
const (
	TypeGeneral   = "General"
	TypeFollowUp  = "Follow-up"
	TypeEmergency = "Emergency"
)

// Appointment maps to the appointments table. PatientName is a snapshot
// taken at booking time and is never re-synced when the patient record
// changes afterwards.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	Date        string    `db:"date" json:"date"`
	Time        string    `db:"time" json:"time"`
	Type        string    `db:"type" json:"type"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidType reports whether t is a known appointment type.
func ValidType(t string) bool {
	switch t {
	case TypeGeneral, TypeFollowUp, TypeEmergency:
		return true
	}
	return false
}

var statusTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether an appointment may move from one status to
// another. Terminal statuses have no outgoing transitions.
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
