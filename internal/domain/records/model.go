package records

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord maps to the medical_records table. Records are immutable
// once written; corrections are new records.
type MedicalRecord struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	PatientID      uuid.UUID      `db:"patient_id" json:"patient_id"`
	DoctorID       uuid.UUID      `db:"doctor_id" json:"doctor_id"`
	VisitDate      string         `db:"visit_date" json:"visit_date"`
	ChiefComplaint string         `db:"chief_complaint" json:"chief_complaint"`
	Diagnosis      string         `db:"diagnosis" json:"diagnosis"`
	TreatmentPlan  string         `db:"treatment_plan" json:"treatment_plan"`
	Attachments    []string       `db:"attachments" json:"attachments"`
	Notes          string         `db:"notes" json:"notes"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	Prescriptions  []Prescription `json:"prescriptions"`
}

// Prescription is one ordered line of a record's prescription list.
// Position preserves the order the doctor wrote them in.
type Prescription struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RecordID     uuid.UUID `db:"record_id" json:"record_id"`
	Position     int       `db:"position" json:"position"`
	Name         string    `db:"name" json:"name"`
	Dosage       string    `db:"dosage" json:"dosage"`
	Frequency    string    `db:"frequency" json:"frequency"`
	Duration     string    `db:"duration" json:"duration"`
	Instructions string    `db:"instructions" json:"instructions"`
}
