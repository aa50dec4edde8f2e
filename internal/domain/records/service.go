package records

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
	"github.com/badpower45/ttyyttmed/internal/platform/auth"
)

const visitDateLayout = "2006-01-02"

// DoctorResolver maps the authoring user to their doctor profile id.
type DoctorResolver interface {
	DoctorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// PatientChecker verifies a record's subject exists before writing.
type PatientChecker interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo     Repository
	doctors  DoctorResolver
	patients PatientChecker
}

func NewService(repo Repository, doctors DoctorResolver, patients PatientChecker) *Service {
	return &Service{repo: repo, doctors: doctors, patients: patients}
}

// PrescriptionInput is one line of a new record's prescription list. The
// order of the slice is the order the lines are stored and returned in.
type PrescriptionInput struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

// CreateInput is the body of POST /medical-records.
type CreateInput struct {
	PatientID      uuid.UUID           `json:"patient_id"`
	VisitDate      string              `json:"visit_date"`
	ChiefComplaint string              `json:"chief_complaint"`
	Diagnosis      string              `json:"diagnosis"`
	TreatmentPlan  string              `json:"treatment_plan"`
	Attachments    []string            `json:"attachments"`
	Notes          string              `json:"notes"`
	Prescriptions  []PrescriptionInput `json:"prescriptions"`
}

func (in *CreateInput) validate() error {
	if in.PatientID == uuid.Nil {
		return apierr.E(apierr.Validation, "patient_id is required")
	}
	if _, err := time.Parse(visitDateLayout, in.VisitDate); err != nil {
		return apierr.E(apierr.Validation, "visit_date must be YYYY-MM-DD")
	}
	if in.Diagnosis == "" {
		return apierr.E(apierr.Validation, "diagnosis is required")
	}
	for i, p := range in.Prescriptions {
		if p.Name == "" {
			return apierr.E(apierr.Validation, fmt.Sprintf("prescription %d: name is required", i))
		}
	}
	return nil
}

// Create writes a visit record authored by the calling doctor. The record
// and its prescriptions land together or not at all.
func (s *Service) Create(ctx context.Context, p auth.Principal, in CreateInput) (*MedicalRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, apierr.E(apierr.Authentication, "invalid credentials")
	}
	doctorID, err := s.doctors.DoctorIDForUser(ctx, uid)
	if err != nil {
		return nil, apierr.E(apierr.NotFound, "doctor profile not found")
	}

	exists, err := s.patients.PatientExists(ctx, in.PatientID)
	if err != nil {
		return nil, fmt.Errorf("check patient: %w", err)
	}
	if !exists {
		return nil, apierr.E(apierr.NotFound, "patient not found")
	}

	rec := &MedicalRecord{
		PatientID:      in.PatientID,
		DoctorID:       doctorID,
		VisitDate:      in.VisitDate,
		ChiefComplaint: in.ChiefComplaint,
		Diagnosis:      in.Diagnosis,
		TreatmentPlan:  in.TreatmentPlan,
		Attachments:    in.Attachments,
		Notes:          in.Notes,
	}
	if rec.Attachments == nil {
		rec.Attachments = []string{}
	}
	for _, pi := range in.Prescriptions {
		rec.Prescriptions = append(rec.Prescriptions, Prescription{
			Name:         pi.Name,
			Dosage:       pi.Dosage,
			Frequency:    pi.Frequency,
			Duration:     pi.Duration,
			Instructions: pi.Instructions,
		})
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return rec, nil
}

// ListByPatient returns the patient's records newest visit first, each with
// its prescription lines.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]MedicalRecord, error) {
	exists, err := s.patients.PatientExists(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("check patient: %w", err)
	}
	if !exists {
		return nil, apierr.E(apierr.NotFound, "patient not found")
	}
	return s.repo.ListByPatient(ctx, patientID)
}
