package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/badpower45/ttyyttmed/internal/domain/records"
	"github.com/badpower45/ttyyttmed/internal/domain/scheduling"
	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
	"github.com/badpower45/ttyyttmed/internal/platform/auth"
	"github.com/badpower45/ttyyttmed/pkg/pagination"
)

// RecordSource supplies a patient's medical records for the history view.
type RecordSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]records.MedicalRecord, error)
}

// AppointmentSource supplies a patient's upcoming appointments for the
// history view.
type AppointmentSource interface {
	UpcomingForPatient(ctx context.Context, patientID uuid.UUID) ([]scheduling.Appointment, error)
}

type Service struct {
	repo  Repository
	recs  RecordSource
	appts AppointmentSource
}

func NewService(repo Repository, recs RecordSource, appts AppointmentSource) *Service {
	return &Service{repo: repo, recs: recs, appts: appts}
}

// CreateInput is the body of POST /patients.
type CreateInput struct {
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	Name            string     `json:"name"`
	Age             int        `json:"age"`
	Gender          string     `json:"gender"`
	BloodType       string     `json:"blood_type"`
	ChronicDiseases []string   `json:"chronic_diseases"`
	Allergies       []string   `json:"allergies"`
}

func validateDemographics(name string, age int) error {
	if name == "" {
		return apierr.E(apierr.Validation, "name is required")
	}
	if age < 0 || age > 150 {
		return apierr.E(apierr.Validation, "age must be between 0 and 150")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Patient, error) {
	if err := validateDemographics(in.Name, in.Age); err != nil {
		return nil, err
	}
	p := &Patient{
		UserID:          in.UserID,
		Name:            in.Name,
		Age:             in.Age,
		Gender:          in.Gender,
		BloodType:       in.BloodType,
		ChronicDiseases: in.ChronicDiseases,
		Allergies:       in.Allergies,
	}
	if p.ChronicDiseases == nil {
		p.ChronicDiseases = []string{}
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

// CreateGuest registers a walk-in patient with no login. Used by the public
// booking path.
func (s *Service) CreateGuest(ctx context.Context, name string, age int, gender string) (uuid.UUID, error) {
	p, err := s.Create(ctx, CreateInput{Name: name, Age: age, Gender: gender})
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

func (s *Service) List(ctx context.Context, page pagination.Params) ([]Patient, int, error) {
	return s.repo.List(ctx, page)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.E(apierr.NotFound, "patient not found")
	}
	return p, nil
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name            *string   `json:"name,omitempty"`
	Age             *int      `json:"age,omitempty"`
	Gender          *string   `json:"gender,omitempty"`
	BloodType       *string   `json:"blood_type,omitempty"`
	ChronicDiseases *[]string `json:"chronic_diseases,omitempty"`
	Allergies       *[]string `json:"allergies,omitempty"`
}

func (in *UpdateInput) clinical() bool {
	return in.ChronicDiseases != nil || in.Allergies != nil
}

// Update applies a partial update. Staff may change anything; a PATIENT
// caller may only update their own record and only its demographic fields.
func (s *Service) Update(ctx context.Context, caller auth.Principal, id uuid.UUID, in UpdateInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.E(apierr.NotFound, "patient not found")
	}

	if caller.Role == auth.RolePatient {
		if p.UserID == nil || p.UserID.String() != caller.UserID {
			return nil, apierr.E(apierr.Authorization, "patients may only update their own record")
		}
		if in.clinical() {
			return nil, apierr.E(apierr.Authorization, "clinical fields are staff-only")
		}
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.BloodType != nil {
		p.BloodType = *in.BloodType
	}
	if in.ChronicDiseases != nil {
		p.ChronicDiseases = *in.ChronicDiseases
	}
	if in.Allergies != nil {
		p.Allergies = *in.Allergies
	}

	if err := validateDemographics(p.Name, p.Age); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

// History is the composite clinical view of a patient: the demographic
// snapshot, every medical record newest visit first, and the upcoming
// PENDING and CONFIRMED appointments soonest first.
type History struct {
	Patient              *Patient                 `json:"patient"`
	MedicalRecords       []records.MedicalRecord  `json:"medical_records"`
	UpcomingAppointments []scheduling.Appointment `json:"upcoming_appointments"`
}

func (s *Service) History(ctx context.Context, id uuid.UUID) (*History, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.E(apierr.NotFound, "patient not found")
	}
	recs, err := s.recs.ListByPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	appts, err := s.appts.UpcomingForPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	return &History{Patient: p, MedicalRecords: recs, UpcomingAppointments: appts}, nil
}

// NameByID returns the patient's current name. The scheduler snapshots it
// onto new appointments.
func (s *Service) NameByID(ctx context.Context, id uuid.UUID) (string, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", apierr.E(apierr.NotFound, "patient not found")
	}
	return p.Name, nil
}

// PatientExists reports whether a patient id is known.
func (s *Service) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return false, nil
	}
	return true, nil
}

// PatientIDForUser resolves the patient record owned by a user account.
func (s *Service) PatientIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, apierr.E(apierr.NotFound, "patient profile not found")
	}
	return p.ID, nil
}
