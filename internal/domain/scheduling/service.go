package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
	"github.com/badpower45/ttyyttmed/internal/platform/auth"
	"github.com/badpower45/ttyyttmed/pkg/pagination"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// PatientDirectory is the slice of the patient registry the scheduler needs:
// snapshotting names at booking time and creating guest patients for the
// public booking path. Wired in main.
type PatientDirectory interface {
	NameByID(ctx context.Context, id uuid.UUID) (string, error)
	CreateGuest(ctx context.Context, name string, age int, gender string) (uuid.UUID, error)
}

// DoctorDirectory resolves the clinic's doctor for bookings that do not
// name one.
type DoctorDirectory interface {
	ClinicDoctorID(ctx context.Context) (uuid.UUID, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	doctors  DoctorDirectory
	resolver ProfileResolver
	now      func() time.Time
}

func NewService(repo Repository, patients PatientDirectory, doctors DoctorDirectory, resolver ProfileResolver) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		resolver: resolver,
		now:      time.Now,
	}
}

// BookInput is the body of POST /appointments. Status is deliberately
// absent: a submitted status is never honored.
type BookInput struct {
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id,omitempty"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Type      string    `json:"type"`
}

func (in *BookInput) validate() error {
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return apierr.E(apierr.Validation, "date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(timeLayout, in.Time); err != nil {
		return apierr.E(apierr.Validation, "time must be HH:MM")
	}
	if in.Type == "" {
		in.Type = TypeGeneral
	}
	if !ValidType(in.Type) {
		return apierr.E(apierr.Validation, fmt.Sprintf("invalid appointment type: %s", in.Type))
	}
	return nil
}

// Book creates an appointment. The stored status is always PENDING no
// matter what the caller sent, and a PATIENT caller can only book for their
// own patient record.
func (s *Service) Book(ctx context.Context, p auth.Principal, in BookInput) (*Appointment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if p.Role == auth.RolePatient {
		uid, err := uuid.Parse(p.UserID)
		if err != nil {
			return nil, apierr.E(apierr.Authentication, "invalid credentials")
		}
		own, err := s.resolver.PatientIDForUser(ctx, uid)
		if err != nil {
			return nil, apierr.E(apierr.NotFound, "patient profile not found")
		}
		in.PatientID = own
	}
	if in.PatientID == uuid.Nil {
		return nil, apierr.E(apierr.Validation, "patient_id is required")
	}

	name, err := s.patients.NameByID(ctx, in.PatientID)
	if err != nil {
		return nil, apierr.E(apierr.NotFound, "patient not found")
	}

	return s.book(ctx, in, name)
}

// PublicBookingInput is the body of the unauthenticated POST /bookings.
type PublicBookingInput struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Type   string `json:"type"`
}

// BookPublic serves the walk-in booking form. It creates a guest patient
// record and books an appointment for it; the result is PENDING like every
// other booking.
func (s *Service) BookPublic(ctx context.Context, in PublicBookingInput) (*Appointment, error) {
	if in.Name == "" {
		return nil, apierr.E(apierr.Validation, "name is required")
	}
	bi := BookInput{Date: in.Date, Time: in.Time, Type: in.Type}
	if err := bi.validate(); err != nil {
		return nil, err
	}

	patientID, err := s.patients.CreateGuest(ctx, in.Name, in.Age, in.Gender)
	if err != nil {
		return nil, fmt.Errorf("create guest patient: %w", err)
	}
	bi.PatientID = patientID

	return s.book(ctx, bi, in.Name)
}

func (s *Service) book(ctx context.Context, in BookInput, patientName string) (*Appointment, error) {
	doctorID := in.DoctorID
	if doctorID == uuid.Nil {
		var err error
		doctorID, err = s.doctors.ClinicDoctorID(ctx)
		if err != nil {
			return nil, apierr.E(apierr.NotFound, "no doctor available")
		}
	}

	a := &Appointment{
		PatientID:   in.PatientID,
		DoctorID:    doctorID,
		PatientName: patientName,
		Date:        in.Date,
		Time:        in.Time,
		Type:        in.Type,
		Status:      StatusPending,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return a, nil
}

// ListForCaller returns the appointments the principal may see. The access
// scope is computed from the principal first and handed to the repository
// as an explicit value.
func (s *Service) ListForCaller(ctx context.Context, p auth.Principal, page pagination.Params) ([]Appointment, int, error) {
	scope, err := ScopeFor(ctx, p, s.resolver)
	if err != nil {
		return nil, 0, apierr.E(apierr.NotFound, "profile not found for caller")
	}
	return s.repo.List(ctx, scope, page)
}

// UpdateStatus moves an appointment through the status machine. Unknown
// target statuses are validation errors; disallowed transitions are
// conflicts so callers can tell them apart.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, apierr.E(apierr.Validation, fmt.Sprintf("invalid status: %s", status))
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.E(apierr.NotFound, "appointment not found")
	}
	if !CanTransition(a.Status, status) {
		return nil, apierr.E(apierr.Conflict,
			fmt.Sprintf("cannot transition from %s to %s", a.Status, status))
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	a.Status = status
	return a, nil
}

// UpcomingForPatient returns the patient's PENDING and CONFIRMED
// appointments from today onward, soonest first. Used by the patient
// history view.
func (s *Service) UpcomingForPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	today := s.now().Format(dateLayout)
	return s.repo.UpcomingForPatient(ctx, patientID, today)
}
