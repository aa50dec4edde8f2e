package portal

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/badpower45/ttyyttmed/internal/domain/identity"
	"github.com/badpower45/ttyyttmed/internal/domain/patient"
	"github.com/badpower45/ttyyttmed/internal/domain/records"
	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
)

const (
	defaultExpiryDays = 30
	maxExpiryDays     = 365
	tokenBytes        = 32
)

// PatientSource supplies the patient a capability is bound to.
type PatientSource interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// AccountSource resolves the login profile behind a patient record, for the
// email shown on the portal. Guest patients have none.
type AccountSource interface {
	Profile(ctx context.Context, userID uuid.UUID) (identity.Profile, error)
}

// RecordSource supplies the patient's medical records for the portal view.
type RecordSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]records.MedicalRecord, error)
}

type Service struct {
	repo     Repository
	patients PatientSource
	accounts AccountSource
	recs     RecordSource
	baseURL  string
	now      func() time.Time
}

func NewService(repo Repository, patients PatientSource, accounts AccountSource, recs RecordSource, baseURL string) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		accounts: accounts,
		recs:     recs,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// TokenGrant is the staff-facing result of generating a portal capability.
type TokenGrant struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	PortalURL string    `json:"portal_url"`
}

// GenerateToken mints a fresh capability for the patient. Each call
// produces an independent token; earlier tokens stay live until they expire
// or are deactivated.
func (s *Service) GenerateToken(ctx context.Context, patientID uuid.UUID, expiresInDays int) (*TokenGrant, error) {
	if expiresInDays == 0 {
		expiresInDays = defaultExpiryDays
	}
	if expiresInDays < 1 || expiresInDays > maxExpiryDays {
		return nil, apierr.E(apierr.Validation,
			fmt.Sprintf("expires_in_days must be between 1 and %d", maxExpiryDays))
	}
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	a := &PortalAccess{
		Token:     token,
		PatientID: patientID,
		ExpiresAt: s.now().Add(time.Duration(expiresInDays) * 24 * time.Hour),
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("store portal access: %w", err)
	}
	return &TokenGrant{
		Token:     token,
		ExpiresAt: a.ExpiresAt,
		PortalURL: s.baseURL + "/portal/" + token,
	}, nil
}

// PortalPatient is the reduced patient projection visible through the
// portal. Staff-internal fields, other patients, and appointments never
// appear here.
type PortalPatient struct {
	Name            string   `json:"name"`
	Email           string   `json:"email,omitempty"`
	Age             int      `json:"age"`
	Gender          string   `json:"gender"`
	BloodType       string   `json:"blood_type"`
	ChronicDiseases []string `json:"chronic_diseases"`
	Allergies       []string `json:"allergies"`
}

// ValidateToken is the single gate for unauthenticated portal reads. A
// token that does not exist, was deactivated, or has expired fails with one
// indistinguishable denial.
func (s *Service) ValidateToken(ctx context.Context, token string) (*PortalPatient, error) {
	a, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, apierr.PortalAccessDenied()
	}
	if !a.Valid(s.now()) {
		return nil, apierr.PortalAccessDenied()
	}

	p, err := s.patients.Get(ctx, a.PatientID)
	if err != nil {
		return nil, apierr.PortalAccessDenied()
	}

	view := &PortalPatient{
		Name:            p.Name,
		Age:             p.Age,
		Gender:          p.Gender,
		BloodType:       p.BloodType,
		ChronicDiseases: p.ChronicDiseases,
		Allergies:       p.Allergies,
	}
	if p.UserID != nil {
		if profile, err := s.accounts.Profile(ctx, *p.UserID); err == nil {
			view.Email = profile.Email
		}
	}
	return view, nil
}

// PortalView is the full portal payload: the reduced patient projection
// plus the patient's medical records, newest first.
type PortalView struct {
	Patient        *PortalPatient          `json:"patient"`
	MedicalRecords []records.MedicalRecord `json:"medical_records"`
}

// RecordsByToken returns the portal view behind a token. Access control is
// entirely ValidateToken's.
func (s *Service) RecordsByToken(ctx context.Context, token string) (*PortalView, error) {
	view, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, apierr.PortalAccessDenied()
	}
	recs, err := s.recs.ListByPatient(ctx, a.PatientID)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return &PortalView{Patient: view, MedicalRecords: recs}, nil
}

// DeactivateToken kills a capability. Staff-facing, so an unknown token is
// reported honestly; deactivating twice is fine.
func (s *Service) DeactivateToken(ctx context.Context, token string) error {
	if _, err := s.repo.GetByToken(ctx, token); err != nil {
		return apierr.E(apierr.NotFound, "token not found")
	}
	if err := s.repo.Deactivate(ctx, token); err != nil {
		return fmt.Errorf("deactivate token: %w", err)
	}
	return nil
}
