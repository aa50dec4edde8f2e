package identity

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
	"github.com/badpower45/ttyyttmed/internal/platform/auth"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type Service struct {
	users   UserRepository
	doctors DoctorRepository
	tokens  *auth.TokenIssuer
}

func NewService(users UserRepository, doctors DoctorRepository, tokens *auth.TokenIssuer) *Service {
	return &Service{users: users, doctors: doctors, tokens: tokens}
}

// RegisterInput is the schema-validated body of POST /auth/register.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

func (in *RegisterInput) validate() error {
	if !emailPattern.MatchString(in.Email) {
		return apierr.E(apierr.Validation, "invalid email address")
	}
	if len(in.Password) < 6 {
		return apierr.E(apierr.Validation, "password must be at least 6 characters")
	}
	if in.Name == "" {
		return apierr.E(apierr.Validation, "name is required")
	}
	if in.Role == "" {
		in.Role = auth.RolePatient
	}
	if !auth.ValidRole(in.Role) {
		return apierr.E(apierr.Validation, fmt.Sprintf("invalid role: %s", in.Role))
	}
	return nil
}

// Register creates a user, storing only the bcrypt hash of the password.
// A duplicate email is a conflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Profile, error) {
	if err := in.validate(); err != nil {
		return Profile{}, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return Profile{}, apierr.E(apierr.Conflict, "email already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Name:         in.Name,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return Profile{}, fmt.Errorf("create user: %w", err)
	}

	// Doctors get a profile row so records and appointments can reference
	// a doctor id rather than a user id.
	if u.Role == auth.RoleDoctor {
		d := &Doctor{UserID: u.ID, Name: u.Name, Specialization: "General Practice"}
		if err := s.doctors.Create(ctx, d); err != nil {
			return Profile{}, fmt.Errorf("create doctor profile: %w", err)
		}
	}

	return u.Profile(), nil
}

// Authenticate verifies credentials. Unknown email and wrong password
// produce the identical generic failure so callers cannot probe which
// addresses are registered.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Profile, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return Profile{}, apierr.E(apierr.Authentication, "invalid credentials")
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return Profile{}, apierr.E(apierr.Authentication, "invalid credentials")
	}
	return u.Profile(), nil
}

// IssueSession returns a signed session token for the given profile.
func (s *Service) IssueSession(p Profile) (string, error) {
	return s.tokens.Issue(p.ID.String(), p.Role, p.Name)
}

// Profile returns the public profile for a user id.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, apierr.E(apierr.NotFound, "user not found")
	}
	return u.Profile(), nil
}

// DoctorByUserID resolves the doctor profile owned by a user. Used for
// appointment scoping and medical-record authorship.
func (s *Service) DoctorByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	d, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apierr.E(apierr.NotFound, "doctor profile not found")
	}
	return d, nil
}

// ClinicDoctorID returns the id of the clinic's doctor, defined as the
// earliest-registered one. Bookings that name no doctor land here.
func (s *Service) ClinicDoctorID(ctx context.Context) (uuid.UUID, error) {
	d, err := s.doctors.First(ctx)
	if err != nil {
		return uuid.Nil, apierr.E(apierr.NotFound, "no doctor registered")
	}
	return d.ID, nil
}

// DoctorByID resolves a doctor profile by its own id.
func (s *Service) DoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.E(apierr.NotFound, "doctor profile not found")
	}
	return d, nil
}
