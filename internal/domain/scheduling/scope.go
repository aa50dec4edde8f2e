package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/badpower45/ttyyttmed/internal/platform/auth"
)

// Scope restricts which appointments a caller may read. It is computed from
// the verified principal before any query runs, so the access rule is an
// explicit value that can be inspected and tested on its own.
type Scope struct {
	// All grants an unfiltered view. ADMIN and RECEPTIONIST callers.
	All bool
	// DoctorID, when set, limits the view to that doctor's appointments.
	DoctorID *uuid.UUID
	// PatientID, when set, limits the view to that patient's appointments.
	PatientID *uuid.UUID
}

// ProfileResolver maps a user id to the doctor or patient profile it owns.
// Wired in main from the identity and patient packages.
type ProfileResolver interface {
	DoctorIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	PatientIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// ScopeFor computes the read scope for a principal. DOCTOR sees only
// appointments assigned to their own doctor profile, PATIENT only their own
// bookings, ADMIN and RECEPTIONIST see everything.
func ScopeFor(ctx context.Context, p auth.Principal, resolver ProfileResolver) (Scope, error) {
	switch p.Role {
	case auth.RoleAdmin, auth.RoleReceptionist:
		return Scope{All: true}, nil
	case auth.RoleDoctor:
		uid, err := uuid.Parse(p.UserID)
		if err != nil {
			return Scope{}, fmt.Errorf("parse principal id: %w", err)
		}
		docID, err := resolver.DoctorIDForUser(ctx, uid)
		if err != nil {
			return Scope{}, err
		}
		return Scope{DoctorID: &docID}, nil
	case auth.RolePatient:
		uid, err := uuid.Parse(p.UserID)
		if err != nil {
			return Scope{}, fmt.Errorf("parse principal id: %w", err)
		}
		patID, err := resolver.PatientIDForUser(ctx, uid)
		if err != nil {
			return Scope{}, err
		}
		return Scope{PatientID: &patID}, nil
	default:
		return Scope{}, fmt.Errorf("unknown role %q", p.Role)
	}
}

// Allows reports whether an appointment is visible under the scope.
func (s Scope) Allows(a *Appointment) bool {
	if s.All {
		return true
	}
	if s.DoctorID != nil && a.DoctorID == *s.DoctorID {
		return true
	}
	if s.PatientID != nil && a.PatientID == *s.PatientID {
		return true
	}
	return false
}
