package portal

import (
	"time"

	"github.com/google/uuid"
)

// PortalAccess maps to the portal_access table. A row is a bearer
// capability: whoever presents the token reads the bound patient's portal
// view. Expiry is judged against ExpiresAt on every use, never stored as a
// state change; IsActive only ever moves from true to false.
type PortalAccess struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Token     string    `db:"token" json:"token"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Valid reports whether the capability grants access at the given instant.
// A token expires exactly at ExpiresAt.
func (a *PortalAccess) Valid(now time.Time) bool {
	return a.IsActive && now.Before(a.ExpiresAt)
}
