package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. UserID is nil for guest patients
// created by the public booking form; such patients have no login.
type Patient struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	UserID          *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Name            string     `db:"name" json:"name"`
	Age             int        `db:"age" json:"age"`
	Gender          string     `db:"gender" json:"gender"`
	BloodType       string     `db:"blood_type" json:"blood_type"`
	ChronicDiseases []string   `db:"chronic_diseases" json:"chronic_diseases"`
	Allergies       []string   `db:"allergies" json:"allergies"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
