package identity

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	// First returns the earliest-registered doctor. In a single-doctor
	// clinic this is the clinic's doctor.
	First(ctx context.Context) (*Doctor, error)
}
