package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/badpower45/ttyyttmed/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
	List(ctx context.Context, page pagination.Params) ([]Patient, int, error)
	Update(ctx context.Context, p *Patient) error
}
