package portal

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const accessCols = `id, token, patient_id, expires_at, is_active, created_at`

func (r *repoPG) Create(ctx context.Context, a *PortalAccess) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO portal_access (id, token, patient_id, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Token, a.PatientID, a.ExpiresAt, a.IsActive,
	)
	return err
}

func (r *repoPG) GetByToken(ctx context.Context, token string) (*PortalAccess, error) {
	a := &PortalAccess{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+accessCols+` FROM portal_access WHERE token = $1`, token).
		Scan(&a.ID, &a.Token, &a.PatientID, &a.ExpiresAt, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repoPG) Deactivate(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE portal_access SET is_active = false WHERE token = $1`, token)
	return err
}
