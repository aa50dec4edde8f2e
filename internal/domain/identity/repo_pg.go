package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

const userCols = `id, email, password_hash, role, name, created_at`

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, name)
		VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.Name,
	)
	return err
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u := &User{}
	err := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

type doctorRepoPG struct {
	pool *pgxpool.Pool
}

func NewDoctorRepo(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

const doctorCols = `id, user_id, name, specialization, created_at`

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, user_id, name, specialization)
		VALUES ($1, $2, $3, $4)`,
		d.ID, d.UserID, d.Name, d.Specialization,
	)
	return err
}

func (r *doctorRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	d := &Doctor{}
	err := r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE user_id = $1`, userID).
		Scan(&d.ID, &d.UserID, &d.Name, &d.Specialization, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *doctorRepoPG) First(ctx context.Context) (*Doctor, error) {
	d := &Doctor{}
	err := r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors ORDER BY created_at ASC LIMIT 1`).
		Scan(&d.ID, &d.UserID, &d.Name, &d.Specialization, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d := &Doctor{}
	err := r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id).
		Scan(&d.ID, &d.UserID, &d.Name, &d.Specialization, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}
