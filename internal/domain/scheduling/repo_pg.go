package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/badpower45/ttyyttmed/pkg/pagination"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const apptCols = `id, patient_id, doctor_id, patient_name, date, time, type, status, created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (*Appointment, error) {
	a := &Appointment{}
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.PatientName,
		&a.Date, &a.Time, &a.Type, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, patient_name, date, time, type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.PatientID, a.DoctorID, a.PatientName, a.Date, a.Time, a.Type, a.Status,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

// scopeClause renders the scope as a WHERE fragment with bind args.
func scopeClause(scope Scope) (string, []any) {
	switch {
	case scope.All:
		return "", nil
	case scope.DoctorID != nil:
		return " WHERE doctor_id = $1", []any{*scope.DoctorID}
	case scope.PatientID != nil:
		return " WHERE patient_id = $1", []any{*scope.PatientID}
	default:
		// An empty scope matches nothing rather than everything.
		return " WHERE false", nil
	}
}

func (r *repoPG) List(ctx context.Context, scope Scope, page pagination.Params) ([]Appointment, int, error) {
	where, args := scopeClause(scope)

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM appointments`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+apptCols+` FROM appointments`+where+
			` ORDER BY date DESC, time DESC `+page.SQL(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	appts := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		appts = append(appts, *a)
	}
	return appts, total, rows.Err()
}

func (r *repoPG) UpcomingForPatient(ctx context.Context, patientID uuid.UUID, fromDate string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+apptCols+` FROM appointments
		 WHERE patient_id = $1 AND status IN ($2, $3) AND date >= $4
		 ORDER BY date ASC, time ASC`,
		patientID, StatusPending, StatusConfirmed, fromDate)
	if err != nil {
		return nil, fmt.Errorf("upcoming appointments: %w", err)
	}
	defer rows.Close()

	appts := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *a)
	}
	return appts, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = $1, updated_at = now() WHERE id = $2`,
		status, id)
	return err
}
