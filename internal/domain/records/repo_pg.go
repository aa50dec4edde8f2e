package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rec.ID = uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO medical_records
			(id, patient_id, doctor_id, visit_date, chief_complaint, diagnosis, treatment_plan, attachments, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.PatientID, rec.DoctorID, rec.VisitDate, rec.ChiefComplaint,
		rec.Diagnosis, rec.TreatmentPlan, rec.Attachments, rec.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	for i := range rec.Prescriptions {
		p := &rec.Prescriptions[i]
		p.ID = uuid.New()
		p.RecordID = rec.ID
		p.Position = i
		_, err = tx.Exec(ctx, `
			INSERT INTO prescriptions (id, record_id, position, name, dosage, frequency, duration, instructions)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, p.RecordID, p.Position, p.Name, p.Dosage, p.Frequency, p.Duration, p.Instructions,
		)
		if err != nil {
			return fmt.Errorf("insert prescription %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]MedicalRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, doctor_id, visit_date, chief_complaint, diagnosis, treatment_plan, attachments, notes, created_at
		FROM medical_records
		WHERE patient_id = $1
		ORDER BY visit_date DESC, created_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	recs := []MedicalRecord{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var rec MedicalRecord
		err := rows.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.VisitDate,
			&rec.ChiefComplaint, &rec.Diagnosis, &rec.TreatmentPlan,
			&rec.Attachments, &rec.Notes, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		rec.Prescriptions = []Prescription{}
		index[rec.ID] = len(recs)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return recs, nil
	}

	prows, err := r.pool.Query(ctx, `
		SELECT p.id, p.record_id, p.position, p.name, p.dosage, p.frequency, p.duration, p.instructions
		FROM prescriptions p
		JOIN medical_records m ON m.id = p.record_id
		WHERE m.patient_id = $1
		ORDER BY p.record_id, p.position`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var p Prescription
		err := prows.Scan(&p.ID, &p.RecordID, &p.Position, &p.Name,
			&p.Dosage, &p.Frequency, &p.Duration, &p.Instructions)
		if err != nil {
			return nil, err
		}
		if i, ok := index[p.RecordID]; ok {
			recs[i].Prescriptions = append(recs[i].Prescriptions, p)
		}
	}
	return recs, prows.Err()
}
