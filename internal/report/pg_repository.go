package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const reportColumns = `id, patient_id, doctor_id, doctor_name, report_date, summary, diagnosis, prescription, ai_confidence, input_language, vitals, created_at`

func scanReport(row pgx.Row) (*MedicalReport, error) {
	var r MedicalReport
	var vitalsRaw []byte

	err := row.Scan(
		&r.ID,
		&r.PatientID,
		&r.DoctorID,
		&r.DoctorName,
		&r.Date,
		&r.Summary,
		&r.Diagnosis,
		&r.Prescription,
		&r.AIConfidence,
		&r.InputLanguage,
		&vitalsRaw,
		&r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	if vitalsRaw != nil {
		var v Vitals
		if err := json.Unmarshal(vitalsRaw, &v); err != nil {
			return nil, fmt.Errorf("decode vitals: %w", err)
		}
		r.Vitals = &v
	}
	return &r, nil
}

func (p *PgRepository) collect(rows pgx.Rows) ([]MedicalReport, error) {
	defer rows.Close()

	var out []MedicalReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (p *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*MedicalReport, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT `+reportColumns+`
		FROM medical_reports
		WHERE id = $1
	`, id)
	return scanReport(row)
}

func (p *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]MedicalReport, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+reportColumns+`
		FROM medical_reports
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list reports by patient: %w", err)
	}
	return p.collect(rows)
}

func (p *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]MedicalReport, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+reportColumns+`
		FROM medical_reports
		WHERE doctor_id = $1
		ORDER BY created_at DESC
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list reports by doctor: %w", err)
	}
	return p.collect(rows)
}

func (p *PgRepository) Create(ctx context.Context, r *MedicalReport) error {
	var vitalsRaw []byte
	if r.Vitals != nil {
		var err error
		vitalsRaw, err = json.Marshal(r.Vitals)
		if err != nil {
			return fmt.Errorf("encode vitals: %w", err)
		}
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO medical_reports (id, patient_id, doctor_id, doctor_name, report_date, summary, diagnosis, prescription, ai_confidence, input_language, vitals, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
	`, r.ID, r.PatientID, r.DoctorID, r.DoctorName, r.Date, r.Summary, r.Diagnosis, r.Prescription, r.AIConfidence, r.InputLanguage, vitalsRaw)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}
