package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medecho/clinical-scheduling/internal/availability"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `id, provider_id, patient_id, provider_name, patient_name, visit_date, start_time, status, modality, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var startTime string

	err := row.Scan(
		&a.ID,
		&a.ProviderID,
		&a.PatientID,
		&a.ProviderName,
		&a.PatientName,
		&a.VisitDate,
		&startTime,
		&a.Status,
		&a.Modality,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.StartTime, err = availability.ParseTimeOfDay(startTime)
	if err != nil {
		return nil, fmt.Errorf("stored start_time: %w", err)
	}
	return &a, nil
}

func (r *PgRepository) collect(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) FindActiveBySlot(ctx context.Context, providerID uuid.UUID, date string, t availability.TimeOfDay) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE provider_id = $1 AND visit_date = $2 AND start_time = $3 AND status <> $4
		LIMIT 1
	`, providerID, date, t.String(), StatusCancelled)
	return scanAppointment(row)
}

func (r *PgRepository) ListByProviderDate(ctx context.Context, providerID uuid.UUID, date string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE provider_id = $1 AND visit_date = $2
		ORDER BY start_time
	`, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("list by provider and date: %w", err)
	}
	return r.collect(rows)
}

func (r *PgRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE provider_id = $1
		ORDER BY visit_date DESC, start_time
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("list by provider: %w", err)
	}
	return r.collect(rows)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY visit_date DESC, start_time
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list by patient: %w", err)
	}
	return r.collect(rows)
}

func (r *PgRepository) FindPendingOnDate(ctx context.Context, date string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE visit_date = $1 AND status = $2
		ORDER BY start_time
	`, date, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("find pending on date: %w", err)
	}
	return r.collect(rows)
}

func (r *PgRepository) Create(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, provider_id, patient_id, provider_name, patient_name, visit_date, start_time, status, modality, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
	`, a.ID, a.ProviderID, a.PatientID, a.ProviderName, a.PatientName, a.VisitDate, a.StartTime.String(), a.Status, a.Modality)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+appointmentColumns+`
	`, id, from, to)
	return scanAppointment(row)
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_log (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`, ev.EventType, ev.AppointmentID, ev.Payload, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}
