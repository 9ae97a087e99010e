package notification

import (
	"context"
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

func (r *PgRepository) Create(ctx context.Context, n *Notification) (bool, error) {
	// The partial unique index on (appointment_id, type) makes reminder
	// inserts idempotent across worker runs.
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, appointment_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, now())
		ON CONFLICT DO NOTHING
	`, n.ID, n.UserID, n.Title, n.Message, n.Type, n.AppointmentID)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, message, type, appointment_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.AppointmentID, &n.IsRead, &n.CreatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotificationNotFound
			}
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PgRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
