package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Repository interface {
	// Create inserts a notification. For reminder notifications tied to an
	// appointment the insert is idempotent: a second reminder for the same
	// appointment is dropped, and Create reports whether a row was written.
	Create(ctx context.Context, n *Notification) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}
