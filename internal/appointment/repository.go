package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medecho/clinical-scheduling/internal/availability"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the booking service.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// FindActiveBySlot is the confirm-time conflict check: it returns the
	// non-cancelled appointment occupying (provider, date, time), if any.
	FindActiveBySlot(ctx context.Context, providerID uuid.UUID, date string, t availability.TimeOfDay) (*Appointment, error)

	ListByProviderDate(ctx context.Context, providerID uuid.UUID, date string) ([]Appointment, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)

	// FindPendingOnDate feeds the reminder worker.
	FindPendingOnDate(ctx context.Context, date string) ([]Appointment, error)

	Create(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	InsertEvent(ctx context.Context, ev EventLog) error
}
