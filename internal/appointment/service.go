package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medecho/clinical-scheduling/internal/availability"
	redisclient "github.com/medecho/clinical-scheduling/internal/redis"
	"github.com/medecho/clinical-scheduling/internal/user"
)

const (
	EventAppointmentBooked        = "APPOINTMENT_BOOKED"
	EventAppointmentStatusChanged = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentDeleted       = "APPOINTMENT_DELETED"
)

var (
	ErrSlotUnavailable         = errors.New("slot is no longer available")
	ErrSlotBeingBooked         = errors.New("slot is currently being booked, please retry")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrProviderNotFound        = errors.New("provider not found")
	ErrPatientNotFound         = errors.New("patient not found")
)

type Service struct {
	repo   Repository
	users  user.Repository
	locker redisclient.Locker
	log    *zap.Logger
}

func NewService(repo Repository, users user.Repository, locker redisclient.Locker, log *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		locker: locker,
		log:    log,
	}
}

// AvailableSlots resolves the bookable start times for a provider on a date.
// Unknown providers yield an empty list rather than an error.
func (s *Service) AvailableSlots(ctx context.Context, providerID uuid.UUID, date string) ([]availability.TimeOfDay, error) {
	profile, err := s.users.Profile(ctx, providerID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	booked, err := s.repo.ListByProviderDate(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}

	return availability.Resolve(date, profile, bookings(booked)), nil
}

// Book reserves a slot for a patient. The slot list a client picked from may
// be stale, so the requested slot is re-resolved here and the conflict check
// runs again inside a per-slot distributed lock before the row is written.
func (s *Service) Book(ctx context.Context, providerID, patientID uuid.UUID, date string, t availability.TimeOfDay, modality Modality) (*Appointment, error) {
	provider, err := s.users.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if provider.Role != user.RoleDoctor {
		return nil, ErrProviderNotFound
	}

	patient, err := s.users.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	if !modality.Valid() {
		modality = ModalityInPerson
	}

	offered, err := s.AvailableSlots(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	if !containsSlot(offered, t) {
		return nil, ErrSlotUnavailable
	}

	var created *Appointment

	err = s.locker.WithBookingLock(ctx, providerID, date, t.String(), func(lockCtx context.Context) error {
		// Inside the critical section re-check for an active appointment on
		// this exact slot.
		existing, err := s.repo.FindActiveBySlot(lockCtx, providerID, date, t)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check slot conflict: %w", err)
		}
		if existing != nil {
			return ErrSlotUnavailable
		}

		appt := &Appointment{
			ID:           uuid.New(),
			ProviderID:   providerID,
			PatientID:    patientID,
			ProviderName: provider.Name,
			PatientName:  patient.Name,
			VisitDate:    date,
			StartTime:    t,
			Status:       StatusPending,
			Modality:     modality,
		}
		if err := s.repo.Create(lockCtx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentBooked, map[string]any{
			"provider_id": providerID.String(),
			"patient_id":  patientID.String(),
			"visit_date":  date,
			"start_time":  t.String(),
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	return created, nil
}

// ChangeStatus applies a transition: PENDING may complete or cancel, and
// either terminal status may reopen to PENDING. Reopening makes the booking
// active again, so the slot conflict check runs once more; without it a
// cancelled appointment could reopen on top of a replacement booking.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !validTransition(appt.Status, to) {
		return nil, ErrInvalidStatusTransition
	}

	if appt.Status == StatusCancelled && to == StatusPending {
		existing, err := s.repo.FindActiveBySlot(ctx, appt.ProviderID, appt.VisitDate, appt.StartTime)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return nil, fmt.Errorf("check slot conflict: %w", err)
		}
		if existing != nil && existing.ID != appt.ID {
			return nil, ErrSlotUnavailable
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, id, appt.Status, to)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentStatusChanged, map[string]any{
		"from": string(appt.Status),
		"to":   string(to),
	})

	return updated, nil
}

// Delete removes the record entirely. This is not a cancellation: the slot is
// freed and no status history remains.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logEvent(ctx, id, EventAppointmentDeleted, map[string]any{})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]Appointment, error) {
	return s.repo.ListByProvider(ctx, providerID)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("marshal event payload", zap.String("event", eventType), zap.Error(err))
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Warn("insert event log",
			zap.String("event", eventType),
			zap.String("appointment_id", appointmentID.String()),
			zap.Error(err),
		)
	}
}

func validTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusCompleted || to == StatusCancelled
	case StatusCompleted, StatusCancelled:
		return to == StatusPending
	}
	return false
}

func containsSlot(slots []availability.TimeOfDay, t availability.TimeOfDay) bool {
	for _, s := range slots {
		if s == t {
			return true
		}
	}
	return false
}

func bookings(appts []Appointment) []availability.Booking {
	out := make([]availability.Booking, len(appts))
	for i, a := range appts {
		out[i] = a.Booking()
	}
	return out
}
