package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medecho/clinical-scheduling/internal/appointment"
)

// AppointmentSource is the slice of the booking repository the reminder
// worker needs.
type AppointmentSource interface {
	FindPendingOnDate(ctx context.Context, date string) ([]Appointment, error)
}

// Appointment aliases the booking record so callers wire the repository in
// directly.
type Appointment = appointment.Appointment

// ReminderService writes next-day reminders for pending appointments. It is
// driven by the reminder worker on a fixed interval; duplicate runs are safe
// because reminder inserts are idempotent per appointment.
type ReminderService struct {
	appts  AppointmentSource
	notifs Repository
	log    *zap.Logger
	now    func() time.Time
}

func NewReminderService(appts AppointmentSource, notifs Repository, log *zap.Logger) *ReminderService {
	return &ReminderService{
		appts:  appts,
		notifs: notifs,
		log:    log,
		now:    time.Now,
	}
}

// RunOnce sends reminders for every pending appointment scheduled tomorrow
// (UTC calendar, matching the availability engine's date convention).
func (s *ReminderService) RunOnce(ctx context.Context) (int, error) {
	tomorrow := s.now().UTC().AddDate(0, 0, 1).Format("2006-01-02")

	pending, err := s.appts.FindPendingOnDate(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("find pending appointments: %w", err)
	}

	sent := 0
	for _, appt := range pending {
		apptID := appt.ID
		n := &Notification{
			ID:     uuid.New(),
			UserID: appt.PatientID,
			Title:  "Appointment reminder",
			Message: fmt.Sprintf("You have an appointment with %s tomorrow at %s.",
				appt.ProviderName, appt.StartTime.String()),
			Type:          TypeReminder,
			AppointmentID: &apptID,
		}

		created, err := s.notifs.Create(ctx, n)
		if err != nil {
			s.log.Warn("create reminder",
				zap.String("appointment_id", appt.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if created {
			sent++
		}
	}

	return sent, nil
}
