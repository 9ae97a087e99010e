package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/medecho/clinical-scheduling/internal/availability"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Modality string

const (
	ModalityVirtual  Modality = "VIRTUAL"
	ModalityInPerson Modality = "IN_PERSON"
)

func (m Modality) Valid() bool {
	return m == ModalityVirtual || m == ModalityInPerson
}

// Appointment is a booked slot. Provider and patient names are denormalized
// onto the record so lists render without extra lookups. The provider's
// availability profile is evaluated at booking time only; later profile edits
// do not invalidate existing appointments.
type Appointment struct {
	ID           uuid.UUID
	ProviderID   uuid.UUID
	PatientID    uuid.UUID
	ProviderName string
	PatientName  string
	VisitDate    string                 // YYYY-MM-DD
	StartTime    availability.TimeOfDay // HH:MM at the boundary
	Status       Status
	Modality     Modality
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Booking projects the appointment into the resolver's conflict view.
func (a Appointment) Booking() availability.Booking {
	return availability.Booking{
		ProviderID: a.ProviderID,
		Date:       a.VisitDate,
		Time:       a.StartTime,
		Active:     a.Status != StatusCancelled,
	}
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
