package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeReminder Type = "REMINDER"
	TypeSuccess  Type = "SUCCESS"
	TypeAlert    Type = "ALERT"
)

type Notification struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         string
	Message       string
	Type          Type
	AppointmentID *uuid.UUID
	IsRead        bool
	CreatedAt     time.Time
}
