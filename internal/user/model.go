package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// User covers both patients and doctors. Doctor-only attributes are pointers:
// absence is a typed state, not a missing map key.
type User struct {
	ID                uuid.UUID
	Name              string
	Email             string
	PasswordHash      string
	Role              Role
	Avatar            *string
	Specialization    *string
	Contact           *string
	PreferredLanguage *string
	IsAvailable       *bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
