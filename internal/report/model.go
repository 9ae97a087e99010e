package report

import (
	"time"

	"github.com/google/uuid"
)

// Vitals are optional measurements attached to a report. Every field may be
// absent independently.
type Vitals struct {
	BP          *string `json:"bp,omitempty"`
	Weight      *string `json:"weight,omitempty"`
	Temperature *string `json:"temperature,omitempty"`
}

// MedicalReport is a filed clinical summary, authored either by a doctor or
// by the AI intake assistant (AIConfidence set in the latter case).
type MedicalReport struct {
	ID            uuid.UUID
	PatientID     uuid.UUID
	DoctorID      uuid.UUID
	DoctorName    string
	Date          string // YYYY-MM-DD
	Summary       string
	Diagnosis     string
	Prescription  []string
	AIConfidence  *float64
	InputLanguage *string
	Vitals        *Vitals
	CreatedAt     time.Time
}
