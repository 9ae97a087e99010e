package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrReportNotFound = errors.New("report not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalReport, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]MedicalReport, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]MedicalReport, error)
	Create(ctx context.Context, r *MedicalReport) error
}
