package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medecho/clinical-scheduling/internal/report"
)

// AIDoctorName labels reports filed by the assistant rather than a human
// doctor.
const AIDoctorName = "MedEcho AI Assistant"

// ChatResult is one turn of the intake conversation. Report is non-nil when
// the assistant concluded the intake and a clinical report was filed.
type ChatResult struct {
	Reply  string
	Report *report.MedicalReport
}

// IntakeService runs symptom-intake conversations and files a medical report
// when the assistant signals it has enough.
type IntakeService struct {
	assistant Assistant
	reports   report.Repository
	log       *zap.Logger
	now       func() time.Time
}

func NewIntakeService(assistant Assistant, reports report.Repository, log *zap.Logger) *IntakeService {
	return &IntakeService{
		assistant: assistant,
		reports:   reports,
		log:       log,
		now:       time.Now,
	}
}

// Chat advances the conversation by one turn. When the reply carries the
// report marker, the full transcript is run through structured extraction and
// the resulting report is stored for the patient. Extraction failures do not
// fail the chat turn; the patient still gets the reply.
func (s *IntakeService) Chat(ctx context.Context, patientID uuid.UUID, message, history string) (*ChatResult, error) {
	reply, err := s.assistant.Converse(ctx, message, history)
	if err != nil {
		return nil, fmt.Errorf("converse: %w", err)
	}

	result := &ChatResult{Reply: reply}
	if !strings.Contains(reply, ReportMarker) {
		return result, nil
	}

	result.Reply = strings.TrimSpace(strings.ReplaceAll(reply, ReportMarker, ""))

	transcript := history + "\nUser: " + message + "\nAssistant: " + result.Reply
	summary, err := s.assistant.ExtractClinicalSummary(ctx, transcript)
	if err != nil {
		s.log.Warn("clinical summary extraction failed",
			zap.String("patient_id", patientID.String()),
			zap.Error(err),
		)
		return result, nil
	}

	confidence := summary.Confidence
	prescription := []string{"Follow-up as advised"}
	if summary.Advice != "" {
		prescription = append([]string{summary.Advice}, prescription...)
	}
	rep := &report.MedicalReport{
		ID:           uuid.New(),
		PatientID:    patientID,
		DoctorID:     uuid.Nil,
		DoctorName:   AIDoctorName,
		Date:         s.now().UTC().Format("2006-01-02"),
		Summary:      summary.Summary,
		Diagnosis:    summary.Condition,
		Prescription: prescription,
		AIConfidence: &confidence,
	}

	if err := s.reports.Create(ctx, rep); err != nil {
		s.log.Warn("file intake report",
			zap.String("patient_id", patientID.String()),
			zap.Error(err),
		)
		return result, nil
	}

	result.Report = rep
	return result, nil
}
