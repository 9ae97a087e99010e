package assistant

import "context"

// ReportMarker is appended by the model when the intake conversation is done
// and a clinical report should be filed. The marker is a protocol detail
// between the prompt and the intake service; it is stripped before the reply
// reaches the client.
const ReportMarker = "[GENERATING CLINICAL REPORT]"

// ClinicalSummary is the structured extraction of an intake transcript.
type ClinicalSummary struct {
	Condition         string   `json:"condition"`
	Confidence        float64  `json:"confidence"`
	SymptomsExtracted []string `json:"symptoms_extracted"`
	Advice            string   `json:"advice"`
	Summary           string   `json:"summary"`
}

// Assistant is the generative-AI capability the intake flow depends on. The
// scheduling core has no dependency on this package; swapping the
// implementation (or stubbing it in tests) requires no changes elsewhere.
type Assistant interface {
	// Converse returns the assistant's next reply given the user's message
	// and the conversation so far.
	Converse(ctx context.Context, message, history string) (string, error)

	// ExtractClinicalSummary turns a finished intake transcript into a
	// structured report.
	ExtractClinicalSummary(ctx context.Context, transcript string) (*ClinicalSummary, error)
}
