package api

import (
	"encoding/json"
	"net/http"

	"github.com/medecho/clinical-scheduling/internal/assistant"
)

// chatHandler runs one turn of the AI symptom-intake conversation. When the
// assistant concludes the intake, the filed report rides along in the
// response.
func chatHandler(intake *assistant.IntakeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		result, err := intake.Chat(r.Context(), session.UserID, req.Message, req.History)
		if err != nil {
			writeError(w, http.StatusBadGateway, "assistant_unavailable", err.Error())
			return
		}

		resp := ChatResponse{Reply: result.Reply}
		if result.Report != nil {
			rep := toReportResponse(result.Report)
			resp.Report = &rep
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
