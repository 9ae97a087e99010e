package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medecho/clinical-scheduling/internal/report"
	"github.com/medecho/clinical-scheduling/internal/user"
)

func createReportHandler(reports report.Repository, users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		var req CreateReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patientId must be a valid UUID")
			return
		}

		doctor, err := users.Get(r.Context(), session.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		rep := &report.MedicalReport{
			ID:            uuid.New(),
			PatientID:     patientID,
			DoctorID:      doctor.ID,
			DoctorName:    doctor.Name,
			Date:          req.Date,
			Summary:       req.Summary,
			Diagnosis:     req.Diagnosis,
			Prescription:  req.Prescription,
			InputLanguage: req.InputLanguage,
			Vitals:        req.Vitals,
			CreatedAt:     time.Now().UTC(),
		}
		if err := reports.Create(r.Context(), rep); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, toReportResponse(rep))
	}
}

// listReportsHandler returns reports about the caller (patient) or authored
// by the caller (doctor).
func listReportsHandler(reports report.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		var (
			list []report.MedicalReport
			err  error
		)
		if session.Role == user.RoleDoctor {
			list, err = reports.ListByDoctor(r.Context(), session.UserID)
		} else {
			list, err = reports.ListByPatient(r.Context(), session.UserID)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]ReportResponse, 0, len(list))
		for i := range list {
			resp = append(resp, toReportResponse(&list[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getReportHandler(reports report.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_report_id", "id must be a valid UUID")
			return
		}

		rep, err := reports.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, report.ErrReportNotFound) {
				writeError(w, http.StatusNotFound, "report_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		if session.Role != user.RoleAdmin && rep.PatientID != session.UserID && rep.DoctorID != session.UserID {
			writeError(w, http.StatusForbidden, "forbidden", "not a party to this report")
			return
		}
		writeJSON(w, http.StatusOK, toReportResponse(rep))
	}
}
