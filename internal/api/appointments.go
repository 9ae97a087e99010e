package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medecho/clinical-scheduling/internal/appointment"
	"github.com/medecho/clinical-scheduling/internal/auth"
	"github.com/medecho/clinical-scheduling/internal/availability"
	redisclient "github.com/medecho/clinical-scheduling/internal/redis"
	"github.com/medecho/clinical-scheduling/internal/user"
)

func bookAppointmentHandler(appts *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		providerID, err := uuid.Parse(req.ProviderID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "providerId must be a valid UUID")
			return
		}
		slot, err := availability.ParseTimeOfDay(req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be HH:MM")
			return
		}

		appt, err := appts.Book(r.Context(), providerID, session.UserID, req.Date, slot, appointment.Modality(req.Modality))
		if err != nil {
			handleBookError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

// listAppointmentsHandler returns the caller's own appointments: bookings
// they made as a patient, or their calendar as a provider.
func listAppointmentsHandler(appts *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		var (
			list []appointment.Appointment
			err  error
		)
		if session.Role == user.RoleDoctor {
			list, err = appts.ListForProvider(r.Context(), session.UserID)
		} else {
			list, err = appts.ListForPatient(r.Context(), session.UserID)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]AppointmentResponse, 0, len(list))
		for i := range list {
			resp = append(resp, toAppointmentResponse(&list[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func changeAppointmentStatusHandler(appts *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req ChangeStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		if !authorizedForAppointment(w, r, appts, id, session) {
			return
		}

		appt, err := appts.ChangeStatus(r.Context(), id, appointment.Status(req.Status))
		if err != nil {
			handleStatusError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func deleteAppointmentHandler(appts *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if !authorizedForAppointment(w, r, appts, id, session) {
			return
		}

		if err := appts.Delete(r.Context(), id); err != nil {
			if errors.Is(err, appointment.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// authorizedForAppointment allows the appointment's patient, its provider,
// and admins. It writes the error response itself on failure.
func authorizedForAppointment(w http.ResponseWriter, r *http.Request, appts *appointment.Service, id uuid.UUID, session auth.Session) bool {
	appt, err := appts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
			return false
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return false
	}
	if session.Role != user.RoleAdmin && appt.PatientID != session.UserID && appt.ProviderID != session.UserID {
		writeError(w, http.StatusForbidden, "forbidden", "not a party to this appointment")
		return false
	}
	return true
}

func handleBookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrProviderNotFound):
		writeError(w, http.StatusNotFound, "provider_not_found", err.Error())
	case errors.Is(err, appointment.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, appointment.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", err.Error())
	case errors.Is(err, appointment.ErrSlotBeingBooked),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleStatusError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, appointment.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
