package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medecho/clinical-scheduling/internal/appointment"
	"github.com/medecho/clinical-scheduling/internal/availability"
	"github.com/medecho/clinical-scheduling/internal/user"
)

func listProvidersHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := users.ListDoctors(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]UserResponse, 0, len(doctors))
		for i := range doctors {
			resp = append(resp, toUserResponse(&doctors[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getProviderHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "id must be a valid UUID")
			return
		}

		u, err := users.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "provider_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		if u.Role != user.RoleDoctor {
			writeError(w, http.StatusNotFound, "provider_not_found", "no such provider")
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// availabilityHandler answers "which start times can still be booked" for one
// provider on one date. Unknown providers come back as an empty slot list.
func availabilityHandler(appts *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "id must be a valid UUID")
			return
		}

		date := r.URL.Query().Get("date")
		if _, err := availability.Weekday(date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		slots, err := appts.AvailableSlots(r.Context(), id, date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]string, 0, len(slots))
		for _, s := range slots {
			out = append(out, s.String())
		}
		writeJSON(w, http.StatusOK, AvailabilityResponse{ProviderID: id, Date: date, Slots: out})
	}
}
