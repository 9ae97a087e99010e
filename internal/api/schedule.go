package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medecho/clinical-scheduling/internal/availability"
	"github.com/medecho/clinical-scheduling/internal/user"
)

// Schedule editing endpoints operate on the caller's own profile; the
// provider comes from the session, never from the URL. Edits that the
// profile ops reject are silent no-ops, so every handler here responds
// 200 with the (possibly unchanged) profile.

func getScheduleHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		profile, err := users.Profile(r.Context(), session.UserID)
		if err != nil {
			handleProfileError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(profile))
	}
}

func setDayActiveHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		day, ok := dayIndexParam(w, r)
		if !ok {
			return
		}

		var req SetDayActiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		editProfile(w, r, users, session.UserID, func(p availability.Profile) availability.Profile {
			return p.SetDayActive(day, req.Active)
		})
	}
}

func addRangeHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		day, ok := dayIndexParam(w, r)
		if !ok {
			return
		}

		editProfile(w, r, users, session.UserID, func(p availability.Profile) availability.Profile {
			return p.AddRange(day)
		})
	}
}

func removeRangeHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		day, ok := dayIndexParam(w, r)
		if !ok {
			return
		}
		rangeIdx, err := strconv.Atoi(chi.URLParam(r, "rangeIndex"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_range_index", "rangeIndex must be an integer")
			return
		}

		editProfile(w, r, users, session.UserID, func(p availability.Profile) availability.Profile {
			return p.RemoveRange(day, rangeIdx)
		})
	}
}

func updateRangeHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		day, ok := dayIndexParam(w, r)
		if !ok {
			return
		}
		rangeIdx, err := strconv.Atoi(chi.URLParam(r, "rangeIndex"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_range_index", "rangeIndex must be an integer")
			return
		}

		var req UpdateRangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		value, err := availability.ParseTimeOfDay(req.Value)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "value must be HH:MM")
			return
		}

		field := availability.RangeStart
		if req.Field == "end" {
			field = availability.RangeEnd
		}

		editProfile(w, r, users, session.UserID, func(p availability.Profile) availability.Profile {
			return p.UpdateRangeField(day, rangeIdx, field, value)
		})
	}
}

func copyToWeekdaysHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		day, ok := dayIndexParam(w, r)
		if !ok {
			return
		}

		editProfile(w, r, users, session.UserID, func(p availability.Profile) availability.Profile {
			return p.CopyRangesToWeekdays(day)
		})
	}
}

func addBlockedSlotHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		var req AddBlockedSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		blocked := availability.BlockedSlot{
			ID:       uuid.NewString(),
			Date:     req.Date,
			IsAllDay: req.IsAllDay,
			Reason:   req.Reason,
		}
		if !req.IsAllDay {
			if req.Start == nil || req.End == nil {
				writeError(w, http.StatusBadRequest, "missing_range", "timed blocks need start and end")
				return
			}
			start, err := availability.ParseTimeOfDay(*req.Start)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_time", "start must be HH:MM")
				return
			}
			end, err := availability.ParseTimeOfDay(*req.End)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_time", "end must be HH:MM")
				return
			}
			blocked.Range = &availability.WorkingRange{Start: start, End: end}
		}

		editProfile(w, r, users, session.UserID, func(p availability.Profile) availability.Profile {
			return p.AddBlockedSlot(blocked)
		})
	}
}

func removeBlockedSlotHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		blockedID := chi.URLParam(r, "blockedID")

		editProfile(w, r, users, session.UserID, func(p availability.Profile) availability.Profile {
			return p.RemoveBlockedSlot(blockedID)
		})
	}
}

func editProfile(w http.ResponseWriter, r *http.Request, users *user.Service, providerID uuid.UUID, edit func(availability.Profile) availability.Profile) {
	profile, err := users.EditProfile(r.Context(), providerID, edit)
	if err != nil {
		handleProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func dayIndexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	day, err := strconv.Atoi(chi.URLParam(r, "dayIndex"))
	if err != nil || day < 0 || day > 6 {
		writeError(w, http.StatusBadRequest, "invalid_day_index", "dayIndex must be 0-6")
		return 0, false
	}
	return day, true
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "provider_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
