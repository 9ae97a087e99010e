package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medecho/clinical-scheduling/internal/notification"
)

func listNotificationsHandler(notifications notification.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}

		list, err := notifications.ListByUser(r.Context(), session.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]NotificationResponse, 0, len(list))
		for _, n := range list {
			resp = append(resp, toNotificationResponse(n))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func markNotificationReadHandler(notifications notification.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_notification_id", "id must be a valid UUID")
			return
		}

		if err := notifications.MarkRead(r.Context(), id, session.UserID); err != nil {
			if errors.Is(err, notification.ErrNotificationNotFound) {
				writeError(w, http.StatusNotFound, "notification_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
