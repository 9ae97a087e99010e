package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medecho/clinical-scheduling/internal/auth"
	"github.com/medecho/clinical-scheduling/internal/user"
)

func registerHandler(users *user.Service, sessions *auth.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		u, err := users.Register(r.Context(), user.RegisterParams{
			Name:           req.Name,
			Email:          req.Email,
			Password:       req.Password,
			Role:           user.Role(req.Role),
			Specialization: req.Specialization,
			Contact:        req.Contact,
		})
		if err != nil {
			if errors.Is(err, user.ErrEmailTaken) {
				writeError(w, http.StatusConflict, "email_taken", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		token, err := sessions.Issue(u)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: toUserResponse(u)})
	}
}

func loginHandler(users *user.Service, sessions *auth.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}

		u, err := users.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, user.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		token, err := sessions.Issue(u)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: toUserResponse(u)})
	}
}

func logoutHandler(sessions *auth.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		if err := sessions.Logout(r.Context(), session); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func meHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionOrFail(w, r)
		if !ok {
			return
		}
		u, err := users.Get(r.Context(), session.UserID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "user_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}
