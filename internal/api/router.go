package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/medecho/clinical-scheduling/internal/appointment"
	"github.com/medecho/clinical-scheduling/internal/assistant"
	"github.com/medecho/clinical-scheduling/internal/auth"
	"github.com/medecho/clinical-scheduling/internal/notification"
	"github.com/medecho/clinical-scheduling/internal/report"
	"github.com/medecho/clinical-scheduling/internal/user"
)

type RouterConfig struct {
	Users         *user.Service
	Appointments  *appointment.Service
	Reports       report.Repository
	Notifications notification.Repository
	Intake        *assistant.IntakeService
	Sessions      *auth.Manager
	PgPool        *pgxpool.Pool
	Redis         *redis.Client
	Log           *zap.Logger
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(100, time.Minute))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Post("/auth/register", registerHandler(cfg.Users, cfg.Sessions))
	r.Post("/auth/login", loginHandler(cfg.Users, cfg.Sessions))

	// Everything below requires a valid session token.
	r.Group(func(r chi.Router) {
		r.Use(Authenticator(cfg.Sessions))

		r.Post("/auth/logout", logoutHandler(cfg.Sessions))
		r.Get("/auth/me", meHandler(cfg.Users))

		r.Get("/providers", listProvidersHandler(cfg.Users))
		r.Get("/providers/{id}", getProviderHandler(cfg.Users))
		r.Get("/providers/{id}/availability", availabilityHandler(cfg.Appointments))

		// Schedule editing is scoped to the caller's own profile.
		r.Route("/schedule", func(r chi.Router) {
			r.Use(RequireRole(user.RoleDoctor))
			r.Get("/", getScheduleHandler(cfg.Users))
			r.Put("/days/{dayIndex}/active", setDayActiveHandler(cfg.Users))
			r.Post("/days/{dayIndex}/ranges", addRangeHandler(cfg.Users))
			r.Delete("/days/{dayIndex}/ranges/{rangeIndex}", removeRangeHandler(cfg.Users))
			r.Put("/days/{dayIndex}/ranges/{rangeIndex}", updateRangeHandler(cfg.Users))
			r.Post("/days/{dayIndex}/copy-to-weekdays", copyToWeekdaysHandler(cfg.Users))
			r.Post("/blocked-slots", addBlockedSlotHandler(cfg.Users))
			r.Delete("/blocked-slots/{blockedID}", removeBlockedSlotHandler(cfg.Users))
		})

		r.Post("/appointments", bookAppointmentHandler(cfg.Appointments))
		r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
		r.Put("/appointments/{id}/status", changeAppointmentStatusHandler(cfg.Appointments))
		r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Appointments))

		r.Get("/reports", listReportsHandler(cfg.Reports))
		r.Get("/reports/{id}", getReportHandler(cfg.Reports))
		r.With(RequireRole(user.RoleDoctor)).Post("/reports", createReportHandler(cfg.Reports, cfg.Users))

		r.Get("/notifications", listNotificationsHandler(cfg.Notifications))
		r.Put("/notifications/{id}/read", markNotificationReadHandler(cfg.Notifications))

		r.With(RequireRole(user.RolePatient)).Post("/assistant/chat", chatHandler(cfg.Intake))
	})

	return r
}
