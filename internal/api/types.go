package api

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/medecho/clinical-scheduling/internal/appointment"
	"github.com/medecho/clinical-scheduling/internal/availability"
	"github.com/medecho/clinical-scheduling/internal/notification"
	"github.com/medecho/clinical-scheduling/internal/report"
	"github.com/medecho/clinical-scheduling/internal/user"
)

var validate = validator.New()

// auth

type RegisterRequest struct {
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=8"`
	Role           string  `json:"role" validate:"required,oneof=PATIENT DOCTOR"`
	Specialization *string `json:"specialization,omitempty"`
	Contact        *string `json:"contact,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	Avatar            *string   `json:"avatar,omitempty"`
	Specialization    *string   `json:"specialization,omitempty"`
	Contact           *string   `json:"contact,omitempty"`
	PreferredLanguage *string   `json:"preferredLanguage,omitempty"`
	IsAvailable       *bool     `json:"isAvailable,omitempty"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              string(u.Role),
		Avatar:            u.Avatar,
		Specialization:    u.Specialization,
		Contact:           u.Contact,
		PreferredLanguage: u.PreferredLanguage,
		IsAvailable:       u.IsAvailable,
	}
}

// schedule editing

type SetDayActiveRequest struct {
	Active bool `json:"active"`
}

type UpdateRangeRequest struct {
	Field string `json:"field" validate:"required,oneof=start end"`
	Value string `json:"value" validate:"required"`
}

type AddBlockedSlotRequest struct {
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	IsAllDay bool    `json:"isAllDay"`
	Start    *string `json:"start,omitempty"`
	End      *string `json:"end,omitempty"`
	Reason   string  `json:"reason" validate:"required"`
}

type ProfileResponse struct {
	ProviderID   uuid.UUID                  `json:"providerId"`
	Schedules    []availability.DaySchedule `json:"schedules"`
	BlockedSlots []availability.BlockedSlot `json:"blockedSlots"`
}

func toProfileResponse(p availability.Profile) ProfileResponse {
	blocked := p.BlockedSlots
	if blocked == nil {
		blocked = []availability.BlockedSlot{}
	}
	return ProfileResponse{
		ProviderID:   p.ProviderID,
		Schedules:    p.Schedules,
		BlockedSlots: blocked,
	}
}

// availability & appointments

type AvailabilityResponse struct {
	ProviderID uuid.UUID `json:"providerId"`
	Date       string    `json:"date"`
	Slots      []string  `json:"slots"`
}

type BookAppointmentRequest struct {
	ProviderID string `json:"providerId" validate:"required,uuid"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required"`
	Modality   string `json:"modality" validate:"omitempty,oneof=VIRTUAL IN_PERSON"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING COMPLETED CANCELLED"`
}

type AppointmentResponse struct {
	ID           uuid.UUID `json:"id"`
	ProviderID   uuid.UUID `json:"providerId"`
	PatientID    uuid.UUID `json:"patientId"`
	ProviderName string    `json:"providerName"`
	PatientName  string    `json:"patientName"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Status       string    `json:"status"`
	Modality     string    `json:"modality"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
		ProviderID:   a.ProviderID,
		PatientID:    a.PatientID,
		ProviderName: a.ProviderName,
		PatientName:  a.PatientName,
		Date:         a.VisitDate,
		Time:         a.StartTime.String(),
		Status:       string(a.Status),
		Modality:     string(a.Modality),
		CreatedAt:    a.CreatedAt,
	}
}

// reports

type CreateReportRequest struct {
	PatientID     string         `json:"patientId" validate:"required,uuid"`
	Date          string         `json:"date" validate:"required,datetime=2006-01-02"`
	Summary       string         `json:"summary" validate:"required"`
	Diagnosis     string         `json:"diagnosis" validate:"required"`
	Prescription  []string       `json:"prescription"`
	InputLanguage *string        `json:"inputLanguage,omitempty"`
	Vitals        *report.Vitals `json:"vitals,omitempty"`
}

type ReportResponse struct {
	ID            uuid.UUID      `json:"id"`
	PatientID     uuid.UUID      `json:"patientId"`
	DoctorID      uuid.UUID      `json:"doctorId"`
	DoctorName    string         `json:"doctorName"`
	Date          string         `json:"date"`
	Summary       string         `json:"summary"`
	Diagnosis     string         `json:"diagnosis"`
	Prescription  []string       `json:"prescription"`
	AIConfidence  *float64       `json:"aiConfidence,omitempty"`
	InputLanguage *string        `json:"inputLanguage,omitempty"`
	Vitals        *report.Vitals `json:"vitals,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func toReportResponse(r *report.MedicalReport) ReportResponse {
	return ReportResponse{
		ID:            r.ID,
		PatientID:     r.PatientID,
		DoctorID:      r.DoctorID,
		DoctorName:    r.DoctorName,
		Date:          r.Date,
		Summary:       r.Summary,
		Diagnosis:     r.Diagnosis,
		Prescription:  r.Prescription,
		AIConfidence:  r.AIConfidence,
		InputLanguage: r.InputLanguage,
		Vitals:        r.Vitals,
		CreatedAt:     r.CreatedAt,
	}
}

// notifications

type NotificationResponse struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	Type          string     `json:"type"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
	IsRead        bool       `json:"isRead"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func toNotificationResponse(n notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID,
		Title:         n.Title,
		Message:       n.Message,
		Type:          string(n.Type),
		AppointmentID: n.AppointmentID,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
	}
}

// assistant

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	History string `json:"history"`
}

type ChatResponse struct {
	Reply  string          `json:"reply"`
	Report *ReportResponse `json:"report,omitempty"`
}
