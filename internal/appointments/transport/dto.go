package transport

import (
	"time"

	"leaddesk_backend/internal/appointments/repository"

	"github.com/google/uuid"
)

type BookAppointmentRequest struct {
	LeadID      string    `json:"leadId" validate:"required,uuid"`
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    *string   `json:"location,omitempty" validate:"omitempty,max=300"`
	StartTime   time.Time `json:"startTime" validate:"required"`
	EndTime     time.Time `json:"endTime" validate:"required"`

	// LeadStatus optionally moves the lead with the booking, e.g. straight
	// to AppointmentScheduled from the call panel.
	LeadStatus *string `json:"leadStatus,omitempty" validate:"omitempty,oneof=New Contacted InProgress AppointmentScheduled OfferCreated OfferSubmitted InConsideration TVP Won Lost NotReached1x NotReached2x NotReached3x"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed cancelled no_show"`
}

type AppointmentResponse struct {
	ID          uuid.UUID `json:"id"`
	LeadID      uuid.UUID `json:"leadId"`
	UserID      uuid.UUID `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func ToAppointmentResponse(a repository.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		LeadID:      a.LeadID,
		UserID:      a.UserID,
		Title:       a.Title,
		Description: a.Description,
		Location:    a.Location,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
	}
}

func ToAppointmentResponses(items []repository.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, len(items))
	for i, a := range items {
		out[i] = ToAppointmentResponse(a)
	}
	return out
}
