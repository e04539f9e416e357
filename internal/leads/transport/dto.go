package transport

import (
	"time"

	"leaddesk_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// Request DTOs
type CreateLeadRequest struct {
	FirstName  string       `json:"firstName" validate:"required,min=1,max=100"`
	LastName   string       `json:"lastName" validate:"required,min=1,max=100"`
	Phone      string       `json:"phone" validate:"required,min=5,max=20"`
	Email      string       `json:"email,omitempty" validate:"omitempty,email"`
	Street     string       `json:"street" validate:"required,min=1,max=200"`
	ZipCode    string       `json:"zipCode" validate:"required,min=1,max=20"`
	City       string       `json:"city" validate:"required,min=1,max=100"`
	Source     string       `json:"source,omitempty" validate:"omitempty,max=100"`
	AssigneeID OptionalUUID `json:"assigneeId,omitempty" validate:"-"`
}

// UpdateLeadRequest is the single PATCH surface: contact edits and lifecycle
// edits travel together, exactly as the detail form submits them.
type UpdateLeadRequest struct {
	FirstName  *string      `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName   *string      `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Phone      *string      `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Email      *string      `json:"email,omitempty" validate:"omitempty,email"`
	Street     *string      `json:"street,omitempty" validate:"omitempty,min=1,max=200"`
	ZipCode    *string      `json:"zipCode,omitempty" validate:"omitempty,min=1,max=20"`
	City       *string      `json:"city,omitempty" validate:"omitempty,min=1,max=100"`
	AssigneeID OptionalUUID `json:"assigneeId,omitempty" validate:"-"`

	Status            *string        `json:"status,omitempty" validate:"omitempty,oneof=New Contacted InProgress AppointmentScheduled OfferCreated OfferSubmitted InConsideration TVP Won Lost NotReached1x NotReached2x NotReached3x"`
	PhoneStatus       *string        `json:"phoneStatus,omitempty" validate:"omitempty,oneof=reached not_reached callback_requested appointment_set"`
	NotReachedCount   OptionalInt    `json:"notReachedCount,omitempty" validate:"-"`
	OfferUploaded     OptionalBool   `json:"offerUploaded,omitempty" validate:"-"`
	TVPUploaded       OptionalBool   `json:"tvpUploaded,omitempty" validate:"-"`
	LostReason        OptionalString `json:"lostReason,omitempty" validate:"-"`
	FollowUpRequested OptionalBool   `json:"followUpRequested,omitempty" validate:"-"`
	FollowUpDate      OptionalDate   `json:"followUpDate,omitempty" validate:"-"`
}

// PhoneOutcomeRequest records one contact attempt from the call panel.
type PhoneOutcomeRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=reached not_reached callback_requested appointment_set"`
}

// Response DTOs
type LeadResponse struct {
	ID                uuid.UUID  `json:"id"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Phone             string     `json:"phone"`
	Email             *string    `json:"email,omitempty"`
	Street            string     `json:"street"`
	ZipCode           string     `json:"zipCode"`
	City              string     `json:"city"`
	AssigneeID        *uuid.UUID `json:"assigneeId,omitempty"`
	Source            *string    `json:"source,omitempty"`
	Status            string     `json:"status"`
	PhoneStatus       *string    `json:"phoneStatus,omitempty"`
	NotReachedCount   int        `json:"notReachedCount"`
	StatusSince       time.Time  `json:"statusSince"`
	LostReason        *string    `json:"lostReason,omitempty"`
	FollowUpRequested bool       `json:"followUpRequested"`
	FollowUpDate      *string    `json:"followUpDate,omitempty"`
	OfferUploaded     bool       `json:"offerUploaded"`
	TVPUploaded       bool       `json:"tvpUploaded"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type StatusChangeResponse struct {
	ID        uuid.UUID  `json:"id"`
	OldStatus string     `json:"oldStatus"`
	NewStatus string     `json:"newStatus"`
	ActorID   *uuid.UUID `json:"actorId,omitempty"`
	ChangedAt time.Time  `json:"changedAt"`
}

func ToLeadResponse(lead repository.Lead) LeadResponse {
	resp := LeadResponse{
		ID:                lead.ID,
		FirstName:         lead.FirstName,
		LastName:          lead.LastName,
		Phone:             lead.Phone,
		Email:             lead.Email,
		Street:            lead.AddressStreet,
		ZipCode:           lead.AddressZipCode,
		City:              lead.AddressCity,
		AssigneeID:        lead.AssignedAgentID,
		Source:            lead.Source,
		Status:            lead.Status,
		PhoneStatus:       lead.PhoneStatus,
		NotReachedCount:   lead.NotReachedCount,
		StatusSince:       lead.StatusSince,
		LostReason:        lead.LostReason,
		FollowUpRequested: lead.FollowUpRequested,
		OfferUploaded:     lead.OfferUploaded,
		TVPUploaded:       lead.TVPUploaded,
		CreatedAt:         lead.CreatedAt,
		UpdatedAt:         lead.UpdatedAt,
	}
	if lead.FollowUpDate != nil {
		formatted := lead.FollowUpDate.Format("2006-01-02")
		resp.FollowUpDate = &formatted
	}
	return resp
}

func ToLeadResponses(leads []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, len(leads))
	for i, lead := range leads {
		out[i] = ToLeadResponse(lead)
	}
	return out
}

func ToStatusChangeResponses(changes []repository.StatusChange) []StatusChangeResponse {
	out := make([]StatusChangeResponse, len(changes))
	for i, c := range changes {
		out[i] = StatusChangeResponse{
			ID:        c.ID,
			OldStatus: c.OldStatus,
			NewStatus: c.NewStatus,
			ActorID:   c.ActorID,
			ChangedAt: c.ChangedAt,
		}
	}
	return out
}
