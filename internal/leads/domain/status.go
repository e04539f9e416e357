// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"time"

	"leaddesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Status is a lead lifecycle value.
type Status string

const (
	StatusNew                  Status = "New"
	StatusContacted            Status = "Contacted"
	StatusInProgress           Status = "InProgress"
	StatusAppointmentScheduled Status = "AppointmentScheduled"
	StatusOfferCreated         Status = "OfferCreated"
	StatusOfferSubmitted       Status = "OfferSubmitted"
	StatusInConsideration      Status = "InConsideration"
	StatusTVP                  Status = "TVP"
	StatusWon                  Status = "Won"
	StatusLost                 Status = "Lost"
	StatusNotReached1x         Status = "NotReached1x"
	StatusNotReached2x         Status = "NotReached2x"
	StatusNotReached3x         Status = "NotReached3x"
)

var validStatuses = map[Status]bool{
	StatusNew:                  true,
	StatusContacted:            true,
	StatusInProgress:           true,
	StatusAppointmentScheduled: true,
	StatusOfferCreated:         true,
	StatusOfferSubmitted:       true,
	StatusInConsideration:      true,
	StatusTVP:                  true,
	StatusWon:                  true,
	StatusLost:                 true,
	StatusNotReached1x:         true,
	StatusNotReached2x:         true,
	StatusNotReached3x:         true,
}

// IsValid reports whether s is a known lifecycle value.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", apperr.Validation("unknown lead status: " + raw)
	}
	return s, nil
}

// PhoneOutcome is the result of a single contact attempt.
type PhoneOutcome string

const (
	PhoneReached           PhoneOutcome = "reached"
	PhoneNotReached        PhoneOutcome = "not_reached"
	PhoneCallbackRequested PhoneOutcome = "callback_requested"
	PhoneAppointmentSet    PhoneOutcome = "appointment_set"
)

var validPhoneOutcomes = map[PhoneOutcome]bool{
	PhoneReached:           true,
	PhoneNotReached:        true,
	PhoneCallbackRequested: true,
	PhoneAppointmentSet:    true,
}

// IsValid reports whether p is a known contact-attempt outcome.
func (p PhoneOutcome) IsValid() bool {
	return validPhoneOutcomes[p]
}

// ParsePhoneOutcome validates a raw phone outcome string.
func ParsePhoneOutcome(raw string) (PhoneOutcome, error) {
	p := PhoneOutcome(raw)
	if !p.IsValid() {
		return "", apperr.Validation("unknown phone outcome: " + raw)
	}
	return p, nil
}

// LostReasonNotInterested marks a Lost lead that may be worth re-engaging.
const LostReasonNotInterested = "not_interested"

// MaxNotReachedCount caps the not-reached counter. Recording further
// attempts never pushes it past this value.
const MaxNotReachedCount = 3

// LeadSnapshot is a read-only view of the lead fields the transition engine
// and task generator consume. The record store owns the lead; the engine
// only reads snapshots and proposes patches.
type LeadSnapshot struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	Status            Status
	PhoneStatus       PhoneOutcome
	NotReachedCount   int
	StatusSince       time.Time
	LostReason        string
	FollowUpRequested bool
	FollowUpDate      *time.Time
	OfferUploaded     bool
	TVPUploaded       bool
}

// Patch is a proposed partial change to a lead. Nil fields are untouched.
type Patch struct {
	// ForcedStatus is an override attached by internal callers (e.g. after a
	// UI-level appointment booking where the new status is already known).
	// It bypasses all inference.
	ForcedStatus *Status

	Status            *Status
	PhoneStatus       *PhoneOutcome
	NotReachedCount   *int
	OfferUploaded     *bool
	TVPUploaded       *bool
	LostReason        *string
	FollowUpRequested *bool
	FollowUpDate      *time.Time
}
