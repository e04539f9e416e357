// Package sla detects service-level breaches on the lead pipeline and keeps
// per-device suppression state for the resulting alerts.
package sla

import (
	"time"

	"leaddesk_backend/internal/followups"
	"leaddesk_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// BreachType identifies which service level was missed.
type BreachType string

const (
	// BreachContact24h fires when a lead in the early contact stages has
	// seen no progress within 24 hours of entering its status.
	BreachContact24h BreachType = "contact_24h"

	// BreachOffer48h fires when a lead sits in an offer stage for more
	// than 48 hours without moving on.
	BreachOffer48h BreachType = "offer_48h"

	// BreachFollowUpOverdue fires when an open follow-up task is past its
	// due date.
	BreachFollowUpOverdue BreachType = "followup_overdue"
)

const (
	contactWindow = 24 * time.Hour
	offerWindow   = 48 * time.Hour

	// escalationStep raises the breach level for every further day missed.
	escalationStep = 24 * time.Hour
	maxLevel       = 3
)

// Breach is one detected service-level miss for a lead.
type Breach struct {
	TenantID uuid.UUID  `json:"tenantId"`
	LeadID   uuid.UUID  `json:"leadId"`
	Type     BreachType `json:"type"`
	DueAt    time.Time  `json:"dueAt"`
	Level    int        `json:"level"`
}

// Key identifies a breach independent of its level, for dedup and
// suppression.
type Key struct {
	LeadID uuid.UUID
	Type   BreachType
}

func (b Breach) Key() Key {
	return Key{LeadID: b.LeadID, Type: b.Type}
}

// ComputeBreaches evaluates the full breach set for one tenant. It is a pure
// function of its inputs: same leads, tasks, and clock give the same result.
func ComputeBreaches(leads []domain.LeadSnapshot, openTasks []followups.Task, now time.Time) []Breach {
	breaches := make([]Breach, 0)

	for _, lead := range leads {
		switch lead.Status {
		case domain.StatusNew, domain.StatusContacted:
			dueAt := lead.StatusSince.Add(contactWindow)
			if now.After(dueAt) {
				breaches = append(breaches, Breach{
					TenantID: lead.TenantID,
					LeadID:   lead.ID,
					Type:     BreachContact24h,
					DueAt:    dueAt,
					Level:    level(now.Sub(dueAt)),
				})
			}
		case domain.StatusOfferCreated, domain.StatusOfferSubmitted:
			dueAt := lead.StatusSince.Add(offerWindow)
			if now.After(dueAt) {
				breaches = append(breaches, Breach{
					TenantID: lead.TenantID,
					LeadID:   lead.ID,
					Type:     BreachOffer48h,
					DueAt:    dueAt,
					Level:    level(now.Sub(dueAt)),
				})
			}
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, task := range openTasks {
		if !task.IsOpen() {
			continue
		}
		if task.DueDate.Before(today) {
			breaches = append(breaches, Breach{
				TenantID: task.TenantID,
				LeadID:   task.LeadID,
				Type:     BreachFollowUpOverdue,
				DueAt:    task.DueDate,
				Level:    level(now.Sub(task.DueDate)),
			})
		}
	}

	return breaches
}

// level maps how far past due a breach is onto a bounded escalation level.
// The mapping is monotone: more overdue never lowers the level.
func level(overdue time.Duration) int {
	l := 1 + int(overdue/escalationStep)
	if l > maxLevel {
		l = maxLevel
	}
	return l
}
