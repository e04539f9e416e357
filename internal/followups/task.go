// Package followups owns scheduled follow-up obligations: the generation
// rules that derive tasks from status transitions, and the CRUD surface for
// manually managed tasks.
package followups

import (
	"time"

	"leaddesk_backend/platform/busday"

	"github.com/google/uuid"
)

// TaskType classifies a follow-up obligation.
type TaskType string

const (
	TaskCall         TaskType = "call"
	TaskOffer        TaskType = "offer_followup"
	TaskMeeting      TaskType = "meeting"
	TaskCustom       TaskType = "custom"
	TaskReengagement TaskType = "reengagement"
	TaskTVP          TaskType = "tvp"
	TaskFollowUp     TaskType = "followup"
)

var validTaskTypes = map[TaskType]bool{
	TaskCall:         true,
	TaskOffer:        true,
	TaskMeeting:      true,
	TaskCustom:       true,
	TaskReengagement: true,
	TaskTVP:          true,
	TaskFollowUp:     true,
}

// IsValid reports whether t is a known task type.
func (t TaskType) IsValid() bool {
	return validTaskTypes[t]
}

// Priority is a stored task priority. The overdue value is derived at read
// time and never written to the store.
type Priority string

const (
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityOverdue Priority = "overdue"
)

var storablePriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// IsStorable reports whether p may be persisted.
func (p Priority) IsStorable() bool {
	return storablePriorities[p]
}

// Task is a scheduled follow-up obligation for a lead.
type Task struct {
	ID              uuid.UUID  `json:"id"`
	TenantID        uuid.UUID  `json:"tenantId"`
	LeadID          uuid.UUID  `json:"leadId"`
	Type            TaskType   `json:"type"`
	DueDate         time.Time  `json:"dueDate"`
	Priority        Priority   `json:"priority"`
	AutoGenerated   bool       `json:"autoGenerated"`
	EscalationLevel int        `json:"escalationLevel"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// IsOpen reports whether the task still needs action.
func (t Task) IsOpen() bool {
	return t.CompletedAt == nil
}

// EffectivePriority returns the stored priority, or overdue for an open task
// whose due date has passed.
func (t Task) EffectivePriority(today time.Time) Priority {
	if t.IsOpen() && busday.DateOnly(t.DueDate).Before(busday.DateOnly(today)) {
		return PriorityOverdue
	}
	return t.Priority
}
