package followups

import (
	"time"

	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/platform/busday"
)

// Draft is a task the generator proposes. Persistence assigns the ID.
type Draft struct {
	Type            TaskType
	DueDate         time.Time
	Priority        Priority
	EscalationLevel int
	Notes           string
}

// Generation is the outcome of running the generation table for a single
// status transition.
type Generation struct {
	Drafts []Draft
	// TriggerOutreachEmail requests the external workflow-automation call
	// for the third failed contact attempt. Fire-and-forget: a failed call
	// never blocks task creation.
	TriggerOutreachEmail bool
}

// Generate runs the per-status generation table. It is pure: due dates are
// computed from the provided today value, nothing is persisted here.
// A no-op transition (oldStatus == newStatus) generates nothing.
func Generate(lead domain.LeadSnapshot, oldStatus, newStatus domain.Status, today time.Time) Generation {
	if oldStatus == newStatus {
		return Generation{}
	}

	today = busday.DateOnly(today)

	switch newStatus {
	case domain.StatusNotReached1x:
		return Generation{Drafts: []Draft{
			{Type: TaskCall, DueDate: busday.AddBusinessDays(today, 1), Priority: PriorityMedium},
		}}

	case domain.StatusNotReached2x:
		return Generation{Drafts: []Draft{
			{Type: TaskCall, DueDate: busday.AddCalendarDays(today, 8), Priority: PriorityMedium},
		}}

	case domain.StatusNotReached3x:
		return Generation{
			Drafts: []Draft{
				{Type: TaskCustom, DueDate: today, Priority: PriorityHigh, EscalationLevel: 1, Notes: "outreach email"},
			},
			TriggerOutreachEmail: true,
		}

	case domain.StatusOfferSubmitted:
		return Generation{Drafts: []Draft{
			{Type: TaskOffer, DueDate: busday.AddCalendarDays(today, 1), Priority: PriorityMedium},
			{Type: TaskFollowUp, DueDate: busday.AddCalendarDays(today, 7), Priority: PriorityMedium},
		}}

	case domain.StatusTVP:
		return Generation{Drafts: []Draft{
			{Type: TaskTVP, DueDate: busday.AddCalendarDays(today, 1), Priority: PriorityMedium},
			{Type: TaskFollowUp, DueDate: busday.AddCalendarDays(today, 3), Priority: PriorityHigh},
		}}

	case domain.StatusLost:
		if lead.LostReason == domain.LostReasonNotInterested {
			return Generation{Drafts: []Draft{
				{Type: TaskReengagement, DueDate: busday.AddCalendarDays(today, 30), Priority: PriorityLow},
			}}
		}
		return Generation{}

	default:
		return Generation{}
	}
}
