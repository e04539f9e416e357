package domain

import "leaddesk_backend/platform/apperr"

// TransitionInput bundles everything the resolver needs. Callers gather all
// inputs first (lead snapshot, future-appointment flag) so the resolver
// itself stays free of I/O.
type TransitionInput struct {
	Lead                 LeadSnapshot
	Patch                Patch
	HasFutureAppointment bool
}

// transitionRule is a single precedence entry: the first rule whose Applies
// predicate matches decides the status. The order of Rules is load-bearing:
// a lead that is simultaneously "offer uploaded" and "phone reached" must
// land on OfferSubmitted, because offer progress outranks contact progress.
type transitionRule struct {
	Name    string
	Applies func(in TransitionInput) bool
	Result  func(in TransitionInput) Status
}

// Rules is the ordered transition precedence table, evaluated top-down.
// Exposed so the precedence itself is inspectable and testable.
var Rules = []transitionRule{
	{
		Name: "forced_status",
		Applies: func(in TransitionInput) bool {
			return in.Patch.ForcedStatus != nil
		},
		Result: func(in TransitionInput) Status {
			return *in.Patch.ForcedStatus
		},
	},
	{
		Name: "explicit_status",
		Applies: func(in TransitionInput) bool {
			return in.Patch.Status != nil && *in.Patch.Status != in.Lead.Status
		},
		Result: func(in TransitionInput) Status {
			return *in.Patch.Status
		},
	},
	{
		Name: "offer_uploaded",
		Applies: func(in TransitionInput) bool {
			return in.Patch.OfferUploaded != nil && *in.Patch.OfferUploaded && !in.Lead.OfferUploaded
		},
		Result: func(in TransitionInput) Status {
			return StatusOfferSubmitted
		},
	},
	{
		Name: "tvp_uploaded",
		Applies: func(in TransitionInput) bool {
			return in.Patch.TVPUploaded != nil && *in.Patch.TVPUploaded && !in.Lead.TVPUploaded
		},
		Result: func(in TransitionInput) Status {
			return StatusTVP
		},
	},
	{
		Name: "phone_reached",
		Applies: func(in TransitionInput) bool {
			return in.Patch.PhoneStatus != nil && *in.Patch.PhoneStatus == PhoneReached
		},
		Result: func(in TransitionInput) Status {
			if in.HasFutureAppointment {
				return StatusAppointmentScheduled
			}
			return StatusInProgress
		},
	},
	{
		Name: "not_reached_counter",
		Applies: func(in TransitionInput) bool {
			return NextNotReachedCount(in.Lead, in.Patch) >= 1
		},
		Result: func(in TransitionInput) Status {
			switch NextNotReachedCount(in.Lead, in.Patch) {
			case 1:
				return StatusNotReached1x
			case 2:
				return StatusNotReached2x
			default:
				return StatusNotReached3x
			}
		},
	},
}

// ResolveStatus resolves the next lead status for a proposed patch.
// It is a pure function of (snapshot, patch, future-appointment flag): no
// side effects, deterministic, and it never mutates its inputs. All
// persistence and task generation is orchestrated by the caller.
func ResolveStatus(in TransitionInput) (Status, error) {
	if err := validateInput(in); err != nil {
		return "", err
	}

	for _, rule := range Rules {
		if rule.Applies(in) {
			return rule.Result(in), nil
		}
	}
	return in.Lead.Status, nil
}

// NextNotReachedCount computes the counter value the patch implies.
// Recording a not-reached attempt increments by one; an explicit counter in
// the patch wins otherwise; the counter saturates at MaxNotReachedCount.
func NextNotReachedCount(lead LeadSnapshot, patch Patch) int {
	if patch.PhoneStatus != nil && *patch.PhoneStatus == PhoneNotReached {
		return saturate(lead.NotReachedCount + 1)
	}
	if patch.NotReachedCount != nil {
		return saturate(*patch.NotReachedCount)
	}
	return saturate(lead.NotReachedCount)
}

func saturate(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxNotReachedCount {
		return MaxNotReachedCount
	}
	return n
}

func validateInput(in TransitionInput) error {
	if !in.Lead.Status.IsValid() {
		return apperr.Validation("unknown lead status: " + string(in.Lead.Status))
	}
	if in.Patch.ForcedStatus != nil && !in.Patch.ForcedStatus.IsValid() {
		return apperr.Validation("unknown forced status: " + string(*in.Patch.ForcedStatus))
	}
	if in.Patch.Status != nil && !in.Patch.Status.IsValid() {
		return apperr.Validation("unknown lead status: " + string(*in.Patch.Status))
	}
	if in.Patch.PhoneStatus != nil && !in.Patch.PhoneStatus.IsValid() {
		return apperr.Validation("unknown phone outcome: " + string(*in.Patch.PhoneStatus))
	}
	return nil
}
