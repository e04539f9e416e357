package domain

import "testing"

func statusPtr(s Status) *Status             { return &s }
func outcomePtr(p PhoneOutcome) *PhoneOutcome { return &p }
func boolPtr(b bool) *bool                   { return &b }
func intPtr(n int) *int                      { return &n }

func snapshot(status Status) LeadSnapshot {
	return LeadSnapshot{Status: status}
}

func TestResolveStatusForcedAlwaysWins(t *testing.T) {
	in := TransitionInput{
		Lead: snapshot(StatusContacted),
		Patch: Patch{
			ForcedStatus:  statusPtr(StatusAppointmentScheduled),
			Status:        statusPtr(StatusLost),
			OfferUploaded: boolPtr(true),
			PhoneStatus:   outcomePtr(PhoneReached),
		},
		HasFutureAppointment: false,
	}

	got, err := ResolveStatus(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusAppointmentScheduled {
		t.Fatalf("forced status did not win: got %s", got)
	}
}

func TestResolveStatusExplicitBeatsDerived(t *testing.T) {
	in := TransitionInput{
		Lead: snapshot(StatusContacted),
		Patch: Patch{
			Status:        statusPtr(StatusLost),
			OfferUploaded: boolPtr(true),
		},
	}

	got, err := ResolveStatus(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusLost {
		t.Fatalf("explicit status did not win: got %s", got)
	}
}

func TestResolveStatusExplicitSameAsCurrentFallsThrough(t *testing.T) {
	// Re-sending the current status is not an explicit transition; derived
	// rules still apply.
	in := TransitionInput{
		Lead: snapshot(StatusContacted),
		Patch: Patch{
			Status:        statusPtr(StatusContacted),
			OfferUploaded: boolPtr(true),
		},
	}

	got, err := ResolveStatus(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusOfferSubmitted {
		t.Fatalf("got %s, want OfferSubmitted", got)
	}
}

func TestResolveStatusOfferOutranksContact(t *testing.T) {
	// Offer progress outranks contact progress: a patch carrying both an
	// offer upload and a reached outcome must land on OfferSubmitted.
	in := TransitionInput{
		Lead: snapshot(StatusContacted),
		Patch: Patch{
			OfferUploaded: boolPtr(true),
			PhoneStatus:   outcomePtr(PhoneReached),
		},
		HasFutureAppointment: true,
	}

	got, err := ResolveStatus(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusOfferSubmitted {
		t.Fatalf("got %s, want OfferSubmitted", got)
	}
}

func TestResolveStatusOfferFlagMustTransition(t *testing.T) {
	// Offer already uploaded: re-sending true is not a new upload.
	lead := snapshot(StatusOfferSubmitted)
	lead.OfferUploaded = true

	got, err := ResolveStatus(TransitionInput{
		Lead:  lead,
		Patch: Patch{OfferUploaded: boolPtr(true)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusOfferSubmitted {
		t.Fatalf("got %s, want unchanged OfferSubmitted", got)
	}
}

func TestResolveStatusTVPUpload(t *testing.T) {
	in := TransitionInput{
		Lead:  snapshot(StatusInProgress),
		Patch: Patch{TVPUploaded: boolPtr(true)},
	}

	got, err := ResolveStatus(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusTVP {
		t.Fatalf("got %s, want TVP", got)
	}
}

func TestResolveStatusReachedDependsOnAppointment(t *testing.T) {
	tests := []struct {
		name           string
		hasAppointment bool
		want           Status
	}{
		{"future appointment", true, StatusAppointmentScheduled},
		{"no appointment", false, StatusInProgress},
	}

	for _, tc := range tests {
		got, err := ResolveStatus(TransitionInput{
			Lead:                 snapshot(StatusContacted),
			Patch:                Patch{PhoneStatus: outcomePtr(PhoneReached)},
			HasFutureAppointment: tc.hasAppointment,
		})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestResolveStatusNotReachedCascade(t *testing.T) {
	lead := snapshot(StatusContacted)

	for i, want := range []Status{StatusNotReached1x, StatusNotReached2x, StatusNotReached3x, StatusNotReached3x} {
		in := TransitionInput{
			Lead:  lead,
			Patch: Patch{PhoneStatus: outcomePtr(PhoneNotReached)},
		}
		got, err := ResolveStatus(in)
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i+1, err)
		}
		if got != want {
			t.Fatalf("attempt %d: got %s, want %s", i+1, got, want)
		}

		lead.Status = got
		lead.NotReachedCount = NextNotReachedCount(lead, in.Patch)
	}

	if lead.NotReachedCount != MaxNotReachedCount {
		t.Fatalf("counter = %d, want pinned at %d", lead.NotReachedCount, MaxNotReachedCount)
	}
}

func TestNextNotReachedCountSaturates(t *testing.T) {
	tests := []struct {
		current int
		patch   Patch
		want    int
	}{
		{0, Patch{PhoneStatus: outcomePtr(PhoneNotReached)}, 1},
		{2, Patch{PhoneStatus: outcomePtr(PhoneNotReached)}, 3},
		{3, Patch{PhoneStatus: outcomePtr(PhoneNotReached)}, 3},
		{0, Patch{NotReachedCount: intPtr(7)}, 3},
		{0, Patch{NotReachedCount: intPtr(-1)}, 0},
		{2, Patch{}, 2},
	}

	for _, tc := range tests {
		lead := snapshot(StatusContacted)
		lead.NotReachedCount = tc.current
		if got := NextNotReachedCount(lead, tc.patch); got != tc.want {
			t.Errorf("NextNotReachedCount(current=%d) = %d, want %d", tc.current, got, tc.want)
		}
	}
}

func TestResolveStatusExplicitCounterDerivesStatus(t *testing.T) {
	got, err := ResolveStatus(TransitionInput{
		Lead:  snapshot(StatusContacted),
		Patch: Patch{NotReachedCount: intPtr(2)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusNotReached2x {
		t.Fatalf("got %s, want NotReached2x", got)
	}
}

func TestResolveStatusNoOp(t *testing.T) {
	got, err := ResolveStatus(TransitionInput{
		Lead:  snapshot(StatusWon),
		Patch: Patch{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StatusWon {
		t.Fatalf("got %s, want unchanged Won", got)
	}
}

func TestResolveStatusDeterministic(t *testing.T) {
	in := TransitionInput{
		Lead: snapshot(StatusContacted),
		Patch: Patch{
			PhoneStatus: outcomePtr(PhoneNotReached),
		},
	}

	first, err := ResolveStatus(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ResolveStatus(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("resolver not deterministic: %s then %s", first, second)
	}
}

func TestResolveStatusRejectsUnknownValues(t *testing.T) {
	bad := Status("Unknowable")
	badOutcome := PhoneOutcome("shouted")

	cases := []TransitionInput{
		{Lead: snapshot(bad)},
		{Lead: snapshot(StatusNew), Patch: Patch{Status: &bad}},
		{Lead: snapshot(StatusNew), Patch: Patch{ForcedStatus: &bad}},
		{Lead: snapshot(StatusNew), Patch: Patch{PhoneStatus: &badOutcome}},
	}

	for i, in := range cases {
		if _, err := ResolveStatus(in); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestRulePrecedenceOrder(t *testing.T) {
	// The table order is observable behavior; lock it down.
	want := []string{
		"forced_status",
		"explicit_status",
		"offer_uploaded",
		"tvp_uploaded",
		"phone_reached",
		"not_reached_counter",
	}

	if len(Rules) != len(want) {
		t.Fatalf("rule count = %d, want %d", len(Rules), len(want))
	}
	for i, name := range want {
		if Rules[i].Name != name {
			t.Errorf("rule %d = %s, want %s", i, Rules[i].Name, name)
		}
	}
}
