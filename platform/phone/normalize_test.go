package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"local notation", "0612345678", "+31612345678"},
		{"already e164", "+31612345678", "+31612345678"},
		{"spaced local", "06 12 34 56 78", "+31612345678"},
		{"foreign e164", "+4915112345678", "+4915112345678"},
		{"garbage passes through", "not-a-number", "not-a-number"},
		{"whitespace trimmed", "  0612345678  ", "+31612345678"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.input); got != tt.want {
				t.Errorf("NormalizeE164(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	if !Valid("0612345678") {
		t.Error("expected local mobile number to be valid")
	}
	if Valid("12") {
		t.Error("expected too-short number to be invalid")
	}
	if Valid("") {
		t.Error("expected empty input to be invalid")
	}
}
