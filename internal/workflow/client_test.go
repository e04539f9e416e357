package workflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

type stubConfig struct{ url string }

func (s stubConfig) GetWorkflowWebhookURL() string { return s.url }

func TestTriggerOutreachEmailPostsPayload(t *testing.T) {
	var got triggerRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(stubConfig{url: srv.URL}, logger.New("development"))
	tenantID, leadID := uuid.New(), uuid.New()

	if err := client.TriggerOutreachEmail(context.Background(), tenantID, leadID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Trigger != TriggerOutreachEmail {
		t.Errorf("trigger = %q, want %q", got.Trigger, TriggerOutreachEmail)
	}
	if got.LeadID != leadID.String() || got.TenantID != tenantID.String() {
		t.Errorf("identity mismatch: %+v", got)
	}
}

func TestTriggerOutreachEmailNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(stubConfig{url: srv.URL}, logger.New("development"))
	if err := client.TriggerOutreachEmail(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestNilClientDropsTriggers(t *testing.T) {
	client := NewClient(stubConfig{}, logger.New("development"))
	if client != nil {
		t.Fatal("expected nil client when webhook url is not configured")
	}
	if err := client.TriggerOutreachEmail(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("nil client must be a no-op, got %v", err)
	}
}
