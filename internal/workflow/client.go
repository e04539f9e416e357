package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/logger"

	"github.com/google/uuid"
)

// TriggerOutreachEmail is the trigger name the automation platform listens for
// when a lead saturates the not-reached counter.
const TriggerOutreachEmail = "lead.outreach_email"

// Client posts workflow triggers to the external automation platform.
// A nil Client is valid and drops every trigger.
type Client struct {
	webhookURL string
	http       *http.Client
	log        *logger.Logger
}

type triggerRequest struct {
	Trigger  string `json:"trigger"`
	LeadID   string `json:"leadId"`
	TenantID string `json:"tenantId"`
	SentAt   string `json:"sentAt"`
}

func NewClient(cfg config.WorkflowConfig, log *logger.Logger) *Client {
	if cfg.GetWorkflowWebhookURL() == "" {
		return nil
	}

	return &Client{
		webhookURL: strings.TrimRight(cfg.GetWorkflowWebhookURL(), "/"),
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// TriggerOutreachEmail fires the outreach-email automation for a lead. The
// call is best-effort: callers log failures and move on.
func (c *Client) TriggerOutreachEmail(ctx context.Context, tenantID, leadID uuid.UUID) error {
	if c == nil {
		return nil
	}
	return c.fire(ctx, triggerRequest{
		Trigger:  TriggerOutreachEmail,
		LeadID:   leadID.String(),
		TenantID: tenantID.String(),
		SentAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (c *Client) fire(ctx context.Context, payload triggerRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal workflow payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("workflow request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("workflow endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("workflow trigger sent", "trigger", payload.Trigger, "leadId", payload.LeadID)
	return nil
}
