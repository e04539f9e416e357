package sla

import (
	"time"

	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the breach alert surface. Suppression is keyed by the
// caller's device, taken from the request identity.
type Handler struct {
	evaluator *Evaluator
	devices   *DeviceState
	val       *validator.Validator
}

func NewHandler(evaluator *Evaluator, devices *DeviceState, val *validator.Validator) *Handler {
	return &Handler{evaluator: evaluator, devices: devices, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/breaches", h.ListBreaches)
	rg.POST("/breaches/snooze", h.Snooze)
	rg.POST("/breaches/snooze-all", h.SnoozeAll)
	rg.POST("/breaches/acknowledge", h.Acknowledge)
}

func (h *Handler) ListBreaches(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	breaches := h.evaluator.CurrentBreaches(identity.TenantID())

	if h.devices != nil && identity.DeviceID() != "" {
		visible, err := h.devices.FilterVisible(c.Request.Context(), identity.DeviceID(), breaches)
		if err != nil {
			// Suppression is cosmetic; on redis trouble show everything.
			httpkit.OK(c, gin.H{"items": breaches})
			return
		}
		breaches = visible
	}

	httpkit.OK(c, gin.H{"items": breaches})
}

type breachRef struct {
	LeadID string `json:"leadId" validate:"required,uuid"`
	Type   string `json:"type" validate:"required,oneof=contact_24h offer_48h followup_overdue"`
}

// requireDevices rejects suppression writes when redis is not configured.
func (h *Handler) requireDevices(c *gin.Context) bool {
	if h.devices == nil {
		httpkit.Error(c, 503, "alert suppression is not configured", nil)
		return false
	}
	return true
}

type snoozeRequest struct {
	breachRef
	Until time.Time `json:"until" validate:"required"`
}

func (h *Handler) Snooze(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	if identity.DeviceID() == "" {
		httpkit.Error(c, 400, "device id required", nil)
		return
	}
	if !h.requireDevices(c) {
		return
	}

	var req snoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return
	}

	leadID, _ := uuid.Parse(req.LeadID)
	err := h.devices.Snooze(c.Request.Context(), identity.DeviceID(), Key{LeadID: leadID, Type: BreachType(req.Type)}, req.Until)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}

type snoozeAllRequest struct {
	Until time.Time `json:"until" validate:"required"`
}

// SnoozeAll snoozes every breach currently visible to the device with a
// single shared wake-up time.
func (h *Handler) SnoozeAll(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	if identity.DeviceID() == "" {
		httpkit.Error(c, 400, "device id required", nil)
		return
	}
	if !h.requireDevices(c) {
		return
	}

	var req snoozeAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return
	}

	breaches := h.evaluator.CurrentBreaches(identity.TenantID())
	keys := make([]Key, len(breaches))
	for i, b := range breaches {
		keys[i] = b.Key()
	}

	err := h.devices.SnoozeAll(c.Request.Context(), identity.DeviceID(), keys, req.Until)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}

func (h *Handler) Acknowledge(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	if identity.DeviceID() == "" {
		httpkit.Error(c, 400, "device id required", nil)
		return
	}
	if !h.requireDevices(c) {
		return
	}

	var req breachRef
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return
	}

	leadID, _ := uuid.Parse(req.LeadID)
	err := h.devices.Acknowledge(c.Request.Context(), identity.DeviceID(), Key{LeadID: leadID, Type: BreachType(req.Type)})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}
