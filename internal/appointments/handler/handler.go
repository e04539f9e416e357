// Package handler exposes the appointments HTTP surface.
package handler

import (
	"leaddesk_backend/internal/appointments/service"
	"leaddesk_backend/internal/appointments/transport"
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Book)
	rg.GET("/:id", h.Get)
	rg.GET("/lead/:leadId", h.ListByLead)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) Book(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return
	}

	leadID, _ := uuid.Parse(req.LeadID)
	params := service.BookParams{
		LeadID:      leadID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if req.LeadStatus != nil {
		status := domain.Status(*req.LeadStatus)
		params.ForcedLeadStatus = &status
	}

	appt, err := h.svc.Book(c.Request.Context(), identity.TenantID(), identity.UserID(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.ToAppointmentResponse(appt))
}

func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid appointment id", nil)
		return
	}

	appt, err := h.svc.Get(c.Request.Context(), identity.TenantID(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAppointmentResponse(appt))
}

func (h *Handler) ListByLead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, 400, "invalid lead id", nil)
		return
	}

	items, err := h.svc.ListByLead(c.Request.Context(), identity.TenantID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": transport.ToAppointmentResponses(items)})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid appointment id", nil)
		return
	}

	var req transport.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return
	}

	appt, err := h.svc.UpdateStatus(c.Request.Context(), identity.TenantID(), id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAppointmentResponse(appt))
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid appointment id", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.TenantID(), id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}
