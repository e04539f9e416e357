// Package handler exposes the lead lifecycle HTTP surface.
package handler

import (
	"leaddesk_backend/internal/leads/domain"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/internal/leads/service"
	"leaddesk_backend/internal/leads/transport"
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
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/phone-outcome", h.RecordPhoneOutcome)
	rg.GET("/:id/history", h.History)
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return
	}

	params := service.CreateParams{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Street:     req.Street,
		ZipCode:    req.ZipCode,
		City:       req.City,
		AssigneeID: req.AssigneeID.Value,
	}
	if req.Email != "" {
		params.Email = &req.Email
	}
	if req.Source != "" {
		params.Source = &req.Source
	}

	lead, err := h.svc.Create(c.Request.Context(), identity.TenantID(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.ToLeadResponse(lead))
}

func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	params := repository.ListParams{}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			httpkit.HandleError(c, err)
			return
		}
		params.Status = &status
	}

	leads, err := h.svc.List(c.Request.Context(), identity.TenantID(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": transport.ToLeadResponses(leads)})
}

func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid lead id", nil)
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), identity.TenantID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid lead id", nil)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return
	}

	actorID := identity.UserID()
	lead, err := h.svc.Update(c.Request.Context(), identity.TenantID(), leadID, service.UpdateParams{
		Contact: contactParams(req),
		Patch:   lifecyclePatch(req),
		ActorID: &actorID,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid lead id", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.TenantID(), leadID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}

func (h *Handler) RecordPhoneOutcome(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid lead id", nil)
		return
	}

	var req transport.PhoneOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return
	}

	actorID := identity.UserID()
	lead, err := h.svc.RecordPhoneOutcome(c.Request.Context(), identity.TenantID(), leadID, domain.PhoneOutcome(req.Outcome), &actorID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) History(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid lead id", nil)
		return
	}

	changes, err := h.svc.History(c.Request.Context(), identity.TenantID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": transport.ToStatusChangeResponses(changes)})
}

func contactParams(req transport.UpdateLeadRequest) repository.UpdateContactParams {
	return repository.UpdateContactParams{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Email:           req.Email,
		AddressStreet:   req.Street,
		AddressZipCode:  req.ZipCode,
		AddressCity:     req.City,
		AssignedAgentID: req.AssigneeID.Value,
	}
}

func lifecyclePatch(req transport.UpdateLeadRequest) domain.Patch {
	patch := domain.Patch{
		NotReachedCount: req.NotReachedCount.Value,
		OfferUploaded:   req.OfferUploaded.Value,
		TVPUploaded:     req.TVPUploaded.Value,
		FollowUpDate:    req.FollowUpDate.Value,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		patch.Status = &status
	}
	if req.PhoneStatus != nil {
		outcome := domain.PhoneOutcome(*req.PhoneStatus)
		patch.PhoneStatus = &outcome
	}
	if req.LostReason.Set {
		reason := ""
		if req.LostReason.Value != nil {
			reason = *req.LostReason.Value
		}
		patch.LostReason = &reason
	}
	if req.FollowUpRequested.Set {
		patch.FollowUpRequested = req.FollowUpRequested.Value
	}
	return patch
}
