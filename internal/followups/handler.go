package followups

import (
	"time"

	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the follow-up task HTTP surface.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates the follow-up handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the task routes on the provided group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListOpen)
	rg.POST("", h.Create)
	rg.GET("/lead/:leadId", h.ListByLead)
	rg.PATCH("/:id/complete", h.Complete)
	rg.PATCH("/:id/reschedule", h.Reschedule)
	rg.PATCH("/:id/priority", h.SetPriority)
	rg.DELETE("/:id", h.Delete)
}

type createTaskRequest struct {
	LeadID   string `json:"leadId" validate:"required,uuid"`
	Type     string `json:"type" validate:"required"`
	DueDate  string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Notes    string `json:"notes" validate:"omitempty,max=2000"`
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return
	}

	leadID, _ := uuid.Parse(req.LeadID)
	dueDate, _ := time.Parse("2006-01-02", req.DueDate)

	task, err := h.svc.CreateManual(c.Request.Context(), identity.TenantID(), CreateManualParams{
		LeadID:   leadID,
		Type:     TaskType(req.Type),
		DueDate:  dueDate,
		Priority: Priority(req.Priority),
		Notes:    req.Notes,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, task)
}

func (h *Handler) ListOpen(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	tasks, err := h.svc.ListOpen(c.Request.Context(), identity.TenantID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": tasks})
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

	tasks, err := h.svc.ListByLead(c.Request.Context(), identity.TenantID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": tasks})
}

func (h *Handler) Complete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid task id", nil)
		return
	}

	task, err := h.svc.Complete(c.Request.Context(), identity.TenantID(), taskID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, task)
}

type rescheduleRequest struct {
	DueDate string `json:"dueDate" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) Reschedule(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid task id", nil)
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return
	}

	dueDate, _ := time.Parse("2006-01-02", req.DueDate)
	task, err := h.svc.Reschedule(c.Request.Context(), identity.TenantID(), taskID, dueDate)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, task)
}

type priorityRequest struct {
	Priority string `json:"priority" validate:"required,oneof=low medium high"`
}

func (h *Handler) SetPriority(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid task id", nil)
		return
	}

	var req priorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return
	}

	task, err := h.svc.SetPriority(c.Request.Context(), identity.TenantID(), taskID, Priority(req.Priority))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, task)
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid task id", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.TenantID(), taskID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}
