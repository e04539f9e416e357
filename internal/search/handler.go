package search

import (
	"context"
	"strings"

	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/internal/leads/transport"
	"leaddesk_backend/platform/httpkit"
	"leaddesk_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadFinder is the slice of the lead store search needs.
type LeadFinder interface {
	Search(ctx context.Context, tenantID uuid.UUID, query string, limit int) ([]repository.Lead, error)
}

type Handler struct {
	leads   LeadFinder
	history *History
	log     *logger.Logger
}

func NewHandler(leads LeadFinder, history *History, log *logger.Logger) *Handler {
	return &Handler{leads: leads, history: history, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Search)
	rg.GET("/history", h.Recent)
	rg.DELETE("/history", h.Clear)
}

func (h *Handler) Search(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		httpkit.Error(c, 400, "query parameter q is required", nil)
		return
	}

	leads, err := h.leads.Search(c.Request.Context(), identity.TenantID(), query, 20)
	if httpkit.HandleError(c, err) {
		return
	}

	if h.history != nil {
		if err := h.history.Record(c.Request.Context(), identity.DeviceID(), query); err != nil {
			// History is a convenience; a redis hiccup never fails the search.
			h.log.Error("search history record failed", "error", err)
		}
	}

	httpkit.OK(c, gin.H{"items": transport.ToLeadResponses(leads)})
}

func (h *Handler) Recent(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if h.history == nil {
		httpkit.OK(c, gin.H{"items": []string{}})
		return
	}

	queries, err := h.history.Recent(c.Request.Context(), identity.DeviceID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": queries})
}

func (h *Handler) Clear(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if h.history != nil {
		if err := h.history.Clear(c.Request.Context(), identity.DeviceID()); httpkit.HandleError(c, err) {
			return
		}
	}

	httpkit.NoContent(c)
}
