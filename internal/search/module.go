package search

import (
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Module is the search surface implementing http.Module.
type Module struct {
	handler *Handler
}

func NewModule(leads LeadFinder, rdb *redis.Client, log *logger.Logger) *Module {
	var history *History
	if rdb != nil {
		history = NewHistory(rdb)
	}
	return &Module{handler: NewHandler(leads, history, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "search"
}

// RegisterRoutes mounts the search routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/search"))
}

var _ apphttp.Module = (*Module)(nil)
