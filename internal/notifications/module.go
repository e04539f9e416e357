package notifications

import (
	"leaddesk_backend/internal/events"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the notification inbox bounded context implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule wires the inbox. It subscribes to breach events on the given bus.
func NewModule(pool *pgxpool.Pool, tasks TaskActions, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := New(repo, tasks, bus, log)
	if bus != nil {
		svc.SubscribeBreaches(bus)
	}

	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notifications"
}

// Service returns the inbox service; the scheduler worker uses it as its
// reminder notifier.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts the inbox routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/notifications"))
}

var _ apphttp.Module = (*Module)(nil)
