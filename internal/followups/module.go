package followups

import (
	"leaddesk_backend/internal/events"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the follow-up tasks bounded context.
type Module struct {
	handler *Handler
	service *Service
	repo    *Repository
}

// NewModule wires the follow-up module. outreach and reminders may be nil.
func NewModule(pool *pgxpool.Pool, outreach OutreachTrigger, reminders ReminderScheduler, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := New(repo, outreach, reminders, bus, log)

	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "followups"
}

// Service returns the follow-up service for cross-module use.
func (m *Module) Service() *Service {
	return m.service
}

// Repository returns the task repository for read-only cross-module use
// (SLA evaluation, dashboard aggregation).
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts the task routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/tasks"))
}

var _ apphttp.Module = (*Module)(nil)
