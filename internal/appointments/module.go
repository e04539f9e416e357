// Package appointments provides the appointment booking bounded context.
package appointments

import (
	"leaddesk_backend/internal/appointments/handler"
	"leaddesk_backend/internal/appointments/repository"
	"leaddesk_backend/internal/appointments/service"
	"leaddesk_backend/internal/events"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the appointments bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

func NewModule(pool *pgxpool.Pool, leads service.LeadLifecycle, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, leads, bus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "appointments"
}

// Repository returns the appointment store. The leads module uses it as its
// appointment checker; the dashboard reads scheduled appointments from it.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the appointment routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/appointments"))
}

var _ apphttp.Module = (*Module)(nil)
