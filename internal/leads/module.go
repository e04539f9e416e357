// Package leads provides the lead lifecycle bounded context module.
package leads

import (
	"leaddesk_backend/internal/events"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/internal/leads/handler"
	"leaddesk_backend/internal/leads/repository"
	"leaddesk_backend/internal/leads/service"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule wires the leads module. appointments and followUps are the two
// cross-context collaborators the lifecycle needs.
func NewModule(pool *pgxpool.Pool, appointments service.AppointmentChecker, followUps service.FollowUpEngine, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, appointments, followUps, bus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lifecycle service for cross-module use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the lead store for read-only cross-module use.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
