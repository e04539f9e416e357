package dashboard

import (
	apphttp "leaddesk_backend/internal/http"
)

// Module is the dashboard aggregation surface implementing http.Module.
type Module struct {
	handler *Handler
}

func NewModule(tasks TaskSource, appointments AppointmentSource) *Module {
	return &Module{handler: NewHandler(New(tasks, appointments))}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dashboard"
}

// RegisterRoutes mounts the dashboard routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/dashboard"))
}

var _ apphttp.Module = (*Module)(nil)
