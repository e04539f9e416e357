package sla

import (
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/platform/validator"
)

// Module is the SLA monitoring bounded context implementing http.Module.
// The evaluator itself is owned by the caller so the API and scheduler
// binaries can share the wiring but run it in only one place.
type Module struct {
	handler *Handler
}

func NewModule(evaluator *Evaluator, devices *DeviceState, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(evaluator, devices, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "sla"
}

// RegisterRoutes mounts the breach routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/sla"))
}

var _ apphttp.Module = (*Module)(nil)
