package locatorapi

import (
	apphttp "storelocator/internal/http"
	"storelocator/internal/locator"
	"storelocator/internal/mapview"
	"storelocator/platform/deps"
	"storelocator/platform/logger"
	"storelocator/platform/metrics"
	"storelocator/platform/validator"
)

// Module wires the locator HTTP routes.
type Module struct {
	handler *Handler
	service *Service
}

func NewModule(repo locator.StoreLoader, mapLib *deps.Handle[mapview.Library], cfg ServiceConfig, val *validator.Validator, log *logger.Logger, m *metrics.Metrics) *Module {
	svc := NewService(repo, mapLib, cfg, log, m)
	return &Module{handler: NewHandler(svc, val), service: svc}
}

// Service exposes the locator service for non-HTTP callers.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) Name() string {
	return "locator"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/locator", m.handler.Locator)

	group := ctx.V1.Group("/stores")
	group.GET("", m.handler.ListStores)
	group.GET("/:id", m.handler.GetStore)
	group.GET("/:id/qr.png", m.handler.StoreQRCode)
}

var _ apphttp.Module = (*Module)(nil)
