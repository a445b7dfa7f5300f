// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"storelocator/platform/config"
	"storelocator/platform/logger"
	"storelocator/platform/metrics"
)

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP settings only).
	Config config.HTTPConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (e.g., Redis ping). Optional.
	Health HealthChecker
	// Metrics is exposed on /metrics when set.
	Metrics *metrics.Metrics
	// Modules contains all HTTP-facing modules. The static module
	// registers the fallback route and should come last.
	Modules []Module
}
