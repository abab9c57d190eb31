package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wuyan/lifescope/internal/api/response"
	apperrors "github.com/wuyan/lifescope/pkg/util"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName  string
	version      string
	dependencies map[string]Pinger
}

// NewHealthHandler returns a new handler instance. dependencies are keyed by
// the name reported in the readiness payload.
func NewHealthHandler(serviceName, version string, dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, dependencies: dependencies}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	status := make(map[string]string, len(h.dependencies))
	var failed error
	for name, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			status[name] = err.Error()
			failed = fmt.Errorf("%s unavailable: %w", name, err)
			continue
		}
		status[name] = "ok"
	}

	if failed != nil {
		return apperrors.NewInternalError(failed)
	}
	return response.OK(c, fiber.Map{
		"status":       "ready",
		"dependencies": status,
	})
}
