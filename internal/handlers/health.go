package handlers

import (
	"context"
	"time"

	"leon/internal/health"
	"leon/internal/store"

	"github.com/gofiber/fiber/v2"
)

const livenessText = "🔥 Servidor de León está activo!"

// HealthHandler handles liveness and health check requests
type HealthHandler struct {
	pinger       store.Pinger
	knowledge    store.KnowledgeStore
	dependencies *health.Service
}

// NewHealthHandler creates a new health handler. dependencies may be nil.
func NewHealthHandler(pinger store.Pinger, knowledge store.KnowledgeStore, dependencies *health.Service) *HealthHandler {
	return &HealthHandler{pinger: pinger, knowledge: knowledge, dependencies: dependencies}
}

// Root responds with the plain-text liveness message
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.SendString(livenessText)
}

// Handle responds with store reachability and the number of stored lessons
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, storeStatus := "healthy", "ok"
	code := fiber.StatusOK
	if err := h.pinger.Ping(ctx); err != nil {
		status, storeStatus = "unhealthy", err.Error()
		code = fiber.StatusServiceUnavailable
	}

	resp := fiber.Map{
		"status":    status,
		"store":     storeStatus,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if code == fiber.StatusOK {
		if count, err := h.knowledge.Count(ctx); err == nil {
			resp["knowledge"] = count
		}
	}
	if deps := h.dependencies.Snapshot(); len(deps) > 0 {
		resp["dependencies"] = deps
	}

	return c.Status(code).JSON(resp)
}
