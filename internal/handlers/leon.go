package handlers

import (
	"leon/internal/models"
	"leon/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LeonHandler handles singleton endpoints
type LeonHandler struct {
	service *services.LeonService
}

// NewLeonHandler creates a new singleton handler
func NewLeonHandler(service *services.LeonService) *LeonHandler {
	return &LeonHandler{service: service}
}

// Status returns the singleton wrapped in {status, data}
// GET /status
func (h *LeonHandler) Status(c *fiber.Ctx) error {
	leon, err := h.service.Status(c.UserContext())
	if err != nil {
		return respondError(c, err, "Error al obtener los datos")
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   leon,
	})
}

// Get returns the bare singleton document
// GET /leon
func (h *LeonHandler) Get(c *fiber.Ctx) error {
	leon, err := h.service.Status(c.UserContext())
	if err != nil {
		return respondError(c, err, "Error al obtener los datos")
	}
	return c.JSON(leon)
}

// Learn applies the fixed learning update
// POST /update-leon
func (h *LeonHandler) Learn(c *fiber.Ctx) error {
	if _, err := h.service.Learn(c.UserContext()); err != nil {
		return respondError(c, err, "No se pudo actualizar a León")
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "León ha aprendido algo nuevo!",
	})
}

// Update applies a client-supplied patch
// POST /leon
func (h *LeonHandler) Update(c *fiber.Ctx) error {
	var patch models.LeonPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
		})
	}

	leon, err := h.service.Apply(c.UserContext(), patch)
	if err != nil {
		return respondError(c, err, "No se pudo actualizar a León")
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Estado de León actualizado correctamente.",
		"data":    leon,
	})
}
