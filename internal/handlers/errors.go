package handlers

import (
	"errors"
	"log"

	"leon/internal/services"
	"leon/internal/store"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error to a status code and the error body
// {status:"error", message, error?}. The raw error is echoed for 500s only.
func respondError(c *fiber.Ctx, err error, serverMessage string) error {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrAmbiguousTopic):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "León no encontrado",
		})
	case errors.Is(err, services.ErrTopicNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	case errors.Is(err, store.ErrVersionConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":  "error",
			"message": "León fue modificado por otra petición, vuelve a leerlo e inténtalo de nuevo",
		})
	}

	log.Printf("❌ [HANDLER] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  "error",
		"message": serverMessage,
		"error":   err.Error(),
	})
}
