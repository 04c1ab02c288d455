package handlers

import (
	"context"

	"leon/internal/models"
	"leon/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Learner resolves a topic against the encyclopedia and stores the result
type Learner interface {
	Learn(ctx context.Context, topic string) (*models.Knowledge, error)
}

// KnowledgeHandler handles teaching, wiki learning and recall
type KnowledgeHandler struct {
	knowledge *services.KnowledgeService
	learner   Learner
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(knowledge *services.KnowledgeService, learner Learner) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge, learner: learner}
}

// TeachRequest is the body of POST /teach-leon
type TeachRequest struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// Teach stores a lesson supplied by the client
// POST /teach-leon
func (h *KnowledgeHandler) Teach(c *fiber.Ctx) error {
	var req TeachRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
		})
	}

	knowledge, err := h.knowledge.Teach(c.UserContext(), req.Topic, req.Content, req.Source)
	if err != nil {
		return respondError(c, err, "No se pudo guardar el conocimiento")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "León ha aprendido sobre " + knowledge.Topic,
		"data":    knowledge,
	})
}

// LearnFromWiki resolves ?topic= against the encyclopedia
// GET /learn-from-wiki
func (h *KnowledgeHandler) LearnFromWiki(c *fiber.Ctx) error {
	// Query values alias the request buffer, which fasthttp reuses
	topic := utils.CopyString(c.Query("topic"))
	if topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "topic query parameter is required",
		})
	}

	knowledge, err := h.learner.Learn(c.UserContext(), topic)
	if err != nil {
		return respondError(c, err, "No se pudo aprender sobre el tema")
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   knowledge,
	})
}

// Recall returns stored lessons about ?topic=
// GET /recall-leon
func (h *KnowledgeHandler) Recall(c *fiber.Ctx) error {
	// Query values alias the request buffer, which fasthttp reuses
	topic := utils.CopyString(c.Query("topic"))
	if topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "topic query parameter is required",
		})
	}

	records, err := h.knowledge.Recall(c.UserContext(), topic)
	if err != nil {
		return respondError(c, err, "No se pudo recordar el tema")
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   records,
	})
}
