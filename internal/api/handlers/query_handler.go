package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/askmyrace/backend/internal/docstore"
	"github.com/askmyrace/backend/internal/middleware/validation"
	"github.com/askmyrace/backend/internal/query"
	"github.com/askmyrace/backend/pkg/logger"
)

type QueryHandler struct {
	engine *query.Engine
}

func NewQueryHandler(engine *query.Engine) *QueryHandler {
	return &QueryHandler{
		engine: engine,
	}
}

func (h *QueryHandler) HandleAsk(c *fiber.Ctx) error {
	documentID, question, questionContext, ok := validation.AskBody(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	response, err := h.engine.Ask(c.Context(), query.AskRequest{
		DocumentID: documentID,
		Question:   question,
		Context:    questionContext,
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Document not found. Upload an athlete guide first.",
			})
		}
		logger.Error("Failed to answer question", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to answer question",
		})
	}

	return c.JSON(response)
}
