package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AIChatHandler exposes the support assistant endpoint.
type AIChatHandler struct {
	service *service.AIChatService
}

// NewAIChatHandler constructs handler.
func NewAIChatHandler(chatService *service.AIChatService) *AIChatHandler {
	return &AIChatHandler{service: chatService}
}

// Chat POST /ai/chat. Validation failures report success=false; provider
// trouble still yields a textual reply with success=true.
func (h *AIChatHandler) Chat(c *fiber.Ctx) error {
	if _, ok := auth.UserFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusUnprocessableEntity).JSON(dto.ChatResponse{
			Success: false,
			Error:   "invalid payload",
		})
	}

	history := make([]service.ChatTurn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, service.ChatTurn{Role: turn.Role, Content: turn.Content})
	}
	if err := service.ValidateChatInput(req.Message, history); err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			return c.Status(domainErr.HTTPStatus).JSON(dto.ChatResponse{
				Success: false,
				Error:   domainErr.Message,
			})
		}
		return err
	}

	reply := h.service.Chat(c.Context(), req.Message, history)
	return c.JSON(dto.ChatResponse{Success: true, Response: reply})
}
