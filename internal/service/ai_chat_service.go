package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	maxChatMessageLength = 1000
	maxHistoryTurns      = 10

	chatSystemPrompt = "You are a helpful IT support assistant for a helpdesk system. " +
		"Provide clear, professional, and friendly responses to user questions. " +
		"Focus on IT support, troubleshooting, and common technical issues. " +
		"Keep responses concise (2-3 paragraphs max). " +
		"If you don't know something, suggest creating a support ticket for human assistance.\n\n"

	chatUnavailableMessage = "The AI assistant is not available right now. Please create a support ticket and our team will get back to you."
	chatFallbackMessage    = "I'm having trouble connecting right now. Please try again in a moment or create a support ticket for assistance."
)

// TextGenerator performs a single generation attempt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// ChatTurn is one prior exchange in the conversation.
type ChatTurn struct {
	Role    string
	Content string
}

// AIChatService is a stateless request/response wrapper around the
// external text-generation endpoint. It degrades gracefully: the caller
// always receives a textual reply, never a hard failure.
type AIChatService struct {
	generator TextGenerator
	cfg       config.AIConfig
	logger    *zap.Logger
}

// NewAIChatService constructs the service.
func NewAIChatService(generator TextGenerator, cfg config.AIConfig, logger *zap.Logger) *AIChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIChatService{generator: generator, cfg: cfg, logger: logger}
}

// ValidateChatInput checks the request shape before any work happens.
func ValidateChatInput(message string, history []ChatTurn) error {
	details := map[string]any{}
	if strings.TrimSpace(message) == "" {
		details["message"] = "required"
	} else if len(message) > maxChatMessageLength {
		details["message"] = "must be at most 1000 characters"
	}
	for _, turn := range history {
		if turn.Role != "user" && turn.Role != "assistant" {
			details["history"] = "role must be user or assistant"
			break
		}
		if turn.Content == "" {
			details["history"] = "content is required"
			break
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid chat payload", details)
	}
	return nil
}

// Chat answers a user message given a bounded recent history. When the
// service is unconfigured it short-circuits to a static unavailable
// message without any network call; otherwise it retries with backoff
// within the overall budget and masks exhaustion behind a friendly
// fallback reply.
func (s *AIChatService) Chat(ctx context.Context, message string, history []ChatTurn) string {
	if s.cfg.APIKey == "" {
		return chatUnavailableMessage
	}

	prompt := buildChatPrompt(message, history)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Budget())
	defer cancel()

	attempts := s.cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			backoff := s.cfg.BackoffBase() * time.Duration(attempt-1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				s.logger.Warn("ai chat budget exhausted during backoff", zap.Int("attempt", attempt))
				return chatFallbackMessage
			}
		}

		reply, err := s.generator.GenerateContent(ctx, prompt)
		if err == nil {
			return reply
		}
		s.logger.Error("ai chat attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err))

		if ctx.Err() != nil {
			break
		}
	}
	return chatFallbackMessage
}

func buildChatPrompt(message string, history []ChatTurn) string {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	var b strings.Builder
	b.WriteString(chatSystemPrompt)
	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, turn := range history {
			role := "Assistant"
			if turn.Role == "user" {
				role = "User"
			}
			b.WriteString(role)
			b.WriteString(": ")
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(message)
	b.WriteString("\n\nAssistant:")
	return b.String()
}
