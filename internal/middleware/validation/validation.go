package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// bannedPatterns block prompt-injection attempts before they reach the
// model.
var bannedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(?:all|any)\s+previous\s+instructions`),
	regexp.MustCompile(`(?i)pretend\s+to\s+be`),
	regexp.MustCompile(`(?i)leak\s+.*prompt`),
	regexp.MustCompile(`(?i)reveal\s+.*system`),
}

var whitespaceRe = regexp.MustCompile(`\s+`)

const blockedMessage = "That request was blocked because it attempts to override safety instructions."

type Config struct {
	MaxQuestionLength int
	MaxContextLength  int
	Logger            *zap.Logger
}

type askBody struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
	Context    string `json:"context"`
}

// AskMiddleware validates and sanitizes the ask payload, storing the
// cleaned body in Locals("ask_body") for the handler.
func AskMiddleware(cfg Config) fiber.Handler {
	if cfg.MaxQuestionLength == 0 {
		cfg.MaxQuestionLength = 500
	}
	if cfg.MaxContextLength == 0 {
		cfg.MaxContextLength = 1500
	}

	return func(c *fiber.Ctx) error {
		var body askBody
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		body.DocumentID = strings.TrimSpace(body.DocumentID)
		body.Question = sanitize(body.Question)
		body.Context = sanitize(body.Context)

		if body.DocumentID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "document_id is required",
			})
		}
		if body.Question == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "question is required",
			})
		}
		if len(body.Question) > cfg.MaxQuestionLength {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "question exceeds maximum length",
			})
		}
		if len(body.Context) > cfg.MaxContextLength {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "context exceeds maximum length",
			})
		}

		if containsBannedPattern(body.Question) || containsBannedPattern(body.Context) {
			cfg.Logger.Warn("Blocked prompt-injection attempt",
				zap.String("ip", c.IP()),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": blockedMessage,
			})
		}

		c.Locals("ask_body", body)
		return c.Next()
	}
}

func containsBannedPattern(text string) bool {
	for _, pattern := range bannedPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

func sanitize(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = whitespaceRe.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// AskBody returns the sanitized payload stored by AskMiddleware.
func AskBody(c *fiber.Ctx) (documentID, question, context string, ok bool) {
	body, castOK := c.Locals("ask_body").(askBody)
	if !castOK {
		return "", "", "", false
	}
	return body.DocumentID, body.Question, body.Context, true
}
