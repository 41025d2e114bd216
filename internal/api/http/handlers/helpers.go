package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/evently/internal/api/dto"
	"github.com/spec-kit/evently/internal/auth"
	"github.com/spec-kit/evently/internal/service"
	apperrors "github.com/spec-kit/evently/pkg/util"
)

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

// bind decodes the JSON body into req and validates it.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"body": err.Error()})
	}
	return dto.Validate(req)
}

func currentActor(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.ActorFromUser(principal.User), nil
}
