package middleware

import (
	"errors"
	"flavorpal-backend/domain"
	"flavorpal-backend/internal/api/presenters"
	"github.com/gofiber/fiber/v2"
	"strings"
)

// JWTValidator is the part of jwt.JWTService the auth middleware needs.
type JWTValidator interface {
	GetUserIDByToken(token string) (string, string, error)
}

// AuthMiddleware accepts "Authorization: Bearer <token>" and stores the
// caller's id and role in c.Locals("user_id") and c.Locals("role").
func (m *middleware) AuthMiddleware(jwtService JWTValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, domain.ErrTokenNotFound)
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		userID, role, err := jwtService.GetUserIDByToken(token)
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
			}
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, domain.ErrTokenInvalid)
		}

		if role != domain.RoleAuthenticated {
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MesaageUserNotAllowed, domain.ErrUserNotAllowed)
		}

		c.Locals("user_id", userID)
		c.Locals("role", role)
		return c.Next()
	}
}
