package middleware

import (
	"context"
	"crypto/subtle"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/config"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type UserLookup interface {
	GetUser(ctx context.Context, facebookID string) (*models.User, error)
}

// AdminRequired admits a request carrying the configured X-Admin-Token, or a
// valid JWT whose sub is a MODERATOR user.
func AdminRequired(cfg *config.Config, users UserLookup) fiber.Handler {
	var jwtCheck fiber.Handler
	if cfg.JWTSecret != "" {
		jwtCheck = JWTProtected(cfg, moderatorClaim(users))
	}

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" {
			given := c.Get("X-Admin-Token")
			if given != "" && subtle.ConstantTimeCompare([]byte(given), []byte(cfg.AdminToken)) == 1 {
				c.Locals("admin", "token")
				return c.Next()
			}
		}
		if jwtCheck == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		return jwtCheck(c)
	}
}

func moderatorClaim(users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid claims",
			})
		}

		sub, _ := claims["sub"].(string)
		if sub != "" {
			if user, err := users.GetUser(c.UserContext(), sub); err == nil && user.IsModerator() {
				c.Locals("admin", sub)
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Moderator access required",
		})
	}
}
