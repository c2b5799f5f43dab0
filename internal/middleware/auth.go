package middleware

import (
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/config"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected verifies an HS256 bearer token. onSuccess runs after a valid
// token; nil means continue the chain.
func JWTProtected(cfg *config.Config, onSuccess fiber.Handler) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: onSuccess,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}
