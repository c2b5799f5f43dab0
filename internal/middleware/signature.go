package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/gofiber/fiber/v2"
)

const SignatureHeader = "X-Hub-Signature"

func digest(secret string, body []byte) []byte {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// Sign returns the X-Hub-Signature value for body under secret.
func Sign(secret string, body []byte) string {
	return "sha1=" + hex.EncodeToString(digest(secret, body))
}

// VerifySignature checks the HMAC-SHA1 of the raw request body. A missing
// header is logged and let through; a wrong one is rejected with 403.
func VerifySignature(appSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(SignatureHeader)
		if header == "" {
			slog.Warn("webhook signature missing",
				"request_id", c.Locals("requestid"),
				"ip", c.IP(),
			)
			return c.Next()
		}

		if !signatureMatches(appSecret, header, c.Body()) {
			slog.Warn("webhook signature mismatch",
				"request_id", c.Locals("requestid"),
				"ip", c.IP(),
			)
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid signature",
			})
		}
		return c.Next()
	}
}

func signatureMatches(secret, header string, body []byte) bool {
	encoded, ok := strings.CutPrefix(header, "sha1=")
	if !ok {
		return false
	}
	given, err := hex.DecodeString(encoded)
	if err != nil {
		return false
	}
	return hmac.Equal(given, digest(secret, body))
}
