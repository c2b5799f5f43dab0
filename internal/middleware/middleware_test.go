package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/config"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "app-secret"

func signedApp() *fiber.App {
	app := fiber.New()
	app.Post("/webhook", VerifySignature(secret), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestVerifySignature(t *testing.T) {
	body := `{"object":"page","entry":[]}`

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", Sign(secret, []byte(body)), fiber.StatusOK},
		{"valid upper hex", "sha1=" + strings.ToUpper(strings.TrimPrefix(Sign(secret, []byte(body)), "sha1=")), fiber.StatusOK},
		{"missing", "", fiber.StatusOK},
		{"wrong secret", Sign("other", []byte(body)), fiber.StatusForbidden},
		{"no prefix", strings.TrimPrefix(Sign(secret, []byte(body)), "sha1="), fiber.StatusForbidden},
		{"not hex", "sha1=zz", fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			if tt.header != "" {
				req.Header.Set(SignatureHeader, tt.header)
			}
			resp, err := signedApp().Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSignatureCoversBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(`{"object":"page"}`))
	req.Header.Set(SignatureHeader, Sign(secret, []byte(`{"object":"user"}`)))

	resp, err := signedApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

type users map[string]string

func (u users) GetUser(_ context.Context, id string) (*models.User, error) {
	role, ok := u[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &models.User{FacebookID: id, Role: role}, nil
}

func adminApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	lookup := users{"mod": models.RoleModerator, "u1": models.RoleUser}
	app.Get("/admin", AdminRequired(cfg, lookup), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func bearer(t *testing.T, key, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub, "exp": exp.Unix()})
	s, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return "Bearer " + s
}

func TestAdminRequired(t *testing.T) {
	cfg := &config.Config{JWTSecret: "jwt-secret", AdminToken: "ops-token"}
	later := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"admin token", map[string]string{"X-Admin-Token": "ops-token"}, fiber.StatusOK},
		{"wrong admin token", map[string]string{"X-Admin-Token": "nope"}, fiber.StatusUnauthorized},
		{"moderator jwt", map[string]string{"Authorization": bearer(t, "jwt-secret", "mod", later)}, fiber.StatusOK},
		{"user jwt", map[string]string{"Authorization": bearer(t, "jwt-secret", "u1", later)}, fiber.StatusForbidden},
		{"unknown sub", map[string]string{"Authorization": bearer(t, "jwt-secret", "ghost", later)}, fiber.StatusForbidden},
		{"expired jwt", map[string]string{"Authorization": bearer(t, "jwt-secret", "mod", time.Now().Add(-time.Hour))}, fiber.StatusUnauthorized},
		{"foreign key", map[string]string{"Authorization": bearer(t, "other", "mod", later)}, fiber.StatusUnauthorized},
		{"nothing", nil, fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp, err := adminApp(cfg).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAdminRequiredWithoutJWTSecret(t *testing.T) {
	cfg := &config.Config{AdminToken: "ops-token"}

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", bearer(t, "whatever", "mod", time.Now().Add(time.Hour)))
	resp, err := adminApp(cfg).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
