package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueModeratorToken(t *testing.T) {
	h := newHarness(t)
	h.seedUser(t, "mod", models.RoleModerator)
	h.seedUser(t, "u1", models.RoleUser)

	auth := NewAuthService(h.store, "jwt-secret", time.Hour)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return fixed }

	raw, exp, err := auth.IssueModeratorToken(context.Background(), "mod")
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(time.Hour), exp)

	parsed, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return []byte("jwt-secret"), nil },
		jwt.WithTimeFunc(func() time.Time { return fixed.Add(time.Minute) }))
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "mod", claims["sub"])
	assert.Equal(t, models.RoleModerator, claims["role"])

	_, _, err = auth.IssueModeratorToken(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotModerator)

	_, _, err = auth.IssueModeratorToken(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = NewAuthService(h.store, "", 0).IssueModeratorToken(context.Background(), "mod")
	assert.ErrorIs(t, err, ErrNoJWTSecret)
}
