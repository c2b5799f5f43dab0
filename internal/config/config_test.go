package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MESSENGER_APP_SECRET", "secret")
	t.Setenv("MESSENGER_VALIDATION_TOKEN", "verify-me")
	t.Setenv("MESSENGER_PAGE_ACCESS_TOKEN", "page-token")
	t.Setenv("SERVER_URL", "https://bot.example.com/")
}

func TestLoad(t *testing.T) {
	t.Run("reads mandatory values and defaults", func(t *testing.T) {
		setRequired(t)

		cfg := Load()
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "secret", cfg.AppSecret)
		assert.Equal(t, "verify-me", cfg.ValidationToken)
		assert.Equal(t, "page-token", cfg.PageAccessToken)
		assert.Equal(t, "https://bot.example.com", cfg.ServerURL)
		assert.Equal(t, "https://graph.facebook.com/v2.6", cfg.GraphAPIURL)
		assert.Equal(t, "https://bot.example.com/assets/default_post.png", cfg.DefaultPostImageURL)
		assert.Equal(t, 10, cfg.LatestPostLimit)
		assert.Equal(t, 30*time.Second, cfg.TurnTimeout)
		assert.Equal(t, 24*time.Hour, cfg.DedupeTTL)
		assert.Equal(t, "5000", cfg.Port)
	})

	t.Run("overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DEFAULT_POST_IMAGE_URL", "https://cdn.example.com/p.png")
		t.Setenv("TURN_TIMEOUT", "5s")
		t.Setenv("QUEUE_SIZE", "8")

		cfg := Load()
		assert.Equal(t, "https://cdn.example.com/p.png", cfg.DefaultPostImageURL)
		assert.Equal(t, 5*time.Second, cfg.TurnTimeout)
		assert.Equal(t, 8, cfg.QueueSize)
	})

	t.Run("bad duration falls back", func(t *testing.T) {
		setRequired(t)
		t.Setenv("TURN_TIMEOUT", "soon")

		assert.Equal(t, 30*time.Second, Load().TurnTimeout)
	})
}

func TestValidate(t *testing.T) {
	t.Run("missing values are all reported", func(t *testing.T) {
		t.Setenv("MESSENGER_APP_SECRET", "")
		t.Setenv("MESSENGER_VALIDATION_TOKEN", "")
		t.Setenv("MESSENGER_PAGE_ACCESS_TOKEN", "")
		t.Setenv("SERVER_URL", "")

		err := Load().Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MESSENGER_APP_SECRET is required")
		assert.Contains(t, err.Error(), "MESSENGER_VALIDATION_TOKEN is required")
		assert.Contains(t, err.Error(), "MESSENGER_PAGE_ACCESS_TOKEN is required")
		assert.Contains(t, err.Error(), "SERVER_URL is required")
	})

	t.Run("server url must be a url", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SERVER_URL", "not a url")

		err := Load().Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SERVER_URL must be a valid URL")
	})
}

func TestAssetURL(t *testing.T) {
	cfg := &Config{ServerURL: "https://bot.example.com"}
	assert.Equal(t, "https://bot.example.com/assets/sample.mp3", cfg.AssetURL("/sample.mp3"))
}
