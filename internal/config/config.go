package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Messenger platform (all four mandatory)
	AppSecret       string `validate:"required"`
	ValidationToken string `validate:"required"`
	PageAccessToken string `validate:"required"`
	ServerURL       string `validate:"required,url"`

	GraphAPIURL         string
	DefaultPostImageURL string
	LatestPostLimit     int

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (optional, enables webhook de-duplication)
	RedisAddr     string
	RedisPassword string
	DedupeTTL     time.Duration

	// Dispatcher
	QueueSize   int
	TurnTimeout time.Duration

	// Admin API
	JWTSecret  string
	JWTExpiry  time.Duration
	AdminToken string

	// Server
	Port        string
	CORSOrigins string
	SentryDSN   string
	AppEnv      string
	LogLevel    string
}

var defaults = map[string]any{
	"GRAPH_API_URL":     "https://graph.facebook.com/v2.6",
	"LATEST_POST_LIMIT": 10,
	"DB_HOST":           "localhost",
	"DB_PORT":           "5432",
	"DB_USER":           "postgres",
	"DB_NAME":           "advocate",
	"DB_SSLMODE":        "disable",
	"DEDUPE_TTL":        "24h",
	"QUEUE_SIZE":        256,
	"TURN_TIMEOUT":      "30s",
	"PORT":              "5000",
	"CORS_ORIGINS":      "*",
	"LOG_LEVEL":         "info",
	"JWT_EXPIRY":        "12h",
}

var envNames = map[string]string{
	"AppSecret":       "MESSENGER_APP_SECRET",
	"ValidationToken": "MESSENGER_VALIDATION_TOKEN",
	"PageAccessToken": "MESSENGER_PAGE_ACCESS_TOKEN",
	"ServerURL":       "SERVER_URL",
}

// Load reads configuration from the environment, after merging an optional
// .env file from the working directory.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	cfg := &Config{
		AppSecret:       v.GetString("MESSENGER_APP_SECRET"),
		ValidationToken: v.GetString("MESSENGER_VALIDATION_TOKEN"),
		PageAccessToken: v.GetString("MESSENGER_PAGE_ACCESS_TOKEN"),
		ServerURL:       strings.TrimRight(v.GetString("SERVER_URL"), "/"),

		GraphAPIURL:         strings.TrimRight(v.GetString("GRAPH_API_URL"), "/"),
		DefaultPostImageURL: v.GetString("DEFAULT_POST_IMAGE_URL"),
		LatestPostLimit:     v.GetInt("LATEST_POST_LIMIT"),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		DedupeTTL:     parseDuration(v.GetString("DEDUPE_TTL"), 24*time.Hour),

		QueueSize:   v.GetInt("QUEUE_SIZE"),
		TurnTimeout: parseDuration(v.GetString("TURN_TIMEOUT"), 30*time.Second),

		JWTSecret:  v.GetString("JWT_SECRET"),
		JWTExpiry:  parseDuration(v.GetString("JWT_EXPIRY"), 12*time.Hour),
		AdminToken: v.GetString("ADMIN_TOKEN"),

		Port:        v.GetString("PORT"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),
		SentryDSN:   v.GetString("SENTRY_DSN"),
		AppEnv:      v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
	}

	if cfg.DefaultPostImageURL == "" && cfg.ServerURL != "" {
		cfg.DefaultPostImageURL = cfg.ServerURL + "/assets/default_post.png"
	}
	return cfg
}

// Validate reports every missing or malformed mandatory value in one error.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := envNames[fe.StructField()]
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, name+" is required")
		case "url":
			msgs = append(msgs, name+" must be a valid URL")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", name, fe.Tag()))
		}
	}
	return errors.New("invalid configuration: " + strings.Join(msgs, "; "))
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// AssetURL builds a link to a static asset served next to the bot.
func (c *Config) AssetURL(path string) string {
	return c.ServerURL + "/assets/" + strings.TrimLeft(path, "/")
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
