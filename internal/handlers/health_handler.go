package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type QueueDepth interface {
	Len() int
}

type HealthHandler struct {
	ping  func() error
	queue QueueDepth
}

func NewHealthHandler(ping func() error, queue QueueDepth) *HealthHandler {
	return &HealthHandler{ping: ping, queue: queue}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Queue:     h.queue.Len(),
	})
}
