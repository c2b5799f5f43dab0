package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type Enqueuer interface {
	Enqueue(ev dto.MessagingEvent) error
}

type Deduper interface {
	Seen(ctx context.Context, mid string) (bool, error)
}

type WebhookHandler struct {
	queue       Enqueuer
	dedupe      Deduper
	verifyToken string
}

func NewWebhookHandler(queue Enqueuer, dedupe Deduper, verifyToken string) *WebhookHandler {
	return &WebhookHandler{queue: queue, dedupe: dedupe, verifyToken: verifyToken}
}

// Verify answers the subscription handshake by echoing hub.challenge.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")

	if mode == "subscribe" && token != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) == 1 {
		slog.Info("webhook verified")
		return c.SendString(c.Query("hub.challenge"))
	}

	slog.Warn("webhook verification failed", "mode", mode, "ip", c.IP())
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
		Error: true, Message: "Failed validation. Make sure the validation tokens match.",
	})
}

// Receive acknowledges a page batch at once and queues each messaging event
// for the dispatcher.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var batch dto.WebhookBatch
	if err := c.BodyParser(&batch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}
	if batch.Object != "page" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Unsupported object: " + batch.Object,
		})
	}

	queued, dropped := 0, 0
	for _, entry := range batch.Entry {
		for _, ev := range entry.Messaging {
			if h.duplicate(c.UserContext(), ev) {
				continue
			}
			if err := h.queue.Enqueue(ev); err != nil {
				dropped++
				slog.Error("messaging event dropped",
					"sender_id", ev.Sender.ID,
					"page_id", entry.ID,
					"request_id", c.Locals("requestid"),
					"error", err.Error(),
				)
				continue
			}
			queued++
		}
	}

	slog.Debug("webhook received", "entries", len(batch.Entry), "queued", queued, "dropped", dropped)
	return c.SendString("EVENT_RECEIVED")
}

func (h *WebhookHandler) duplicate(ctx context.Context, ev dto.MessagingEvent) bool {
	if h.dedupe == nil || ev.Message == nil || ev.Message.MID == "" {
		return false
	}
	seen, err := h.dedupe.Seen(ctx, ev.Message.MID)
	if err != nil {
		slog.Warn("dedupe check failed", "mid", ev.Message.MID, "error", err)
		return false
	}
	if seen {
		slog.Info("duplicate message skipped", "sender_id", ev.Sender.ID, "mid", ev.Message.MID)
	}
	return seen
}
