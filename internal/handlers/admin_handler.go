package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Broadcaster interface {
	Broadcast(ctx context.Context, res *services.TurnResult) services.BroadcastStats
}

// AdminHandler serves the moderator back office.
type AdminHandler struct {
	store       services.Store
	broadcaster Broadcaster
	validate    *validator.Validate
}

func NewAdminHandler(store services.Store, broadcaster Broadcaster) *AdminHandler {
	return &AdminHandler{store: store, broadcaster: broadcaster, validate: validator.New()}
}

func (h *AdminHandler) ListReports(c *fiber.Ctx) error {
	limit, offset := page(c)

	reports, total, err := h.store.ListReports(c.UserContext(), limit, offset)
	if err != nil {
		slog.Error("list reports failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *AdminHandler) GetReport(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	report, err := h.store.GetReport(c.UserContext(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		slog.Error("get report failed", "report_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch report",
		})
	}
	return c.JSON(report)
}

func (h *AdminHandler) ListPosts(c *fiber.Ctx) error {
	limit, _ := page(c)

	posts, err := h.store.LatestPosts(c.UserContext(), limit)
	if err != nil {
		slog.Error("list posts failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch posts",
		})
	}
	return c.JSON(fiber.Map{"posts": posts, "limit": limit})
}

// Broadcast pushes the latest posts to every USER and reports the tally.
func (h *AdminHandler) Broadcast(c *fiber.Ctx) error {
	start := time.Now()
	res := &services.TurnResult{SenderID: "admin"}
	stats := h.broadcaster.Broadcast(c.UserContext(), res)
	services.LogTurn(res, time.Since(start))

	return c.JSON(dto.BroadcastResponse{
		Recipients: stats.Recipients,
		Failed:     stats.Failed,
		Posts:      stats.Posts,
	})
}

func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "role must be one of USER, MODERATOR, NGO",
		})
	}

	id := c.Params("id")
	if err := h.store.SetRole(c.UserContext(), id, req.Role); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		slog.Error("update role failed", "sender_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update role",
		})
	}

	slog.Info("user role updated", "sender_id", id, "role", req.Role, "by", c.Locals("admin"))
	return c.JSON(fiber.Map{"message": "Role updated successfully"})
}

func page(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	offset, _ = strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
