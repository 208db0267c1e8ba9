package handlers

import (
	"errors"
	"log/slog"

	"github.com/geminiweb/backend/internal/dto"
	"github.com/geminiweb/backend/internal/middleware"
	"github.com/geminiweb/backend/internal/services"
	"github.com/geminiweb/backend/internal/upstream"
	"github.com/gofiber/fiber/v2"
)

// ChatHandler serves the server-side generation path: it resolves the
// user's stored upstream settings, calls generateContent, reshapes the
// reply and records the exchange in history.
type ChatHandler struct {
	settingsService *services.SettingsService
	historyService  *services.HistoryService
	client          *upstream.Client
}

func NewChatHandler(settingsService *services.SettingsService, historyService *services.HistoryService, client *upstream.Client) *ChatHandler {
	return &ChatHandler{
		settingsService: settingsService,
		historyService:  historyService,
		client:          client,
	}
}

func (h *ChatHandler) Generate(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "message is required"})
	}

	settings, err := h.settingsService.Get(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to load settings"})
	}

	model := req.Model
	if model == "" {
		model = settings.DefaultModel
	}

	result, err := h.client.GenerateContent(c.Context(), settings.APIURL, settings.APIKey, model, req.Message)
	if err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "configure your API URL and key in settings first",
			})
		}
		slog.Error("generation failed", "user_id", userID, "model", model, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	images := make([]dto.GeneratedImage, 0, len(result.Images))
	for _, img := range result.Images {
		images = append(images, dto.GeneratedImage{MimeType: img.MimeType, Data: img.Data})
	}

	// History is best-effort: a failed insert must not lose the reply.
	var stored interface{}
	if len(images) > 0 {
		stored = images
	}
	if err := h.historyService.Record(userID, req.Message, result.Text, model, stored); err != nil {
		slog.Error("failed to record history", "user_id", userID, "error", err)
	}

	return c.JSON(dto.GenerateResponse{
		Success: true,
		Text:    result.Text,
		Images:  images,
		Model:   model,
	})
}

func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	messages, err := h.historyService.List(userID, c.QueryInt("limit"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to fetch history"})
	}
	return c.JSON(fiber.Map{"messages": messages})
}

func (h *ChatHandler) ClearHistory(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	if err := h.historyService.Clear(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to clear history"})
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
