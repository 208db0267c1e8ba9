package handlers

import (
	"log/slog"

	"github.com/geminiweb/backend/internal/dto"
	"github.com/geminiweb/backend/internal/middleware"
	"github.com/geminiweb/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	settings, err := h.settingsService.Get(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to load settings"})
	}

	return c.JSON(dto.SettingsPayload{
		APIURL:       settings.APIURL,
		APIKey:       settings.APIKey,
		DefaultModel: settings.DefaultModel,
	})
}

func (h *SettingsHandler) Save(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.SettingsPayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	// Key material stays out of the logs; length is enough for debugging.
	slog.Info("saving settings", "user_id", userID,
		"api_url_set", req.APIURL != "", "api_key_len", len(req.APIKey))

	if err := h.settingsService.Save(userID, req.APIURL, req.APIKey, req.DefaultModel); err != nil {
		slog.Error("settings save failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to save settings"})
	}

	return c.JSON(dto.SuccessResponse{Success: true})
}
