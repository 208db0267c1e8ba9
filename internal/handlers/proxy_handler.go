package handlers

import (
	"log/slog"

	"github.com/geminiweb/backend/internal/dto"
	"github.com/geminiweb/backend/internal/upstream"
	"github.com/gofiber/fiber/v2"
)

type ProxyHandler struct {
	client *upstream.Client
}

func NewProxyHandler(client *upstream.Client) *ProxyHandler {
	return &ProxyHandler{client: client}
}

// Forward relays any request under the proxy prefix to the upstream API.
// The caller's API key header is the credential here, independent of the
// bearer-token session: the key is per-user secret material the client
// already obtained through settings.
func (h *ProxyHandler) Forward(c *fiber.Ctx) error {
	apiKey := c.Get(upstream.KeyHeader)
	if apiKey == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "missing API key"})
	}

	path := "/" + c.Params("*")
	query := string(c.Request().URI().QueryString())

	result, err := h.client.Forward(c.Context(), c.Method(), path, query, apiKey, c.Body())
	if err != nil {
		slog.Error("proxy request failed", "method", c.Method(), "path", path, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "proxy request failed",
			"message": err.Error(),
		})
	}

	c.Set("Content-Type", "application/json")
	return c.Status(result.StatusCode).Send(result.Body)
}

// TestConnection validates an apiUrl/apiKey pair with a single models
// listing. Only missing input is an HTTP error; upstream failures come back
// as a structured success:false body for the settings UI to display.
func (h *ProxyHandler) TestConnection(c *fiber.Ctx) error {
	var req dto.TestConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.TestConnectionResponse{
			Success: false, Error: "invalid request body",
		})
	}

	if req.APIURL == "" || req.APIKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.TestConnectionResponse{
			Success: false, Error: "apiUrl and apiKey are required",
		})
	}

	result := h.client.TestConnection(c.Context(), req.APIURL, req.APIKey)
	return c.JSON(dto.TestConnectionResponse{
		Success:    result.Success,
		ModelCount: result.ModelCount,
		Error:      result.Error,
	})
}
