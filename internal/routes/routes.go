package routes

import (
	"github.com/geminiweb/backend/internal/config"
	"github.com/geminiweb/backend/internal/handlers"
	"github.com/geminiweb/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	settingsHandler *handlers.SettingsHandler,
	proxyHandler *handlers.ProxyHandler,
	chatHandler *handlers.ChatHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	// Public
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/test-connection", proxyHandler.TestConnection)

	// Bearer-token protected
	api.Get("/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Get("/settings", middleware.JWTProtected(cfg), settingsHandler.Get)
	api.Post("/settings", middleware.JWTProtected(cfg), settingsHandler.Save)
	api.Post("/generate", middleware.JWTProtected(cfg), chatHandler.Generate)
	api.Get("/history", middleware.JWTProtected(cfg), chatHandler.History)
	api.Delete("/history", middleware.JWTProtected(cfg), chatHandler.ClearHistory)

	// Catch-all proxy to the upstream API, keyed on x-goog-api-key. Must be
	// registered last so the named routes above win.
	api.All("/*", proxyHandler.Forward)
}
