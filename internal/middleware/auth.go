package middleware

import (
	"errors"

	"github.com/geminiweb/backend/internal/config"
	"github.com/geminiweb/backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "invalid or expired token",
			})
		},
	})
}

func claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, errors.New("invalid token in context")
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return mapClaims, nil
}

// UserID extracts the authenticated user's id from the verified JWT claims.
func UserID(c *fiber.Ctx) (string, error) {
	mapClaims, err := claims(c)
	if err != nil {
		return "", err
	}
	userID, ok := mapClaims["userId"].(string)
	if !ok || userID == "" {
		return "", errors.New("missing userId claim")
	}
	return userID, nil
}

// Username extracts the authenticated user's name from the verified JWT claims.
func Username(c *fiber.Ctx) (string, error) {
	mapClaims, err := claims(c)
	if err != nil {
		return "", err
	}
	username, ok := mapClaims["username"].(string)
	if !ok {
		return "", errors.New("missing username claim")
	}
	return username, nil
}
