package middleware

import (
	"context"
	"strings"

	"taskapp/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// TokenResolver maps a bearer token to the user holding it.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// AuthRequired is a Fiber middleware that resolves the bearer token to a
// user and rejects the request when it cannot.
func AuthRequired(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Please authenticate.",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header format must be 'Bearer <token>'",
			})
		}
		tokenString := parts[1]

		user, err := resolver.ResolveToken(c.UserContext(), tokenString)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Please authenticate.",
			})
		}

		c.Locals(userKey, user)
		c.Locals(tokenKey, tokenString)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by AuthRequired.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// CurrentToken returns the token the request was authenticated with.
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenKey).(string)
	return token
}
