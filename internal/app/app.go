// Package app wires repositories, services and handlers into a Fiber app.
package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskapp/internal/handlers"
	"taskapp/internal/middleware"
	"taskapp/internal/repositories"
	"taskapp/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Options configures New.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	Notifier  services.AccountNotifier
}

// bodyLimit leaves room for multipart framing around a maximum size avatar
// so the size check in the service produces the error.
const bodyLimit = 2 * 1024 * 1024

// App is the assembled HTTP application together with the token service
// its middleware uses.
type App struct {
	Fiber *fiber.App
	Auth  *services.AuthService
}

// New builds the application on an already migrated database.
func New(db *gorm.DB, opts Options) *App {
	userRepo := repositories.NewGORMUserRepository(db)
	taskRepo := repositories.NewGORMTaskRepository(db)

	authService := services.NewAuthService(userRepo, opts.JWTSecret, opts.TokenTTL)
	userService := services.NewUserService(userRepo, authService, opts.Notifier)
	taskService := services.NewTaskService(taskRepo)

	f := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    bodyLimit,
	})

	f.Use(requestid.New())
	// RequestLogger wraps recover so a panicking request is still logged.
	f.Use(middleware.RequestLogger())
	f.Use(recover.New())

	f.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	auth := middleware.AuthRequired(authService)
	handlers.NewUserHandler(userService).RegisterRoutes(f, auth)
	handlers.NewTaskHandler(taskService).RegisterRoutes(f, auth)

	return &App{
		Fiber: f,
		Auth:  authService,
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	if code == fiber.StatusRequestEntityTooLarge {
		return tooLarge(c)
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// tooLarge answers a body rejected by the transport limit like any
// other oversized input. The connection is closed after the response.
func tooLarge(c *fiber.Ctx) error {
	field, msg := "body", fmt.Sprintf("request body is larger than %d bytes", bodyLimit)
	if strings.HasSuffix(c.Path(), "/avatar") {
		field, msg = "avatar", fmt.Sprintf("file is larger than %d bytes", services.MaxAvatarBytes)
	}
	verr := &services.ValidationError{Fields: map[string]string{field: msg}}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  verr.Error(),
		"errors": verr.Fields,
	})
}
