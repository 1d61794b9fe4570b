package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"taskapp/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// writeError maps a service error onto an HTTP response. Unexpected errors
// are logged and hidden behind a generic 500.
func writeError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  err.Error(),
			"errors": verr.Fields,
		})
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAuth):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Please authenticate."})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not Found"})
	default:
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// parsePatch decodes a JSON object and rejects any key outside allowed.
// An empty body is an empty patch.
func parsePatch(body []byte, allowed ...string) (map[string]json.RawMessage, error) {
	patch := map[string]json.RawMessage{}
	if len(body) == 0 {
		return patch, nil
	}
	if err := json.Unmarshal(body, &patch); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	permitted := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		permitted[k] = true
	}
	for k := range patch {
		if !permitted[k] {
			return nil, fmt.Errorf("invalid updates: field %q cannot be changed", k)
		}
	}
	return patch, nil
}

// patchField decodes patch[key] into a new T, returning nil when absent.
func patchField[T any](patch map[string]json.RawMessage, key string) (*T, error) {
	raw, ok := patch[key]
	if !ok {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("field %q has the wrong type", key)
	}
	return v, nil
}
