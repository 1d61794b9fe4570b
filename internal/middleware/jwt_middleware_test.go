package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"taskapp/internal/middleware"
	"taskapp/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newTestApp(resolver middleware.TokenResolver) *fiber.App {
	app := fiber.New()
	app.Get("/private", middleware.AuthRequired(resolver), func(c *fiber.Ctx) error {
		return c.SendString(middleware.CurrentUser(c).ID + ":" + middleware.CurrentToken(c))
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("ResolveToken", "good").Return(&models.User{ID: "user-1"}, nil)
	resolver.On("ResolveToken", "revoked").Return(nil, errors.New("token revoked"))
	app := newTestApp(resolver)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", wantStatus: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: fiber.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: fiber.StatusUnauthorized},
		{name: "revoked token", header: "Bearer revoked", wantStatus: fiber.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", wantStatus: fiber.StatusOK, wantBody: "user-1:good"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
	resolver.AssertNotCalled(t, "ResolveToken", "")
}
