package app

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskapp/internal/logger"
	"taskapp/internal/testdb"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "app_test_secret_value"

func TestHealthCheck(t *testing.T) {
	a := New(testdb.Open(t), Options{JWTSecret: testSecret})

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["time"])
}

func TestUnknownRoute(t *testing.T) {
	a := New(testdb.Open(t), Options{JWTSecret: testSecret})

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrorHandler_TooLarge(t *testing.T) {
	f := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	f.Post("/users/me/avatar", func(c *fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })
	f.Post("/tasks", func(c *fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })

	tests := []struct {
		path  string
		field string
	}{
		{"/users/me/avatar", "avatar"},
		{"/tasks", "body"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := f.Test(httptest.NewRequest(http.MethodPost, tt.path, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body struct {
				Error  string            `json:"error"`
				Errors map[string]string `json:"errors"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Contains(t, body.Errors, tt.field)
		})
	}
}

// An upload over the transport limit is cut off before any handler runs;
// the client still gets the validation response before the connection
// closes.
func TestOversizedAvatarUpload(t *testing.T) {
	a := New(testdb.Open(t), Options{JWTSecret: testSecret})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = a.Fiber.Listener(ln) }()
	t.Cleanup(func() { _ = a.Fiber.Shutdown() })

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), 2*time.Second)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	_, err = fmt.Fprintf(conn, "POST /users/me/avatar HTTP/1.1\r\nHost: localhost\r\n"+
		"Content-Type: multipart/form-data; boundary=x\r\nContent-Length: %d\r\n\r\n", 3*1024*1024)
	require.NoError(t, err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Errors, "avatar")
}

func TestPanicIsRecoveredAndLogged(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
	var buf bytes.Buffer
	logger.InitWriter(&buf, "info", "json")

	a := New(testdb.Open(t), Options{JWTSecret: testSecret})
	a.Fiber.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var found bool
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		if json.Unmarshal(line, &entry) != nil || entry["message"] != "http_request" {
			continue
		}
		found = true
		assert.Equal(t, "/boom", entry["path"])
		assert.Equal(t, float64(http.StatusInternalServerError), entry["status"])
		assert.NotEmpty(t, entry["request_id"])
	}
	assert.True(t, found, "access log line for the panicking request")
}
