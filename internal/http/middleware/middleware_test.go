package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zapcore"

	"cryptoinvest/internal/logger"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFrom(c))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, ridHeader, string(body))
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, existingID, string(body))
	})

	t.Run("should replace oversized request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("a", 200))

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
	})
}

func TestValidRequestID(t *testing.T) {
	assert.True(t, validRequestID("abc-123_XYZ"))
	assert.False(t, validRequestID(""))
	assert.False(t, validRequestID("has space"))
	assert.False(t, validRequestID("tab\there"))
}

func TestWriteError(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return WriteError(c, fiber.StatusConflict, "CONFLICT", "already exists")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body ErrorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, ErrorPayload{RequestID: "rid-1", Error: ErrorEnvelope{Code: "CONFLICT", Message: "already exists"}}, body)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()

	app.Use(RequestID())
	app.Use(Logger(logger.NewWithWriter(&buf, time.UTC, zapcore.InfoLevel)))

	app.Get("/test", func(c *fiber.Ctx) error {
		c.Locals(UserIDLocalKey, "u-1")
		return c.SendStatus(fiber.StatusAccepted)
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.Equal(t, "u-1", logData["user_id"])
	assert.Equal(t, "info", logData["level"])
	assert.Equal(t, "http", logData["component"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])

	buf.Reset()
	_, err = app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, "error", logData["level"])
}

func TestLoggerRecordedError(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(Logger(logger.NewWithWriter(&buf, time.UTC, zapcore.InfoLevel)))
	app.Get("/", func(c *fiber.Ctx) error {
		RecordError(c, errors.New("pq: connection reset"))
		return WriteError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, "pq: connection reset", logData["error"])
	assert.Equal(t, "error", logData["level"])
}

func TestLoggerReturnedError(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(Logger(logger.NewWithWriter(&buf, time.UTC, zapcore.InfoLevel)))
	app.Get("/", func(c *fiber.Ctx) error { return errors.New("boom") })

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, float64(fiber.StatusInternalServerError), logData["status"])
	assert.Equal(t, "boom", logData["error"])
	assert.Equal(t, "error", logData["level"])
}

func TestLoggerTraceID(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var buf bytes.Buffer
	var want string
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		ctx, span := tp.Tracer("test").Start(c.UserContext(), "request")
		defer span.End()
		want = span.SpanContext().TraceID().String()
		c.SetUserContext(ctx)
		return c.Next()
	})
	app.Use(Logger(logger.NewWithWriter(&buf, time.UTC, zapcore.InfoLevel)))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, want, logData["trace_id"])
}
