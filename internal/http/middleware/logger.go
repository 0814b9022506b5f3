package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrorLocalKey holds an internal error recorded by a handler that already wrote its response.
const ErrorLocalKey = "error"

// RecordError attaches err to the request log line without exposing it to the client.
func RecordError(c *fiber.Ctx, err error) {
	c.Locals(ErrorLocalKey, err)
}

// Logger logs one structured line per request: request_id, method, path, status,
// latency in milliseconds and, when present, trace_id and user_id. 5xx responses log at error
// level and 4xx at warn.
func Logger(log *zap.Logger) fiber.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}

		fields := []zap.Field{
			zap.String("request_id", RequestIDFrom(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency", float64(time.Since(start).Microseconds())/1000),
			zap.String("ip", c.IP()),
		}
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.HasTraceID() {
			fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
		}
		if uid := UserID(c); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		} else if recorded, ok := c.Locals(ErrorLocalKey).(error); ok {
			fields = append(fields, zap.Error(recorded))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
		return err
	}
}
