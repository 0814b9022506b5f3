package middleware

import "github.com/gofiber/fiber/v2"

// ErrorPayload is the JSON body of every error response.
type ErrorPayload struct {
	RequestID string        `json:"request_id"`
	Error     ErrorEnvelope `json:"error"`
}

// ErrorEnvelope carries a machine-readable code and a safe message.
type ErrorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes the standard error body with status.
func WriteError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorPayload{
		RequestID: RequestIDFrom(c),
		Error:     ErrorEnvelope{Code: code, Message: message},
	})
}
