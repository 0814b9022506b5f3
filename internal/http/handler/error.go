package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cryptoinvest/internal/http/middleware"
	"cryptoinvest/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload = middleware.ErrorPayload

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return middleware.WriteError(c, status, code, message)
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// Service sentinels in match order. Messages of these errors are written by the service
// layer and safe to return.
var serviceErrors = []errorMapping{
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{service.ErrPlanNotFound, fiber.StatusNotFound, "PLAN_NOT_FOUND"},
	{service.ErrInvalidAmount, fiber.StatusBadRequest, "INVALID_AMOUNT"},
	{service.ErrAmountOutOfRange, fiber.StatusBadRequest, "AMOUNT_OUT_OF_RANGE"},
	{service.ErrUnsupportedCurrency, fiber.StatusBadRequest, "UNSUPPORTED_CURRENCY"},
	{service.ErrUnknownPair, fiber.StatusBadRequest, "UNKNOWN_PAIR"},
	{service.ErrInvalidSide, fiber.StatusBadRequest, "INVALID_SIDE"},
	{service.ErrInvalidDuration, fiber.StatusBadRequest, "INVALID_DURATION"},
	{service.ErrWeakPassword, fiber.StatusBadRequest, "WEAK_PASSWORD"},
	{service.ErrPasswordMismatch, fiber.StatusBadRequest, "PASSWORD_MISMATCH"},
	{service.ErrWrongPassword, fiber.StatusBadRequest, "WRONG_PASSWORD"},
	{service.ErrNotReviewable, fiber.StatusBadRequest, "NOT_REVIEWABLE"},
	{service.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT"},
	{service.ErrInsufficientFunds, fiber.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{service.ErrUserBlocked, fiber.StatusForbidden, "ACCOUNT_BLOCKED"},
	{service.ErrEmailTaken, fiber.StatusConflict, "EMAIL_TAKEN"},
	{service.ErrTradeNotOpen, fiber.StatusConflict, "TRADE_NOT_OPEN"},
	{service.ErrNotPending, fiber.StatusConflict, "NOT_PENDING"},
	{service.ErrPriceUnavailable, fiber.StatusServiceUnavailable, "PRICE_UNAVAILABLE"},
}

// serviceError maps err to its status and code. Unknown errors become a 500 and are
// handed to the request logger.
func serviceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return writeError(c, m.status, m.code, err.Error())
		}
	}
	middleware.RecordError(c, err)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			middleware.RecordError(c, err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
