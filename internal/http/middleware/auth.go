package middleware

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/token"
)

const (
	// UserIDLocalKey holds the authenticated user id.
	UserIDLocalKey = "user_id"
	// RoleLocalKey holds the authenticated model.Role.
	RoleLocalKey = "role"
)

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(tok string) (*token.Claims, error)
}

// UserFinder loads the account behind a token.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Auth requires a valid "Authorization: Bearer <jwt>" header and stores the subject
// and role in locals.
func Auth(p TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		scheme, tok, ok := strings.Cut(h, " ")
		if h == "" {
			return WriteError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
		}
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
			return WriteError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
		}

		claims, err := p.Parse(strings.TrimSpace(tok))
		if err != nil {
			return WriteError(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
		}
		c.Locals(UserIDLocalKey, claims.UserID)
		c.Locals(RoleLocalKey, claims.Role)
		return c.Next()
	}
}

// RequireActive rejects tokens whose account was deleted or blocked after issue.
// The stored role replaces the one in the token.
func RequireActive(users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := users.FindByID(c.UserContext(), UserID(c))
		if errors.Is(err, sql.ErrNoRows) {
			return WriteError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "account no longer exists")
		}
		if err != nil {
			return WriteError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if u.Status == model.UserBlocked {
			return WriteError(c, fiber.StatusForbidden, "ACCOUNT_BLOCKED", "account is blocked")
		}
		c.Locals(RoleLocalKey, u.Role)
		return c.Next()
	}
}

// AdminOnly lets only administrators through. It must run after Auth.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Role(c) != model.RoleAdmin {
			return WriteError(c, fiber.StatusForbidden, "FORBIDDEN", "administrator access required")
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}

// Role returns the authenticated role, or "".
func Role(c *fiber.Ctx) model.Role {
	r, _ := c.Locals(RoleLocalKey).(model.Role)
	return r
}
