package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// page reads limit and offset, writing the error response itself when ok is false.
func page(c *fiber.Ctx) (limit, offset int, ok bool, resp error) {
	limit, err := queryInt(c, "limit", 10)
	if err != nil {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	offset, err = queryInt(c, "offset", 0)
	if err != nil {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, true, nil
}

// bind decodes the JSON body into v, writing a 400 itself when ok is false.
func bind(c *fiber.Ctx, v any) (ok bool, resp error) {
	if err := c.BodyParser(v); err != nil {
		return false, writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	return true, nil
}

// idParam returns the :id path parameter if it is a UUID.
func idParam(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
