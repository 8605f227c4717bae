package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"attendapi/internal/http/middleware"
	"attendapi/internal/service"
)

// listResponse wraps a collection.
type listResponse[T any] struct {
	Data []T `json:"data"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Data: items}
}

// actorFrom builds the service actor from the authenticated claims.
func actorFrom(c *fiber.Ctx) service.Actor {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return service.Actor{}
	}
	return service.Actor{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}
}

// maxPageLimit caps the rows a single list request can ask for.
const maxPageLimit = 500

// pageParams reads limit and offset. ok is false when an error response was written.
// Limits above maxPageLimit are clamped.
func pageParams(c *fiber.Ctx, defLimit string) (limit, offset int, ok bool, err error) {
	limit, convErr := strconv.Atoi(c.Query("limit", defLimit))
	if convErr != nil || limit < 0 {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	limit = min(limit, maxPageLimit)
	offset, convErr = strconv.Atoi(c.Query("offset", "0"))
	if convErr != nil || offset < 0 {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, true, nil
}

// dateRange is the optional from/to filter of report endpoints.
type dateRange struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}
