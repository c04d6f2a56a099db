package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed page/limit query parameters. Pages are 1-indexed.
type Pagination struct {
	Page  int
	Limit int
}

// parsePagination extracts page and limit query parameters with the given
// default limit. Out-of-range values are clamped in the service layer; this
// only guards against absent or non-numeric input.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// pagedResponse is the envelope for windowed listings.
type pagedResponse struct {
	Posts []*models.Post `json:"posts"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// currentUserID returns the authenticated caller's ID. Only valid behind
// AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// optionalUserID returns the caller's ID when OptionalAuth resolved one, or
// zero for anonymous requests.
func optionalUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// parseID extracts a route parameter as a positive uint, or writes a 400 and
// reports false.
func parseID(c *fiber.Ctx, param string) (uint, bool) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewValidationError("invalid "+param))
		return 0, false
	}
	return uint(id), true
}
