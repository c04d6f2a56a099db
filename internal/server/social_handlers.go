package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleFollow handles POST /api/authors/:id/follow and reports the
// resulting edge state.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	authorID, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	// The target must exist; following a deleted author would create a
	// dangling edge.
	if _, err := s.authorRepo.GetByID(c.UserContext(), authorID); err != nil {
		return models.RespondWithError(c, err)
	}

	following, err := s.socialService.ToggleFollow(c.UserContext(), currentUserID(c), authorID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// ToggleSave handles POST /api/posts/:slug/save and reports the resulting
// edge state.
func (s *Server) ToggleSave(c *fiber.Ctx) error {
	slug := c.Params("slug")

	// Only published posts can be saved; this also hides drafts.
	if _, err := s.postService.GetBySlug(c.UserContext(), slug); err != nil {
		return models.RespondWithError(c, err)
	}

	saved, err := s.socialService.ToggleSave(c.UserContext(), currentUserID(c), slug)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"saved": saved})
}

// GetSaveState handles GET /api/posts/:slug/saved, for rendering the
// bookmark control.
func (s *Server) GetSaveState(c *fiber.Ctx) error {
	saved := s.socialService.IsSaved(c.UserContext(), currentUserID(c), c.Params("slug"))
	return c.JSON(fiber.Map{"saved": saved})
}

// GetFollowedAuthors handles GET /api/me/following.
func (s *Server) GetFollowedAuthors(c *fiber.Ctx) error {
	return c.JSON(s.socialService.ListFollowed(c.UserContext(), currentUserID(c)))
}

// GetSavedPosts handles GET /api/me/saved: the reading list, most recently
// saved first.
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	return c.JSON(s.socialService.ListSaved(c.UserContext(), currentUserID(c)))
}
