package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var input service.PostInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, models.NewValidationError("invalid request body"))
	}

	post, err := s.postService.Create(c.UserContext(), input, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:slug. Drafts are never served here.
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// GetPostForEdit handles GET /api/posts/:slug/edit, serving the caller's own
// post regardless of status.
func (s *Server) GetPostForEdit(c *fiber.Ctx) error {
	post, err := s.postService.GetForEdit(c.UserContext(), c.Params("slug"), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:slug.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var input service.PostInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, models.NewValidationError("invalid request body"))
	}

	post, err := s.postService.Update(c.UserContext(), c.Params("slug"), input, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:slug.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.Delete(c.UserContext(), c.Params("slug"), currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecordView handles POST /api/posts/:slug/view. Always 204: the caller has
// nothing to do with a failed count.
func (s *Server) RecordView(c *fiber.Ctx) error {
	s.postService.IncrementView(c.UserContext(), c.Params("slug"))
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPosts handles GET /api/posts with page/limit pagination.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 10)
	posts, total := s.postService.List(c.UserContext(), page.Page, page.Limit)
	return c.JSON(pagedResponse{Posts: posts, Total: total, Page: page.Page, Limit: page.Limit})
}

// GetLatestPosts handles GET /api/posts/latest.
func (s *Server) GetLatestPosts(c *fiber.Ctx) error {
	n := c.QueryInt("limit", 5)
	return c.JSON(s.postService.Latest(c.UserContext(), n))
}

// GetPopularPosts handles GET /api/posts/popular.
func (s *Server) GetPopularPosts(c *fiber.Ctx) error {
	return c.JSON(s.postService.Popular(c.UserContext()))
}

// GetRelatedPosts handles GET /api/posts/:slug/related. A sidebar fill:
// when the owning post is gone the list degrades to empty rather than
// erroring.
func (s *Server) GetRelatedPosts(c *fiber.Ctx) error {
	slug := c.Params("slug")
	post, err := s.postService.GetBySlug(c.UserContext(), slug)
	if err != nil {
		return c.JSON([]*models.Post{})
	}
	n := c.QueryInt("limit", 3)
	return c.JSON(s.postService.Related(c.UserContext(), slug, post.Category, n))
}

// SearchPosts handles GET /api/posts/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	return c.JSON(s.postService.Search(c.UserContext(), c.Query("q")))
}

// GetCategories handles GET /api/categories.
func (s *Server) GetCategories(c *fiber.Ctx) error {
	return c.JSON(s.postService.Categories(c.UserContext()))
}

// GetCategoryPosts handles GET /api/categories/:category/posts. The route
// parameter is the category name as stored on posts.
func (s *Server) GetCategoryPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 10)
	posts, total := s.postService.ListByCategory(c.UserContext(), c.Params("category"), page.Page, page.Limit)
	return c.JSON(pagedResponse{Posts: posts, Total: total, Page: page.Page, Limit: page.Limit})
}
