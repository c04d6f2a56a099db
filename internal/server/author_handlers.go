package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAuthors handles GET /api/authors: the full public directory ordered by
// display name.
func (s *Server) GetAuthors(c *fiber.Ctx) error {
	return c.JSON(s.authorService.List(c.UserContext()))
}

// GetAuthor handles GET /api/authors/:slug. For an authenticated viewer the
// response also carries whether they follow this author.
func (s *Server) GetAuthor(c *fiber.Ctx) error {
	ctx := c.UserContext()
	author, err := s.authorService.GetBySlug(ctx, c.Params("slug"))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	following := false
	if viewerID := optionalUserID(c); viewerID != 0 {
		following = s.socialService.IsFollowing(ctx, viewerID, author.ID)
	}

	return c.JSON(fiber.Map{
		"author":    author,
		"following": following,
	})
}

// GetAuthorPosts handles GET /api/authors/:slug/posts.
func (s *Server) GetAuthorPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 10)
	posts, total := s.postService.ListByAuthor(c.UserContext(), c.Params("slug"), page.Page, page.Limit)
	return c.JSON(pagedResponse{Posts: posts, Total: total, Page: page.Page, Limit: page.Limit})
}

// GetSuggestedAuthors handles GET /api/authors/suggested. Anonymous viewers
// get the global ranking; authenticated ones get authors they do not follow.
func (s *Server) GetSuggestedAuthors(c *fiber.Ctx) error {
	return c.JSON(s.authorService.Suggested(c.UserContext(), optionalUserID(c)))
}

// GetMyPosts handles GET /api/me/posts: the owner's dashboard listing,
// drafts included.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 10)
	posts, total := s.postService.ListOwn(c.UserContext(), currentUserID(c), page.Page, page.Limit)
	return c.JSON(pagedResponse{Posts: posts, Total: total, Page: page.Page, Limit: page.Limit})
}
