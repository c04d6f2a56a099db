package service

import (
	"context"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// suggestedLimit caps the "writers to follow" rail.
const suggestedLimit = 10

// AuthorService exposes the public author directory.
type AuthorService struct {
	authorRepo repository.AuthorRepository
}

func NewAuthorService(authorRepo repository.AuthorRepository) *AuthorService {
	return &AuthorService{authorRepo: authorRepo}
}

// GetBySlug returns an author's public profile with post count and total
// views. Users without a public slug are invisible here.
func (s *AuthorService) GetBySlug(ctx context.Context, slug string) (*models.User, error) {
	author, err := s.authorRepo.GetBySlug(ctx, slug)
	if err != nil {
		if models.HasCode(err, models.CodeStore) {
			middleware.Logger.WarnContext(ctx, "author read degraded to not-found",
				slog.String("slug", slug), slog.String("error", err.Error()))
			return nil, models.NewNotFoundError("author")
		}
		return nil, err
	}
	return author, nil
}

// List returns the full author directory ordered by display name.
func (s *AuthorService) List(ctx context.Context) []models.User {
	authors, err := s.authorRepo.ListAuthors(ctx)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "author directory degraded to empty",
			slog.String("error", err.Error()))
		return []models.User{}
	}
	return authors
}

// Suggested returns up to ten authors the viewer does not already follow,
// most viewed first. viewerID zero means an anonymous visitor.
func (s *AuthorService) Suggested(ctx context.Context, viewerID uint) []models.User {
	authors, err := s.authorRepo.Suggested(ctx, viewerID, suggestedLimit)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "suggested authors degraded to empty",
			slog.String("error", err.Error()))
		return []models.User{}
	}
	return authors
}
