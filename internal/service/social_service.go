package service

import (
	"context"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// SocialService manages the follow and save toggle edges.
type SocialService struct {
	socialRepo repository.SocialRepository
}

func NewSocialService(socialRepo repository.SocialRepository) *SocialService {
	return &SocialService{socialRepo: socialRepo}
}

// ToggleFollow flips the follow edge from followerID to followedID and
// returns the resulting state (true = now following). A concurrent insert
// losing the unique-constraint race still lands on "following", so the
// caller always sees the edge it asked for.
func (s *SocialService) ToggleFollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	if followerID == followedID {
		return false, models.NewValidationError("cannot follow yourself")
	}

	following, err := s.socialRepo.IsFollowing(ctx, followerID, followedID)
	if err != nil {
		return false, err
	}
	if following {
		if _, err := s.socialRepo.DeleteFollow(ctx, followerID, followedID); err != nil {
			return false, err
		}
		return false, nil
	}
	if _, err := s.socialRepo.InsertFollow(ctx, followerID, followedID); err != nil {
		return false, err
	}
	return true, nil
}

// ToggleSave flips the save edge from userID to the post slug and returns
// the resulting state (true = now saved).
func (s *SocialService) ToggleSave(ctx context.Context, userID uint, postSlug string) (bool, error) {
	if postSlug == "" {
		return false, models.NewValidationError("post slug is required")
	}

	saved, err := s.socialRepo.IsSaved(ctx, userID, postSlug)
	if err != nil {
		return false, err
	}
	if saved {
		if _, err := s.socialRepo.DeleteSave(ctx, userID, postSlug); err != nil {
			return false, err
		}
		return false, nil
	}
	if _, err := s.socialRepo.InsertSave(ctx, userID, postSlug); err != nil {
		return false, err
	}
	return true, nil
}

// IsFollowing reports whether the edge exists; store failures degrade to
// false so profile pages still render.
func (s *SocialService) IsFollowing(ctx context.Context, followerID, followedID uint) bool {
	following, err := s.socialRepo.IsFollowing(ctx, followerID, followedID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "follow check degraded to false",
			slog.String("error", err.Error()))
		return false
	}
	return following
}

// IsSaved reports whether the user has saved the post; store failures
// degrade to false.
func (s *SocialService) IsSaved(ctx context.Context, userID uint, postSlug string) bool {
	saved, err := s.socialRepo.IsSaved(ctx, userID, postSlug)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "save check degraded to false",
			slog.String("error", err.Error()))
		return false
	}
	return saved
}

// ListFollowed returns the authors the user follows, ordered by display
// name.
func (s *SocialService) ListFollowed(ctx context.Context, userID uint) []models.User {
	authors, err := s.socialRepo.ListFollowed(ctx, userID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "followed listing degraded to empty",
			slog.String("error", err.Error()))
		return []models.User{}
	}
	return authors
}

// ListSaved returns the user's reading list, most recently saved first.
// Saves pointing at deleted or unpublished posts are filtered out.
func (s *SocialService) ListSaved(ctx context.Context, userID uint) []*models.Post {
	posts, err := s.socialRepo.ListSaved(ctx, userID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "saved listing degraded to empty",
			slog.String("error", err.Error()))
		return []*models.Post{}
	}
	return posts
}
