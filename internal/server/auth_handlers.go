package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// Signup handles POST /api/auth/signup. Every account gets a public author
// slug derived from the name.
func (s *Server) Signup(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Alias    string `json:"alias_name"`
		Bio      string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("invalid request body"))
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Email(req.Email); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.DisplayName(req.Name); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.Password(req.Password); err != nil {
		return models.RespondWithError(c, models.NewValidationError(err.Error()))
	}

	if existing, err := s.authorRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return models.RespondWithError(c, models.NewValidationError("email is already registered"))
	} else if err != nil && !models.HasCode(err, models.CodeNotFound) {
		return models.RespondWithError(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	slug, err := s.uniqueAuthorSlug(c, req.Name)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		AliasName:    strings.TrimSpace(req.Alias),
		Slug:         slug,
		Bio:          req.Bio,
	}
	if err := s.authorRepo.Create(ctx, user); err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := middleware.GenerateToken(user.ID, tokenTTL)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login.
func (s *Server) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("invalid request body"))
	}

	invalidCredentials := func() error {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
			Error: "invalid email or password",
		})
	}

	user, err := s.authorRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return invalidCredentials()
		}
		return models.RespondWithError(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return invalidCredentials()
		}
		return models.RespondWithError(c, err)
	}

	token, err := middleware.GenerateToken(user.ID, tokenTTL)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// GetMyProfile handles GET /api/me.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.authorRepo.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// uniqueAuthorSlug derives the author slug from the name, appending a
// numeric suffix until the slug is free.
func (s *Server) uniqueAuthorSlug(c *fiber.Ctx, name string) (string, error) {
	base := models.Slugify(name)
	if base == "" {
		base = "author"
	}
	slug := base
	for i := 1; ; i++ {
		exists, err := s.authorRepo.SlugExists(c.UserContext(), slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
