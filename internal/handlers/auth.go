package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ntsvetkov/bookreview/internal/apperr"
	"github.com/ntsvetkov/bookreview/internal/hash"
	"github.com/ntsvetkov/bookreview/internal/models"
	"github.com/ntsvetkov/bookreview/internal/mykafka"
	"github.com/ntsvetkov/bookreview/internal/response"
	"github.com/ntsvetkov/bookreview/internal/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.Manager
	Hasher   *hash.Hasher
	Producer *mykafka.Producer
}

type signupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,password"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.BadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	err := h.DB.Where("email = ? OR username = ?", email, username).First(&existing).Error
	switch {
	case err == nil:
		if existing.Email == email {
			return apperr.New(apperr.Conflict, "Email already in use")
		}
		return apperr.New(apperr.Conflict, "Username already taken")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Internalf("lookup user: %w", err)
	}

	digest, err := h.Hasher.Hash(req.Password)
	if err != nil {
		return apperr.Internalf("hash password: %w", err)
	}

	user := models.User{Username: username, Email: email, PasswordHash: digest}
	if err := h.DB.Create(&user).Error; err != nil {
		// unique index may still fire under concurrent signups
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.New(apperr.Conflict, "Email or username already in use")
		}
		return apperr.Internalf("create user: %w", err)
	}

	publishEvent(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return response.Success(c, http.StatusCreated, "User registered successfully", echo.Map{"user": user})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.BadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.Unauthorized, "Invalid credentials")
		}
		return apperr.Internalf("lookup user: %w", err)
	}

	if !h.Hasher.Check(user.PasswordHash, req.Password) {
		return apperr.New(apperr.Unauthorized, "Invalid credentials")
	}

	signed, err := h.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		return apperr.Internalf("issue token: %w", err)
	}

	publishEvent(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return response.Success(c, http.StatusOK, "Login successful", echo.Map{
		"token": signed,
		"user":  user,
	})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "User not found")
		}
		return apperr.Internalf("lookup user: %w", err)
	}

	return response.Success(c, http.StatusOK, "User profile retrieved successfully", echo.Map{"user": user})
}
