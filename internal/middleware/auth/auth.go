// Package auth holds the bearer-token gate in front of authenticated routes.
package auth

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ntsvetkov/bookreview/internal/apperr"
	"github.com/ntsvetkov/bookreview/internal/token"
)

const (
	ContextUserIDKey = "userID"
	ContextEmailKey  = "email"
)

// JWT extracts `Authorization: Bearer <token>`, verifies it and attaches
// the identity to the echo context. It touches no storage and is a no-op
// when an identity is already attached.
func JWT(tokens *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(ContextUserIDKey).(uint); ok {
				return next(c)
			}

			header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			const prefix = "Bearer "
			if header == "" || !strings.HasPrefix(header, prefix) {
				return apperr.New(apperr.Unauthorized, "token required")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
			if raw == "" {
				return apperr.New(apperr.Unauthorized, "token required")
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				if errors.Is(err, token.ErrExpired) {
					return apperr.New(apperr.Unauthorized, "token expired")
				}
				return apperr.New(apperr.Unauthorized, "invalid token")
			}

			c.Set(ContextUserIDKey, claims.UserID)
			c.Set(ContextEmailKey, claims.Email)
			return next(c)
		}
	}
}

// UserID returns the authenticated identity attached by JWT.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ContextUserIDKey).(uint)
	return id, ok
}
