// Package handlers contains the HTTP handlers for the book review API.
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ntsvetkov/bookreview/internal/apperr"
	"github.com/ntsvetkov/bookreview/internal/logging"
	"github.com/ntsvetkov/bookreview/internal/middleware/auth"
	"github.com/ntsvetkov/bookreview/internal/mykafka"
)

func parseIDParam(c echo.Context, label string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.BadRequest, "Invalid "+label+" ID")
	}
	return uint(id), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func currentUserID(c echo.Context) (uint, error) {
	id, ok := auth.UserID(c)
	if !ok {
		return 0, apperr.New(apperr.Unauthorized, "token required")
	}
	return id, nil
}

// publishEvent sends a domain event, best effort. A nil producer means
// events are disabled; delivery failures are logged, never fail the request.
func publishEvent(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "topic", topic, "error", err.Error())
	}
}
