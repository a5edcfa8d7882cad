package handlers

import (
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ntsvetkov/bookreview/internal/apperr"
	"github.com/ntsvetkov/bookreview/internal/models"
	"github.com/ntsvetkov/bookreview/internal/response"
	"github.com/ntsvetkov/bookreview/internal/service/search"
	"github.com/ntsvetkov/bookreview/internal/util"
)

type SearchHandler struct {
	DB     *gorm.DB
	Search *search.Service
}

// Handler searches books by title or author. Elasticsearch when configured,
// a case-insensitive LIKE over the store otherwise.
func (h *SearchHandler) Handler(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return apperr.New(apperr.BadRequest, "Search query is required")
	}

	page, limit := util.Normalize(
		parseIntDefault(c.QueryParam("page"), 0),
		parseIntDefault(c.QueryParam("limit"), 0),
	)

	var (
		total int64
		books []models.Book
	)
	if h.Search != nil {
		var err error
		total, books, err = h.Search.Search(c.Request().Context(), q, util.Offset(page, limit), limit)
		if err != nil {
			return apperr.Internalf("search: %w", err)
		}
	} else {
		pattern := "%" + strings.ToLower(q) + "%"
		query := h.DB.Model(&models.Book{}).
			Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", pattern, pattern)
		if err := query.Count(&total).Error; err != nil {
			return apperr.Internalf("count search results: %w", err)
		}
		if err := query.Order("created_at DESC").
			Offset(util.Offset(page, limit)).Limit(limit).
			Find(&books).Error; err != nil {
			return apperr.Internalf("search books: %w", err)
		}
	}

	return response.Paginated(c, "Search results retrieved successfully", books, util.NewPagination(page, limit, total))
}
