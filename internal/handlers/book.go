package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ntsvetkov/bookreview/internal/apperr"
	"github.com/ntsvetkov/bookreview/internal/logging"
	"github.com/ntsvetkov/bookreview/internal/models"
	"github.com/ntsvetkov/bookreview/internal/mykafka"
	"github.com/ntsvetkov/bookreview/internal/response"
	"github.com/ntsvetkov/bookreview/internal/service/search"
	"github.com/ntsvetkov/bookreview/internal/util"
)

type BookHandler struct {
	DB       *gorm.DB
	Search   *search.Service
	Producer *mykafka.Producer
}

type createBookRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=200"`
	Author      string `json:"author"      validate:"required,min=1,max=100"`
	Genre       string `json:"genre"       validate:"omitempty,max=50"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type updateBookRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=200"`
	Author      *string `json:"author"      validate:"omitempty,min=1,max=100"`
	Genre       *string `json:"genre"       validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// index mirrors the book into Elasticsearch, best effort.
func (h *BookHandler) index(c echo.Context, book models.Book) {
	if h.Search == nil {
		return
	}
	if err := h.Search.IndexBook(c.Request().Context(), book); err != nil {
		logging.FromContext(c.Request().Context()).Error("index book", "bookID", book.ID, "error", err.Error())
	}
}

func (h *BookHandler) CreateBook(c echo.Context) error {
	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.BadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	genre := req.Genre
	if genre == "" {
		genre = "Uncategorized"
	}
	book := models.Book{
		Title:       req.Title,
		Author:      req.Author,
		Genre:       genre,
		Description: req.Description,
	}
	if err := h.DB.Create(&book).Error; err != nil {
		return apperr.Internalf("create book: %w", err)
	}

	h.index(c, book)
	publishEvent(c, h.Producer, "book_events", fmt.Sprint(book.ID), map[string]any{
		"type":   "book_created",
		"bookID": book.ID,
		"title":  book.Title,
	})

	return response.Success(c, http.StatusCreated, "Book added successfully", echo.Map{"book": book})
}

func (h *BookHandler) ListBooks(c echo.Context) error {
	page, limit := util.Normalize(
		parseIntDefault(c.QueryParam("page"), 0),
		parseIntDefault(c.QueryParam("limit"), 0),
	)

	query := h.DB.Model(&models.Book{})
	if author := strings.TrimSpace(c.QueryParam("author")); author != "" {
		query = query.Where("LOWER(author) LIKE ?", "%"+strings.ToLower(author)+"%")
	}
	if genre := strings.TrimSpace(c.QueryParam("genre")); genre != "" {
		query = query.Where("LOWER(genre) LIKE ?", "%"+strings.ToLower(genre)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return apperr.Internalf("count books: %w", err)
	}

	var books []models.Book
	if err := query.Order("created_at DESC").
		Offset(util.Offset(page, limit)).Limit(limit).
		Find(&books).Error; err != nil {
		return apperr.Internalf("list books: %w", err)
	}

	return response.Paginated(c, "Books retrieved successfully", books, util.NewPagination(page, limit, total))
}

func (h *BookHandler) GetBook(c echo.Context) error {
	id, err := parseIDParam(c, "book")
	if err != nil {
		return err
	}

	var book models.Book
	if err := h.DB.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Book not found")
		}
		return apperr.Internalf("lookup book: %w", err)
	}

	page, limit := util.Normalize(
		parseIntDefault(c.QueryParam("page"), 0),
		parseIntDefault(c.QueryParam("limit"), 0),
	)

	var total int64
	if err := h.DB.Model(&models.Review{}).Where("book_id = ?", id).Count(&total).Error; err != nil {
		return apperr.Internalf("count reviews: %w", err)
	}

	var reviews []models.Review
	if err := h.DB.Preload("User").
		Where("book_id = ?", id).
		Order("created_at DESC").
		Offset(util.Offset(page, limit)).Limit(limit).
		Find(&reviews).Error; err != nil {
		return apperr.Internalf("list reviews: %w", err)
	}

	var avg float64
	if err := h.DB.Model(&models.Review{}).
		Where("book_id = ?", id).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error; err != nil {
		return apperr.Internalf("average rating: %w", err)
	}

	return response.Success(c, http.StatusOK, "Book details retrieved successfully", echo.Map{
		"book":          book,
		"averageRating": math.Round(avg*10) / 10,
		"reviews":       reviews,
		"pagination":    util.NewPagination(page, limit, total),
	})
}

func (h *BookHandler) UpdateBook(c echo.Context) error {
	id, err := parseIDParam(c, "book")
	if err != nil {
		return err
	}

	var req updateBookRequest
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.BadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var book models.Book
	if err := h.DB.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Book not found")
		}
		return apperr.Internalf("lookup book: %w", err)
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.Description != nil {
		book.Description = *req.Description
	}

	if err := h.DB.Save(&book).Error; err != nil {
		return apperr.Internalf("update book: %w", err)
	}

	h.index(c, book)
	publishEvent(c, h.Producer, "book_events", fmt.Sprint(book.ID), map[string]any{
		"type":   "book_updated",
		"bookID": book.ID,
		"title":  book.Title,
	})

	return response.Success(c, http.StatusOK, "Book updated successfully", echo.Map{"book": book})
}

func (h *BookHandler) DeleteBook(c echo.Context) error {
	id, err := parseIDParam(c, "book")
	if err != nil {
		return err
	}

	var book models.Book
	if err := h.DB.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Book not found")
		}
		return apperr.Internalf("lookup book: %w", err)
	}

	// the book's reviews go with it, in one transaction
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Book{}, id).Error
	})
	if err != nil {
		return apperr.Internalf("delete book: %w", err)
	}

	if h.Search != nil {
		if err := h.Search.DeleteBook(c.Request().Context(), id); err != nil {
			logging.FromContext(c.Request().Context()).Error("deindex book", "bookID", id, "error", err.Error())
		}
	}
	publishEvent(c, h.Producer, "book_events", fmt.Sprint(id), map[string]any{
		"type":   "book_deleted",
		"bookID": id,
	})

	return response.Success(c, http.StatusOK, "Book and associated reviews deleted successfully", nil)
}
