package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ntsvetkov/bookreview/internal/apperr"
	"github.com/ntsvetkov/bookreview/internal/models"
	"github.com/ntsvetkov/bookreview/internal/mykafka"
	"github.com/ntsvetkov/bookreview/internal/response"
)

type ReviewHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type createReviewRequest struct {
	Rating  int    `json:"rating"  validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating"  validate:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	bookID, err := parseIDParam(c, "book")
	if err != nil {
		return err
	}

	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.BadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var book models.Book
	if err := h.DB.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Book not found")
		}
		return apperr.Internalf("lookup book: %w", err)
	}

	// friendly pre-check; the unique index is what actually holds the line
	var existing models.Review
	err = h.DB.Where("book_id = ? AND user_id = ?", bookID, userID).First(&existing).Error
	if err == nil {
		return apperr.New(apperr.Conflict, "You have already reviewed this book")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Internalf("lookup review: %w", err)
	}

	review := models.Review{
		BookID:  bookID,
		UserID:  userID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.DB.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.New(apperr.Conflict, "You have already reviewed this book")
		}
		return apperr.Internalf("create review: %w", err)
	}

	if err := h.DB.Preload("User").First(&review, review.ID).Error; err != nil {
		return apperr.Internalf("reload review: %w", err)
	}

	publishEvent(c, h.Producer, "review_events", fmt.Sprint(review.ID), map[string]any{
		"type":     "review_created",
		"reviewID": review.ID,
		"bookID":   bookID,
		"userID":   userID,
	})

	return response.Success(c, http.StatusCreated, "Review submitted successfully", echo.Map{"review": review})
}

func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	reviewID, err := parseIDParam(c, "review")
	if err != nil {
		return err
	}

	var req updateReviewRequest
	if err := c.Bind(&req); err != nil {
		return apperr.New(apperr.BadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var review models.Review
	if err := h.DB.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Review not found")
		}
		return apperr.Internalf("lookup review: %w", err)
	}

	if review.UserID != userID {
		return apperr.New(apperr.Forbidden, "You can only update your own reviews")
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	if err := h.DB.Save(&review).Error; err != nil {
		return apperr.Internalf("update review: %w", err)
	}

	if err := h.DB.Preload("User").First(&review, review.ID).Error; err != nil {
		return apperr.Internalf("reload review: %w", err)
	}

	publishEvent(c, h.Producer, "review_events", fmt.Sprint(review.ID), map[string]any{
		"type":     "review_updated",
		"reviewID": review.ID,
		"userID":   userID,
	})

	return response.Success(c, http.StatusOK, "Review updated successfully", echo.Map{"review": review})
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	reviewID, err := parseIDParam(c, "review")
	if err != nil {
		return err
	}

	var review models.Review
	if err := h.DB.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Review not found")
		}
		return apperr.Internalf("lookup review: %w", err)
	}

	if review.UserID != userID {
		return apperr.New(apperr.Forbidden, "You can only delete your own reviews")
	}

	if err := h.DB.Delete(&models.Review{}, reviewID).Error; err != nil {
		return apperr.Internalf("delete review: %w", err)
	}

	publishEvent(c, h.Producer, "review_events", fmt.Sprint(reviewID), map[string]any{
		"type":     "review_deleted",
		"reviewID": reviewID,
		"userID":   userID,
	})

	return response.Success(c, http.StatusOK, "Review deleted successfully", nil)
}

func (h *ReviewHandler) UserReviews(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var reviews []models.Review
	if err := h.DB.Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return apperr.Internalf("list reviews: %w", err)
	}

	return response.Success(c, http.StatusOK, "User reviews retrieved successfully", echo.Map{"reviews": reviews})
}
