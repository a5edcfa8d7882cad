package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ntsvetkov/bookreview/internal/handlers"
	"github.com/ntsvetkov/bookreview/internal/middleware/auth"
	"github.com/ntsvetkov/bookreview/internal/token"
)

type Deps struct {
	DB            *gorm.DB
	Tokens        *token.Manager
	AuthHandler   *handlers.AuthHandler
	BookHandler   *handlers.BookHandler
	ReviewHandler *handlers.ReviewHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	bearer := auth.JWT(d.Tokens)

	e.POST("/signup", d.AuthHandler.Signup)
	e.POST("/login", d.AuthHandler.Login)
	e.GET("/profile", d.AuthHandler.Profile, bearer)

	books := e.Group("/books")
	books.GET("", d.BookHandler.ListBooks)
	books.GET("/:id", d.BookHandler.GetBook)
	books.POST("", d.BookHandler.CreateBook, bearer)
	books.PUT("/:id", d.BookHandler.UpdateBook, bearer)
	books.DELETE("/:id", d.BookHandler.DeleteBook, bearer)
	books.POST("/:id/reviews", d.ReviewHandler.CreateReview, bearer)

	reviews := e.Group("/reviews", bearer)
	reviews.GET("/user", d.ReviewHandler.UserReviews)
	reviews.PUT("/:id", d.ReviewHandler.UpdateReview)
	reviews.DELETE("/:id", d.ReviewHandler.DeleteReview)

	e.GET("/search", d.SearchHandler.Handler)
}
