package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ntsvetkov/bookreview/internal/config"
	"github.com/ntsvetkov/bookreview/internal/es"
	"github.com/ntsvetkov/bookreview/internal/handlers"
	"github.com/ntsvetkov/bookreview/internal/hash"
	"github.com/ntsvetkov/bookreview/internal/logging"
	"github.com/ntsvetkov/bookreview/internal/mykafka"
	"github.com/ntsvetkov/bookreview/internal/response"
	"github.com/ntsvetkov/bookreview/internal/service/search"
	"github.com/ntsvetkov/bookreview/internal/token"
	httpserver "github.com/ntsvetkov/bookreview/internal/transport/http"
	"github.com/ntsvetkov/bookreview/internal/validate"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LogLevel)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	tokens := token.NewManager([]byte(configuration.JWT_SECRET), configuration.TokenTTL)
	hasher := hash.NewHasher(configuration.BcryptCost)

	var searchSvc *search.Service
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchSvc = search.NewService(esClient, "books")
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = response.ErrorHandler()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:            db,
		Tokens:        tokens,
		AuthHandler:   &handlers.AuthHandler{DB: db, Tokens: tokens, Hasher: hasher, Producer: producer},
		BookHandler:   &handlers.BookHandler{DB: db, Search: searchSvc, Producer: producer},
		ReviewHandler: &handlers.ReviewHandler{DB: db, Producer: producer},
		SearchHandler: &handlers.SearchHandler{DB: db, Search: searchSvc},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
