package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ntsvetkov/bookreview/internal/handlers"
	"github.com/ntsvetkov/bookreview/internal/hash"
	"github.com/ntsvetkov/bookreview/internal/models"
	"github.com/ntsvetkov/bookreview/internal/response"
	"github.com/ntsvetkov/bookreview/internal/token"
	"github.com/ntsvetkov/bookreview/internal/validate"
)

type testEnv struct {
	e      *echo.Echo
	db     *gorm.DB
	tokens *token.Manager
	hasher *hash.Hasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to connect to in-memory db")
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Book{}, &models.Review{}))

	tokens := token.NewManager([]byte("test-secret"), time.Hour)
	hasher := hash.NewHasher(4)

	e := echo.New()
	e.Validator = validate.New()
	e.HTTPErrorHandler = response.ErrorHandler()

	Register(e, &Deps{
		DB:            db,
		Tokens:        tokens,
		AuthHandler:   &handlers.AuthHandler{DB: db, Tokens: tokens, Hasher: hasher},
		BookHandler:   &handlers.BookHandler{DB: db},
		ReviewHandler: &handlers.ReviewHandler{DB: db},
		SearchHandler: &handlers.SearchHandler{DB: db},
	})

	return &testEnv{e: e, db: db, tokens: tokens, hasher: hasher}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// createUser inserts a user directly and returns it with a valid token.
func (env *testEnv) createUser(t *testing.T, username, email, password string) (models.User, string) {
	t.Helper()

	digest, err := env.hasher.Hash(password)
	require.NoError(t, err)

	user := models.User{Username: username, Email: email, PasswordHash: digest}
	require.NoError(t, env.db.Create(&user).Error)

	signed, err := env.tokens.Issue(user.ID, user.Email)
	require.NoError(t, err)
	return user, signed
}

func (env *testEnv) createBook(t *testing.T, title, author string) models.Book {
	t.Helper()

	book := models.Book{Title: title, Author: author, Genre: "Uncategorized"}
	require.NoError(t, env.db.Create(&book).Error)
	return book
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

func dataOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	data, ok := decode(t, rec)["data"].(map[string]any)
	require.True(t, ok, "expected object data, body: %s", rec.Body.String())
	return data
}
