package httpserver

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// Full journey: signup, login, add a book, review it once, get rejected on
// the second attempt, edit the review, and watch a stranger get turned away.
func TestFullFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/signup", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "Pass1234",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/login", map[string]string{
		"email": "alice@x.com", "password": "Pass1234",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	bearer := dataOf(t, rec)["token"].(string)

	rec = env.do(t, http.MethodPost, "/books", map[string]string{
		"title": "Dune", "author": "Herbert",
	}, bearer)
	require.Equal(t, http.StatusCreated, rec.Code)
	bookID := dataOf(t, rec)["book"].(map[string]any)["id"].(float64)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/books/%.0f/reviews", bookID), map[string]any{
		"rating": 5,
	}, bearer)
	require.Equal(t, http.StatusCreated, rec.Code)
	reviewID := dataOf(t, rec)["review"].(map[string]any)["id"].(float64)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/books/%.0f/reviews", bookID), map[string]any{
		"rating": 5,
	}, bearer)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/reviews/%.0f", reviewID), map[string]any{
		"rating": 3,
	}, bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 3, dataOf(t, rec)["review"].(map[string]any)["rating"])

	_, strangerBearer := env.createUser(t, "mallory", "mallory@x.com", "Pass1234")
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/reviews/%.0f", reviewID), nil, strangerBearer)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
