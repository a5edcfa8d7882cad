package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchRequiresQuery(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/search", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Search query is required", decode(t, rec)["message"])

	rec = env.do(t, http.MethodGet, "/search?q=%20%20", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchByTitleAndAuthor(t *testing.T) {
	env := newTestEnv(t)
	env.createBook(t, "Dune", "Frank Herbert")
	env.createBook(t, "Dune Messiah", "Frank Herbert")
	env.createBook(t, "Neuromancer", "William Gibson")

	rec := env.do(t, http.MethodGet, "/search?q=dune", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Len(t, body["data"].([]any), 2)
	require.EqualValues(t, 2, body["pagination"].(map[string]any)["total"])

	// author matches too
	rec = env.do(t, http.MethodGet, "/search?q=gibson", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["data"].([]any), 1)

	rec = env.do(t, http.MethodGet, "/search?q=nothing-matches", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["data"].([]any), 0)
}

func TestSearchPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 7; i++ {
		env.createBook(t, "Dune", "Herbert")
	}

	rec := env.do(t, http.MethodGet, "/search?q=dune&page=2&limit=3", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.Len(t, body["data"].([]any), 3)
	pagination := body["pagination"].(map[string]any)
	require.EqualValues(t, 7, pagination["total"])
	require.EqualValues(t, 3, pagination["pages"])
	require.Equal(t, true, pagination["hasNextPage"])
	require.Equal(t, true, pagination["hasPrevPage"])
}
