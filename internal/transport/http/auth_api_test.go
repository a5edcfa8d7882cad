package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ntsvetkov/bookreview/internal/models"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/signup", map[string]string{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "Pass1234",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	require.Equal(t, true, body["success"])
	user := dataOf(t, rec)["user"].(map[string]any)
	require.Equal(t, "alice", user["username"])
	require.Equal(t, "alice@x.com", user["email"])
	require.NotContains(t, rec.Body.String(), "Pass1234")
	require.NotContains(t, rec.Body.String(), "password")

	var stored models.User
	require.NoError(t, env.db.Where("username = ?", "alice").First(&stored).Error)
	require.NotEqual(t, "Pass1234", stored.PasswordHash)
}

func TestSignupConflicts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/signup", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "Pass1234",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/signup", map[string]string{
		"username": "alice2", "email": "alice@x.com", "password": "Pass1234",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Email already in use", decode(t, rec)["message"])

	rec = env.do(t, http.MethodPost, "/signup", map[string]string{
		"username": "alice", "email": "alice2@x.com", "password": "Pass1234",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Username already taken", decode(t, rec)["message"])

	// neither field collides
	rec = env.do(t, http.MethodPost, "/signup", map[string]string{
		"username": "bob", "email": "bob@x.com", "password": "Pass1234",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]string{
		{"username": "al", "email": "alice@x.com", "password": "Pass1234"},
		{"username": "alice", "email": "not-an-email", "password": "Pass1234"},
		{"username": "alice", "email": "alice@x.com", "password": "short"},
		{"username": "alice", "email": "alice@x.com", "password": "alllowercase1"},
		{"username": "alice", "email": "alice@x.com"},
	}
	for _, payload := range cases {
		rec := env.do(t, http.MethodPost, "/signup", payload, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, "payload %v", payload)
		require.Equal(t, false, decode(t, rec)["success"])
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "alice@x.com", "Pass1234")

	rec := env.do(t, http.MethodPost, "/login", map[string]string{
		"email": "alice@x.com", "password": "Pass1234",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := dataOf(t, rec)
	require.NotEmpty(t, data["token"])
	require.Equal(t, "alice", data["user"].(map[string]any)["username"])

	rec = env.do(t, http.MethodPost, "/login", map[string]string{
		"email": "alice@x.com", "password": "WrongPass1",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid credentials", decode(t, rec)["message"])

	rec = env.do(t, http.MethodPost, "/login", map[string]string{
		"email": "nobody@x.com", "password": "Pass1234",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	user, bearer := env.createUser(t, "alice", "alice@x.com", "Pass1234")

	rec := env.do(t, http.MethodGet, "/profile", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	got := dataOf(t, rec)["user"].(map[string]any)
	require.EqualValues(t, user.ID, got["id"])
	require.Equal(t, "alice", got["username"])

	rec = env.do(t, http.MethodGet, "/profile", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "token required", decode(t, rec)["message"])

	// token outlives the user record
	require.NoError(t, env.db.Delete(&models.User{}, user.ID).Error)
	rec = env.do(t, http.MethodGet, "/profile", nil, bearer)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
