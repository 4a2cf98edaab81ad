package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jjudge-oj/userapi/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndMe(t *testing.T) {
	api := newTestAPI(t, Paginator{PageSize: 20})
	user := api.createUser("carol", false)

	rec := api.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "carol", "password": "pw-carol"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeJSON[AuthResponse](t, rec)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int(time.Hour.Seconds()), resp.ExpiresIn)
	assert.Equal(t, user.ID, resp.User.ID)

	stored, err := api.repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	rec = api.do(http.MethodGet, "/auth/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "carol", decodeJSON[UserResponse](t, rec).Username)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestLoginFailures(t *testing.T) {
	api := newTestAPI(t, Paginator{PageSize: 20})
	api.createUser("dave", false)

	rec := api.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "dave", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "nobody", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/auth/login", "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string][]string{
		"username": {services.MsgRequired},
		"password": {services.MsgRequired},
	}, decodeJSON[map[string][]string](t, rec))

	rec = api.do(http.MethodPost, "/auth/login", "", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresActor(t *testing.T) {
	api := newTestAPI(t, Paginator{PageSize: 20})

	rec := api.do(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, detailNotAuthenticated, decodeJSON[ErrorResponse](t, rec).Detail)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken(42, "secret", time.Minute)
	require.NoError(t, err)

	subject, err := parseTokenSubject(token, []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, "42", subject)

	_, err = parseTokenSubject(token, []byte("other"))
	assert.Error(t, err)
}
