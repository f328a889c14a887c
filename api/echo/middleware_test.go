package echo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/fxgate/fxgate/errors"
)

func contextWithAuth(header string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestAccessTokenFromHeader(t *testing.T) {
	token, err := accessTokenFromHeader(contextWithAuth("Bearer abc.def.ghi"))
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	// Scheme matching is case-insensitive.
	token, err = accessTokenFromHeader(contextWithAuth("bearer abc.def.ghi"))
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)
}

func TestAccessTokenFromHeaderMissing(t *testing.T) {
	_, err := accessTokenFromHeader(contextWithAuth(""))
	assert.ErrorIs(t, err, serrors.ErrAuthHeader)
}

func TestAccessTokenFromHeaderWrongScheme(t *testing.T) {
	_, err := accessTokenFromHeader(contextWithAuth("Basic dXNlcjpwYXNz"))
	assert.ErrorIs(t, err, serrors.ErrAuthHeader)
}

func TestAccessTokenFromHeaderEmptyToken(t *testing.T) {
	_, err := accessTokenFromHeader(contextWithAuth("Bearer "))
	assert.ErrorIs(t, err, serrors.ErrAuthHeader)

	_, err = accessTokenFromHeader(contextWithAuth("Bearer"))
	assert.ErrorIs(t, err, serrors.ErrAuthHeader)
}

func TestRefreshTokenFromHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh_tokens", nil)
	req.Header.Set(refreshTokenHeader, "refresh.token.value")
	c := e.NewContext(req, httptest.NewRecorder())

	token, err := refreshTokenFromHeader(c)
	require.NoError(t, err)
	assert.Equal(t, "refresh.token.value", token)

	req.Header.Del(refreshTokenHeader)
	_, err = refreshTokenFromHeader(c)
	assert.ErrorIs(t, err, serrors.ErrAuthHeader)
}
