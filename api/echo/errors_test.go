package echo

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/fxgate/fxgate/errors"
)

func handleError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ErrorHandler(err, e.NewContext(req, rec))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		err    *serrors.AuthError
		status int
	}{
		{serrors.ErrUserNotFound, http.StatusUnauthorized},
		{serrors.ErrPasswordIncorrect, http.StatusUnauthorized},
		{serrors.ErrTokenExpired, http.StatusUnauthorized},
		{serrors.ErrTokenRevoked, http.StatusUnauthorized},
		{serrors.ErrUserExists, http.StatusConflict},
		{serrors.ErrUnknownCurrency, http.StatusNotAcceptable},
		{serrors.ErrProviderUnavailable, http.StatusNotAcceptable},
		{serrors.ErrInvalidDateRange, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.err.Detail, func(t *testing.T) {
			rec := handleError(t, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.err.Detail, decodeError(t, rec).Detail)
		})
	}
}

func TestErrorHandlerSetsWWWAuthenticate(t *testing.T) {
	rec := handleError(t, serrors.AccessTokenExpired())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
	assert.Contains(t, decodeError(t, rec).Message, "/auth/refresh_tokens")

	rec = handleError(t, serrors.UserExists("email"))
	assert.Empty(t, rec.Header().Get(echo.HeaderWWWAuthenticate))
}

func TestErrorHandlerUnknownErrorIs500(t *testing.T) {
	rec := handleError(t, errors.New("database on fire"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "internal_error", body.Detail)
	// The raw error never leaks to the client.
	assert.NotContains(t, rec.Body.String(), "database on fire")
}

func TestErrorHandlerEchoHTTPError(t *testing.T) {
	rec := handleError(t, echo.NewHTTPError(http.StatusBadRequest, "invalid request body"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "http_error", decodeError(t, rec).Detail)
}
