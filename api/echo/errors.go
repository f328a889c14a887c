package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	serrors "github.com/fxgate/fxgate/errors"
)

// statusByDetail is the single mapping from error kind to transport
// status. Kinds absent here fall back to 500.
var statusByDetail = map[string]int{
	serrors.ErrUserNotFound.Detail:        http.StatusUnauthorized,
	serrors.ErrPasswordIncorrect.Detail:   http.StatusUnauthorized,
	serrors.ErrTokenMalformed.Detail:      http.StatusUnauthorized,
	serrors.ErrTokenExpired.Detail:        http.StatusUnauthorized,
	serrors.ErrWrongTokenType.Detail:      http.StatusUnauthorized,
	serrors.ErrTokenRevoked.Detail:        http.StatusUnauthorized,
	serrors.ErrAuthHeader.Detail:          http.StatusUnauthorized,
	serrors.ErrIdentityToken.Detail:       http.StatusUnauthorized,
	serrors.ErrUserExists.Detail:          http.StatusConflict,
	serrors.ErrUnknownCurrency.Detail:     http.StatusNotAcceptable,
	serrors.ErrProviderUnavailable.Detail: http.StatusNotAcceptable,
	serrors.ErrInvalidDateRange.Detail:    http.StatusUnprocessableEntity,
}

type errorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// ErrorHandler converts gateway errors to their transport shape. Clients
// branch on detail and display message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var authErr *serrors.AuthError
	if errors.As(err, &authErr) {
		status, ok := statusByDetail[authErr.Detail]
		if !ok {
			status = http.StatusInternalServerError
		}
		if status == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}
		_ = c.JSON(status, errorResponse{Detail: authErr.Detail, Message: authErr.Message})
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		_ = c.JSON(httpErr.Code, errorResponse{Detail: "http_error", Message: http.StatusText(httpErr.Code)})
		return
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	_ = c.JSON(http.StatusInternalServerError, errorResponse{
		Detail:  "internal_error",
		Message: "Internal server error",
	})
}
