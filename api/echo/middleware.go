package echo

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fxgate/fxgate/domain"
	serrors "github.com/fxgate/fxgate/errors"
)

const (
	refreshTokenHeader = "X-Refresh-Token"
	emailContextKey    = "authenticated_email"
)

// accessTokenFromHeader extracts the bearer token from the Authorization
// header.
func accessTokenFromHeader(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", serrors.ErrAuthHeader.WithMessage("No Authorization header received")
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "bearer") {
		return "", serrors.ErrAuthHeader.WithMessage(
			"Please check if bearer is included in Authorization header")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", serrors.ErrAuthHeader.WithMessage(
			"Please check if token value is included in Authorization header")
	}
	return token, nil
}

func refreshTokenFromHeader(c echo.Context) (string, error) {
	token := c.Request().Header.Get(refreshTokenHeader)
	if token == "" {
		return "", serrors.ErrAuthHeader.WithMessage("No X-Refresh-Token header received")
	}
	return token, nil
}

// RequireAccessToken validates the bearer token with full expiry
// enforcement and stores the subject email on the request context.
func (a *API) RequireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenValue, err := accessTokenFromHeader(c)
		if err != nil {
			return err
		}
		email, err := a.auth.Validate(c.Request().Context(), tokenValue, domain.AccessToken, true)
		if err != nil {
			return err
		}
		c.Set(emailContextKey, email)
		return next(c)
	}
}

func authenticatedEmail(c echo.Context) string {
	email, _ := c.Get(emailContextKey).(string)
	return email
}
