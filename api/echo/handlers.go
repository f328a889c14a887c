// Package echo wires the gateway services to HTTP routes. It owns header
// extraction and the error-to-status mapping and nothing else: all request
// semantics live in the services.
package echo

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fxgate/fxgate/domain"
	"github.com/fxgate/fxgate/services"
)

// API holds the handler dependencies.
type API struct {
	auth     *services.AuthService
	users    *services.UserService
	currency *services.CurrencyService
}

// NewAPI wires the HTTP surface.
func NewAPI(auth *services.AuthService, users *services.UserService, currency *services.CurrencyService) *API {
	return &API{auth: auth, users: users, currency: currency}
}

// RegisterRoutes attaches every route to e.
func (a *API) RegisterRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler

	auth := e.Group("/auth")
	auth.POST("/login", a.LoginHandler)
	auth.POST("/refresh_tokens", a.RefreshHandler)
	auth.POST("/logout", a.LogoutHandler, a.RequireAccessToken)
	auth.GET("/login/google", a.RedirectHandler("google"))
	auth.GET("/google", a.OAuthCallbackHandler("google"))
	auth.GET("/login/yandex", a.RedirectHandler("yandex"))
	auth.GET("/yandex", a.OAuthCallbackHandler("yandex"))

	user := e.Group("/user")
	user.POST("/registration", a.RegisterHandler)
	user.GET("/me", a.ProfileHandler, a.RequireAccessToken)

	currency := e.Group("/currency", a.RequireAccessToken)
	currency.GET("/list", a.CurrenciesHandler)
	currency.GET("/exchange", a.ConvertHandler)
	currency.GET("/live", a.LiveRatesHandler)
	currency.GET("/historical", a.HistoricalRatesHandler)
	currency.GET("/dynamics", a.RateDynamicsHandler)
	currency.GET("/daily", a.DailySeriesHandler)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	pair, err := a.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

// RefreshHandler rotates a token pair. The expired-tolerant access check
// plus the strict refresh check both happen inside the auth service.
func (a *API) RefreshHandler(c echo.Context) error {
	accessToken, err := accessTokenFromHeader(c)
	if err != nil {
		return err
	}
	refreshToken, err := refreshTokenFromHeader(c)
	if err != nil {
		return err
	}
	pair, err := a.auth.Refresh(c.Request().Context(), accessToken, refreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

func (a *API) LogoutHandler(c echo.Context) error {
	if err := a.auth.Logout(c.Request().Context(), authenticatedEmail(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RedirectHandler returns the provider's authorization URL as plain text;
// the client opens it manually.
func (a *API) RedirectHandler(provider string) echo.HandlerFunc {
	return func(c echo.Context) error {
		url, err := a.auth.RedirectURL(provider)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, url)
	}
}

// OAuthCallbackHandler is the redirect URI target for provider logins.
func (a *API) OAuthCallbackHandler(provider string) echo.HandlerFunc {
	return func(c echo.Context) error {
		code := c.QueryParam("code")
		if code == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "missing authorization code")
		}
		pair, err := a.auth.OAuthLogin(c.Request().Context(), provider, code)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, pair)
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) RegisterHandler(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user, err := a.users.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]*domain.User{"user": user})
}

func (a *API) ProfileHandler(c echo.Context) error {
	user, err := a.users.Profile(c.Request().Context(), authenticatedEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (a *API) CurrenciesHandler(c echo.Context) error {
	currencies, err := a.currency.AvailableCurrencies(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, currencies)
}

func (a *API) ConvertHandler(c echo.Context) error {
	result, err := a.currency.Convert(c.Request().Context(),
		c.QueryParam("from"), c.QueryParam("to"),
		c.QueryParam("amount"), c.QueryParam("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// notifyRequest reads the optional send_email flag; the recipient is the
// authenticated caller.
func notifyRequest(c echo.Context) *services.NotifyRequest {
	if c.QueryParam("send_email") != "true" {
		return nil
	}
	return &services.NotifyRequest{Email: authenticatedEmail(c)}
}

func targets(c echo.Context) []string {
	return strings.Split(c.QueryParam("currencies"), ",")
}

func (a *API) LiveRatesHandler(c echo.Context) error {
	info, err := a.currency.LiveRates(c.Request().Context(),
		c.QueryParam("source"), targets(c), notifyRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

func (a *API) HistoricalRatesHandler(c echo.Context) error {
	info, err := a.currency.HistoricalRates(c.Request().Context(),
		c.QueryParam("source"), targets(c), c.QueryParam("date"), notifyRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

func (a *API) RateDynamicsHandler(c echo.Context) error {
	dynamics, err := a.currency.RateDynamics(c.Request().Context(),
		c.QueryParam("source"), targets(c),
		c.QueryParam("start_date"), c.QueryParam("end_date"), notifyRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dynamics)
}

func (a *API) DailySeriesHandler(c echo.Context) error {
	series, err := a.currency.DailySeries(c.Request().Context(),
		c.QueryParam("source"), targets(c),
		c.QueryParam("start_date"), c.QueryParam("end_date"), notifyRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, series)
}
