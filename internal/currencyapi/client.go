// Package currencyapi is the HTTP client for the upstream apilayer-style
// exchange-rate API. Quote keys arrive concatenated ("USDRUB"); this
// package splits off the source prefix so the rest of the gateway only
// sees bare target codes.
package currencyapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fxgate/fxgate/domain"
	serrors "github.com/fxgate/fxgate/errors"
)

const liveDateLayout = "2006-01-02 15:04"

// Client calls the upstream rate API. Every request carries the configured
// API key header and is bounded by the client timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New builds a Client for baseURL authenticated with apiKey.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type apiError struct {
	Code int    `json:"code"`
	Info string `json:"info"`
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint, nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return serrors.ErrProviderUnavailable.WithMessage("rate provider request failed: %v", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return serrors.ErrProviderUnavailable.WithMessage("rate provider sent an unreadable response: %v", err)
	}
	return nil
}

func providerError(endpoint string, apiErr apiError) error {
	return serrors.ErrProviderUnavailable.WithMessage(
		"rate provider %s call failed: %s", endpoint, apiErr.Info)
}

// Currencies fetches the full currency catalog.
func (c *Client) Currencies(ctx context.Context) (map[string]string, error) {
	var resp struct {
		Success    bool              `json:"success"`
		Error      apiError          `json:"error"`
		Currencies map[string]string `json:"currencies"`
	}
	if err := c.get(ctx, "list", url.Values{}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, providerError("list", resp.Error)
	}
	return resp.Currencies, nil
}

// Convert asks upstream to convert amount between two currencies on date.
func (c *Client) Convert(ctx context.Context, from, to, amount, date string) (*domain.ConvertResult, error) {
	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)
	params.Set("amount", amount)
	params.Set("date", date)

	var resp struct {
		Success bool     `json:"success"`
		Error   apiError `json:"error"`
		Query   struct {
			From   string      `json:"from"`
			To     string      `json:"to"`
			Amount json.Number `json:"amount"`
		} `json:"query"`
		Info struct {
			Quote float64 `json:"quote"`
		} `json:"info"`
		Date   string  `json:"date"`
		Result float64 `json:"result"`
	}
	if err := c.get(ctx, "convert", params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, providerError("convert", resp.Error)
	}
	return &domain.ConvertResult{
		ExchangeFrom: resp.Query.From,
		ExchangeTo:   resp.Query.To,
		Amount:       resp.Query.Amount.String(),
		Date:         resp.Date,
		Result:       resp.Result,
		ExchangeRate: resp.Info.Quote,
	}, nil
}

type quoteResponse struct {
	Success   bool               `json:"success"`
	Error     apiError           `json:"error"`
	Timestamp int64              `json:"timestamp"`
	Source    string             `json:"source"`
	Quotes    map[string]float64 `json:"quotes"`
}

func (c *Client) rateInfo(ctx context.Context, endpoint string, params url.Values) (*domain.RateInfo, error) {
	var resp quoteResponse
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, providerError(endpoint, resp.Error)
	}
	return &domain.RateInfo{
		Date:         time.Unix(resp.Timestamp, 0).UTC().Format(liveDateLayout),
		Source:       resp.Source,
		ExchangeRate: stripSource(resp.Source, resp.Quotes),
	}, nil
}

// LiveRates fetches the current quotes for source against targets.
func (c *Client) LiveRates(ctx context.Context, source string, targets []string) (*domain.RateInfo, error) {
	params := url.Values{}
	params.Set("source", source)
	params.Set("currencies", strings.Join(targets, ","))
	return c.rateInfo(ctx, "live", params)
}

// HistoricalRates fetches quotes for one past day.
func (c *Client) HistoricalRates(ctx context.Context, source string, targets []string, date string) (*domain.RateInfo, error) {
	params := url.Values{}
	params.Set("source", source)
	params.Set("currencies", strings.Join(targets, ","))
	params.Set("date", date)
	return c.rateInfo(ctx, "historical", params)
}

// RateDynamics fetches per-target movement over a period.
func (c *Client) RateDynamics(ctx context.Context, source string, targets []string, startDate, endDate string) (*domain.RateDynamics, error) {
	params := url.Values{}
	params.Set("source", source)
	params.Set("currencies", strings.Join(targets, ","))
	params.Set("start_date", startDate)
	params.Set("end_date", endDate)

	var resp struct {
		Success   bool                         `json:"success"`
		Error     apiError                     `json:"error"`
		StartDate string                       `json:"start_date"`
		EndDate   string                       `json:"end_date"`
		Source    string                       `json:"source"`
		Quotes    map[string]domain.RateChange `json:"quotes"`
	}
	if err := c.get(ctx, "change", params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, providerError("change", resp.Error)
	}

	dynamics := make(map[string]domain.RateChange, len(resp.Quotes))
	for pair, change := range resp.Quotes {
		dynamics[strings.TrimPrefix(pair, resp.Source)] = change
	}
	return &domain.RateDynamics{
		StartDate: resp.StartDate,
		EndDate:   resp.EndDate,
		Source:    resp.Source,
		Dynamics:  dynamics,
	}, nil
}

// DailySeries fetches one quote per target per day over a bounded range.
func (c *Client) DailySeries(ctx context.Context, source string, targets []string, startDate, endDate string) (*domain.DailySeries, error) {
	params := url.Values{}
	params.Set("source", source)
	params.Set("currencies", strings.Join(targets, ","))
	params.Set("start_date", startDate)
	params.Set("end_date", endDate)

	var resp struct {
		Success   bool                          `json:"success"`
		Error     apiError                      `json:"error"`
		StartDate string                        `json:"start_date"`
		EndDate   string                        `json:"end_date"`
		Source    string                        `json:"source"`
		Quotes    map[string]map[string]float64 `json:"quotes"`
	}
	if err := c.get(ctx, "timeframe", params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, providerError("timeframe", resp.Error)
	}

	data := make(map[string]map[string]float64, len(resp.Quotes))
	for date, quotes := range resp.Quotes {
		data[date] = stripSource(resp.Source, quotes)
	}
	return &domain.DailySeries{
		StartDate: resp.StartDate,
		EndDate:   resp.EndDate,
		Source:    resp.Source,
		Data:      data,
	}, nil
}

func stripSource(source string, quotes map[string]float64) map[string]float64 {
	rates := make(map[string]float64, len(quotes))
	for pair, rate := range quotes {
		rates[strings.TrimPrefix(pair, source)] = rate
	}
	return rates
}

var _ domain.RateProvider = (*Client)(nil)
