package services

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fxgate/fxgate/cache"
	"github.com/fxgate/fxgate/domain"
	serrors "github.com/fxgate/fxgate/errors"
	"github.com/fxgate/fxgate/events"
)

// maxSeriesDays caps a daily-series request; it mirrors the upstream
// timeframe limit and is checked before any network call.
const maxSeriesDays = 365

// NotifyRequest asks a currency operation to mail its response to the
// caller once it succeeds.
type NotifyRequest struct {
	Email string
}

// CurrencyService validates currency codes against the cached catalog,
// serves cached historical rates ahead of the upstream provider, and fans
// successful responses out to the notification pipeline.
type CurrencyService struct {
	provider  domain.RateProvider
	cache     cache.RateCache
	publisher events.Publisher

	// now is swapped in tests to pin "today".
	now func() time.Time
}

// NewCurrencyService wires the gateway service.
func NewCurrencyService(provider domain.RateProvider, rateCache cache.RateCache, publisher events.Publisher) *CurrencyService {
	return &CurrencyService{
		provider:  provider,
		cache:     rateCache,
		publisher: publisher,
		now:       time.Now,
	}
}

// AvailableCurrencies returns the currency catalog, cache first.
func (s *CurrencyService) AvailableCurrencies(ctx context.Context) (map[string]string, error) {
	return s.ensureCatalog(ctx)
}

// Convert exchanges amount from one currency to another on date. For
// non-today dates a cached rate point short-circuits the upstream call;
// on a miss the observed rate is written back for the next caller.
func (s *CurrencyService) Convert(ctx context.Context, from, to, amount, date string) (*domain.ConvertResult, error) {
	if err := s.checkCurrencies(ctx, from, to); err != nil {
		return nil, err
	}

	historical := date != s.today()
	if historical {
		rate, ok, err := s.cache.Rate(ctx, from, to, date)
		if err != nil {
			log.Warn().Err(err).Msg("rate cache read failed, falling through to provider")
		} else if ok {
			// Malformed amounts fall through to the provider, which
			// rejects them with its own error.
			if value, perr := strconv.ParseFloat(amount, 64); perr == nil {
				return &domain.ConvertResult{
					ExchangeFrom: from,
					ExchangeTo:   to,
					Amount:       amount,
					Date:         date,
					Result:       round4(value * rate),
					ExchangeRate: rate,
				}, nil
			}
		}
	}

	result, err := s.provider.Convert(ctx, from, to, amount, date)
	if err != nil {
		return nil, err
	}
	if historical {
		if err := s.cache.PutRate(ctx, from, to, date, result.ExchangeRate); err != nil {
			log.Warn().Err(err).Msg("failed to cache rate point")
		}
	}
	return result, nil
}

// LiveRates returns current quotes. Live data is never cached.
func (s *CurrencyService) LiveRates(ctx context.Context, source string, targets []string, notify *NotifyRequest) (*domain.RateInfo, error) {
	if err := s.checkCurrencies(ctx, append(targets, source)...); err != nil {
		return nil, err
	}
	info, err := s.provider.LiveRates(ctx, source, targets)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify, events.InfoLive, info)
	return info, nil
}

// HistoricalRates returns quotes for one past day.
func (s *CurrencyService) HistoricalRates(ctx context.Context, source string, targets []string, date string, notify *NotifyRequest) (*domain.RateInfo, error) {
	if err := s.checkCurrencies(ctx, append(targets, source)...); err != nil {
		return nil, err
	}
	info, err := s.provider.HistoricalRates(ctx, source, targets, date)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify, events.InfoHist, info)
	return info, nil
}

// RateDynamics returns per-target movement between two dates.
func (s *CurrencyService) RateDynamics(ctx context.Context, source string, targets []string, startDate, endDate string, notify *NotifyRequest) (*domain.RateDynamics, error) {
	if _, _, err := s.parsePeriod(startDate, endDate); err != nil {
		return nil, err
	}
	if err := s.checkCurrencies(ctx, append(targets, source)...); err != nil {
		return nil, err
	}
	dynamics, err := s.provider.RateDynamics(ctx, source, targets, startDate, endDate)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify, events.InfoChange, dynamics)
	return dynamics, nil
}

// DailySeries returns one quote per target per day over the range.
func (s *CurrencyService) DailySeries(ctx context.Context, source string, targets []string, startDate, endDate string, notify *NotifyRequest) (*domain.DailySeries, error) {
	start, end, err := s.parsePeriod(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if end.Sub(start) > maxSeriesDays*24*time.Hour {
		return nil, serrors.ErrInvalidDateRange.WithMessage(
			"Requested period exceeds %d days", maxSeriesDays)
	}
	if err := s.checkCurrencies(ctx, append(targets, source)...); err != nil {
		return nil, err
	}
	series, err := s.provider.DailySeries(ctx, source, targets, startDate, endDate)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notify, events.InfoDaily, series)
	return series, nil
}

// checkCurrencies ensures the catalog is populated and every requested
// code is part of it.
func (s *CurrencyService) checkCurrencies(ctx context.Context, codes ...string) error {
	catalog, err := s.ensureCatalog(ctx)
	if err != nil {
		return err
	}
	for _, code := range codes {
		if _, ok := catalog[code]; !ok {
			return serrors.ErrUnknownCurrency.WithMessage("Unknown currency code %q requested", code)
		}
	}
	return nil
}

func (s *CurrencyService) ensureCatalog(ctx context.Context) (map[string]string, error) {
	catalog, err := s.cache.Catalog(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("catalog cache read failed, falling through to provider")
	}
	if len(catalog) > 0 {
		return catalog, nil
	}

	catalog, err = s.provider.Currencies(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.PutCatalog(ctx, catalog); err != nil {
		log.Warn().Err(err).Msg("failed to cache currency catalog")
	}
	return catalog, nil
}

// notify serializes payload and enqueues it for mail delivery. Publish
// failures are logged and never fail the primary request.
func (s *CurrencyService) notify(ctx context.Context, notify *NotifyRequest, infoType string, payload any) {
	if notify == nil || notify.Email == "" {
		return
	}
	message, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("info_type", infoType).Msg("failed to serialize notification payload")
		return
	}
	notice := &events.RateNotice{
		Email:    notify.Email,
		Message:  string(message),
		InfoType: infoType,
	}
	if err := s.publisher.Publish(ctx, notice); err != nil {
		log.Warn().Err(err).Str("info_type", infoType).Str("email", notify.Email).
			Msg("failed to publish rate notice")
	}
}

func (s *CurrencyService) parsePeriod(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(domain.DateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, serrors.ErrInvalidDateRange.WithMessage("Incorrect input for date")
	}
	end, err := time.Parse(domain.DateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, serrors.ErrInvalidDateRange.WithMessage("Incorrect input for date")
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, serrors.ErrInvalidDateRange.WithMessage("Incorrect input for date")
	}
	return start, end, nil
}

func (s *CurrencyService) today() string {
	return s.now().UTC().Format(domain.DateLayout)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
