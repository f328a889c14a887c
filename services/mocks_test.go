package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fxgate/fxgate/domain"
	"github.com/fxgate/fxgate/events"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) CountConflicts(ctx context.Context, username, email string) (int64, int64, error) {
	args := m.Called(ctx, username, email)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

type mockTokenLedger struct {
	mock.Mock
}

func (m *mockTokenLedger) Record(ctx context.Context, entries ...*domain.LedgerEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *mockTokenLedger) IsRevoked(ctx context.Context, jti string) (bool, string, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *mockTokenLedger) RevokeAll(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type mockRateProvider struct {
	mock.Mock
}

func (m *mockRateProvider) Currencies(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.(map[string]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRateProvider) Convert(ctx context.Context, from, to, amount, date string) (*domain.ConvertResult, error) {
	args := m.Called(ctx, from, to, amount, date)
	if r := args.Get(0); r != nil {
		return r.(*domain.ConvertResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRateProvider) LiveRates(ctx context.Context, source string, targets []string) (*domain.RateInfo, error) {
	args := m.Called(ctx, source, targets)
	if r := args.Get(0); r != nil {
		return r.(*domain.RateInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRateProvider) HistoricalRates(ctx context.Context, source string, targets []string, date string) (*domain.RateInfo, error) {
	args := m.Called(ctx, source, targets, date)
	if r := args.Get(0); r != nil {
		return r.(*domain.RateInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRateProvider) RateDynamics(ctx context.Context, source string, targets []string, startDate, endDate string) (*domain.RateDynamics, error) {
	args := m.Called(ctx, source, targets, startDate, endDate)
	if r := args.Get(0); r != nil {
		return r.(*domain.RateDynamics), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRateProvider) DailySeries(ctx context.Context, source string, targets []string, startDate, endDate string) (*domain.DailySeries, error) {
	args := m.Called(ctx, source, targets, startDate, endDate)
	if r := args.Get(0); r != nil {
		return r.(*domain.DailySeries), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, notice *events.RateNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}
