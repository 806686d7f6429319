package mocks

import (
	"context"

	"github.com/shopspring/decimal"

	models "github.com/zdziszkee/product-rates/internal/models"
)

// MockRateService implements service.RateService.
type MockRateService struct {
	GetDepositRateFunc     func(ctx context.Context, id string) (*models.DepositRate, error)
	ListDepositRatesFunc   func(ctx context.Context, rateType string) ([]models.DepositRate, error)
	CreateDepositRateFunc  func(ctx context.Context, rate *models.DepositRate) error
	UpdateDepositRateFunc  func(ctx context.Context, rate *models.DepositRate) error
	DeleteDepositRateFunc  func(ctx context.Context, id string) error
	ImportDepositRatesFunc func(ctx context.Context, rates []*models.DepositRate) (int, error)
	GetRateTierFunc        func(ctx context.Context, id string) (*models.RateTier, error)
	ListRateTiersFunc      func(ctx context.Context, depositRateID string) ([]models.RateTier, error)
	AddRateTierFunc        func(ctx context.Context, depositRateID string, tier *models.RateTier) error
	UpdateRateTierFunc     func(ctx context.Context, tier *models.RateTier) error
	DeleteRateTierFunc     func(ctx context.Context, id string) error
	ResolveTierFunc        func(ctx context.Context, depositRateID string, value decimal.Decimal) (*models.RateTier, error)
}

func (m *MockRateService) GetDepositRate(ctx context.Context, id string) (*models.DepositRate, error) {
	return m.GetDepositRateFunc(ctx, id)
}

func (m *MockRateService) ListDepositRates(ctx context.Context, rateType string) ([]models.DepositRate, error) {
	return m.ListDepositRatesFunc(ctx, rateType)
}

func (m *MockRateService) CreateDepositRate(ctx context.Context, rate *models.DepositRate) error {
	return m.CreateDepositRateFunc(ctx, rate)
}

func (m *MockRateService) UpdateDepositRate(ctx context.Context, rate *models.DepositRate) error {
	return m.UpdateDepositRateFunc(ctx, rate)
}

func (m *MockRateService) DeleteDepositRate(ctx context.Context, id string) error {
	return m.DeleteDepositRateFunc(ctx, id)
}

func (m *MockRateService) ImportDepositRates(ctx context.Context, rates []*models.DepositRate) (int, error) {
	return m.ImportDepositRatesFunc(ctx, rates)
}

func (m *MockRateService) GetRateTier(ctx context.Context, id string) (*models.RateTier, error) {
	return m.GetRateTierFunc(ctx, id)
}

func (m *MockRateService) ListRateTiers(ctx context.Context, depositRateID string) ([]models.RateTier, error) {
	return m.ListRateTiersFunc(ctx, depositRateID)
}

func (m *MockRateService) AddRateTier(ctx context.Context, depositRateID string, tier *models.RateTier) error {
	return m.AddRateTierFunc(ctx, depositRateID, tier)
}

func (m *MockRateService) UpdateRateTier(ctx context.Context, tier *models.RateTier) error {
	return m.UpdateRateTierFunc(ctx, tier)
}

func (m *MockRateService) DeleteRateTier(ctx context.Context, id string) error {
	return m.DeleteRateTierFunc(ctx, id)
}

func (m *MockRateService) ResolveTier(ctx context.Context, depositRateID string, value decimal.Decimal) (*models.RateTier, error) {
	return m.ResolveTierFunc(ctx, depositRateID, value)
}
