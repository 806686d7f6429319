package mocks

import (
	"context"
	"errors"

	models "github.com/zdziszkee/product-rates/internal/models"
)

// MockDepositRateRepository implements repository.DepositRateRepository for testing
type MockDepositRateRepository struct {
	CreateFunc      func(ctx context.Context, rate *models.DepositRate) error
	CreateBatchFunc func(ctx context.Context, rates []*models.DepositRate) (int, error)
	GetByIDFunc     func(ctx context.Context, id string) (*models.DepositRate, error)
	ListFunc        func(ctx context.Context, rateType models.DepositRateType) ([]models.DepositRate, error)
	UpdateFunc      func(ctx context.Context, rate *models.DepositRate) error
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *MockDepositRateRepository) Create(ctx context.Context, rate *models.DepositRate) error {
	return m.CreateFunc(ctx, rate)
}

func (m *MockDepositRateRepository) CreateBatch(ctx context.Context, rates []*models.DepositRate) (int, error) {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, rates)
	}
	return 0, errors.New("CreateBatch not implemented")
}

func (m *MockDepositRateRepository) GetByID(ctx context.Context, id string) (*models.DepositRate, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *MockDepositRateRepository) List(ctx context.Context, rateType models.DepositRateType) ([]models.DepositRate, error) {
	return m.ListFunc(ctx, rateType)
}

func (m *MockDepositRateRepository) Update(ctx context.Context, rate *models.DepositRate) error {
	return m.UpdateFunc(ctx, rate)
}

func (m *MockDepositRateRepository) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

// MockRateTierRepository implements repository.RateTierRepository for testing
type MockRateTierRepository struct {
	CreateFunc            func(ctx context.Context, tier *models.RateTier) error
	GetByIDFunc           func(ctx context.Context, id string) (*models.RateTier, error)
	ListByDepositRateFunc func(ctx context.Context, depositRateID string) ([]models.RateTier, error)
	ListByLendingRateFunc func(ctx context.Context, lendingRateID string) ([]models.RateTier, error)
	UpdateFunc            func(ctx context.Context, tier *models.RateTier) error
	DeleteFunc            func(ctx context.Context, id string) error
}

func (m *MockRateTierRepository) Create(ctx context.Context, tier *models.RateTier) error {
	return m.CreateFunc(ctx, tier)
}

func (m *MockRateTierRepository) GetByID(ctx context.Context, id string) (*models.RateTier, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *MockRateTierRepository) ListByDepositRate(ctx context.Context, depositRateID string) ([]models.RateTier, error) {
	return m.ListByDepositRateFunc(ctx, depositRateID)
}

func (m *MockRateTierRepository) ListByLendingRate(ctx context.Context, lendingRateID string) ([]models.RateTier, error) {
	if m.ListByLendingRateFunc != nil {
		return m.ListByLendingRateFunc(ctx, lendingRateID)
	}
	return nil, errors.New("ListByLendingRate not implemented")
}

func (m *MockRateTierRepository) Update(ctx context.Context, tier *models.RateTier) error {
	return m.UpdateFunc(ctx, tier)
}

func (m *MockRateTierRepository) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}
