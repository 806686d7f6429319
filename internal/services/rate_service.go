package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	models "github.com/zdziszkee/product-rates/internal/models"
	repository "github.com/zdziszkee/product-rates/internal/repositories"
)

var (
	ErrNotFound            = errors.New("rate not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrAlreadyExists       = errors.New("rate already exists")
	ErrConstraintViolation = errors.New("rate is still referenced")
)

var idRegex = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// ISO 8601 duration, e.g. P1D, P1M, PT12H, P1Y2M10DT2H30M
var durationRegex = regexp.MustCompile(`^P(\d+Y)?(\d+M)?(\d+W)?(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?$`)

// RateService handles business logic for deposit rates and their tiers
type RateService interface {
	GetDepositRate(ctx context.Context, id string) (*models.DepositRate, error)
	ListDepositRates(ctx context.Context, rateType string) ([]models.DepositRate, error)
	CreateDepositRate(ctx context.Context, rate *models.DepositRate) error
	UpdateDepositRate(ctx context.Context, rate *models.DepositRate) error
	DeleteDepositRate(ctx context.Context, id string) error
	ImportDepositRates(ctx context.Context, rates []*models.DepositRate) (int, error)

	GetRateTier(ctx context.Context, id string) (*models.RateTier, error)
	ListRateTiers(ctx context.Context, depositRateID string) ([]models.RateTier, error)
	AddRateTier(ctx context.Context, depositRateID string, tier *models.RateTier) error
	UpdateRateTier(ctx context.Context, tier *models.RateTier) error
	DeleteRateTier(ctx context.Context, id string) error
	ResolveTier(ctx context.Context, depositRateID string, value decimal.Decimal) (*models.RateTier, error)
}

type rateService struct {
	rates            repository.DepositRateRepository
	tiers            repository.RateTierRepository
	enforcePartition bool
	logger           *zap.Logger
}

// NewRateService creates a new instance of the rate service. With
// enforcePartition set, tier sets that leave gaps or overlap are rejected.
func NewRateService(rates repository.DepositRateRepository, tiers repository.RateTierRepository, enforcePartition bool, logger *zap.Logger) RateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &rateService{
		rates:            rates,
		tiers:            tiers,
		enforcePartition: enforcePartition,
		logger:           logger,
	}
}

func (s *rateService) GetDepositRate(ctx context.Context, id string) (*models.DepositRate, error) {
	if err := validateID("depositRateId", id); err != nil {
		return nil, err
	}

	rate, err := s.rates.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError("get deposit rate", err)
	}
	return rate, nil
}

// ListDepositRates returns every rate, or the rates of one type when
// rateType is not empty
func (s *rateService) ListDepositRates(ctx context.Context, rateType string) ([]models.DepositRate, error) {
	t := models.DepositRateType(strings.ToUpper(rateType))
	if t != "" && !t.Valid() {
		return nil, invalid(models.FieldError{Field: "type", Message: fmt.Sprintf("must be one of %v, got %q", models.DepositRateTypes, rateType)})
	}

	rates, err := s.rates.List(ctx, t)
	if err != nil {
		return nil, s.mapError("list deposit rates", err)
	}
	return rates, nil
}

func (s *rateService) CreateDepositRate(ctx context.Context, rate *models.DepositRate) error {
	if err := s.checkNewRate(rate); err != nil {
		return err
	}

	if err := s.rates.Create(ctx, rate); err != nil {
		return s.mapError("create deposit rate", err)
	}
	return nil
}

// UpdateDepositRate rewrites the scalar fields of an existing rate. Tiers
// are changed through the tier operations.
func (s *rateService) UpdateDepositRate(ctx context.Context, rate *models.DepositRate) error {
	if rate == nil {
		return invalid(models.FieldError{Field: "depositRate", Message: "must be provided"})
	}
	if err := validateID("depositRateId", rate.ID); err != nil {
		return err
	}

	errs := &models.ValidationError{}
	appendRateFields(errs, rate)
	if len(errs.Fields) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errs)
	}

	if err := s.rates.Update(ctx, rate); err != nil {
		return s.mapError("update deposit rate", err)
	}
	return nil
}

func (s *rateService) DeleteDepositRate(ctx context.Context, id string) error {
	if err := validateID("depositRateId", id); err != nil {
		return err
	}

	if err := s.rates.Delete(ctx, id); err != nil {
		return s.mapError("delete deposit rate", err)
	}
	return nil
}

// ImportDepositRates stores rates read from a rate sheet. Invalid rates are
// skipped; the count of stored rates is returned with the joined errors.
func (s *rateService) ImportDepositRates(ctx context.Context, rates []*models.DepositRate) (int, error) {
	var (
		errs  []error
		valid = make([]*models.DepositRate, 0, len(rates))
	)
	for i, rate := range rates {
		if err := s.checkNewRate(rate); err != nil {
			s.logger.Warn("skipping invalid deposit rate", zap.Int("index", i), zap.Error(err))
			errs = append(errs, fmt.Errorf("rate %d: %w", i, err))
			continue
		}
		valid = append(valid, rate)
	}

	created, err := s.rates.CreateBatch(ctx, valid)
	if err != nil {
		errs = append(errs, err)
	}

	s.logger.Info("deposit rates imported",
		zap.Int("created", created),
		zap.Int("total", len(rates)),
	)
	return created, errors.Join(errs...)
}

func (s *rateService) GetRateTier(ctx context.Context, id string) (*models.RateTier, error) {
	if err := validateID("rateTierId", id); err != nil {
		return nil, err
	}

	tier, err := s.tiers.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError("get rate tier", err)
	}
	return tier, nil
}

func (s *rateService) ListRateTiers(ctx context.Context, depositRateID string) ([]models.RateTier, error) {
	if err := validateID("depositRateId", depositRateID); err != nil {
		return nil, err
	}

	rate, err := s.rates.GetByID(ctx, depositRateID)
	if err != nil {
		return nil, s.mapError("list rate tiers", err)
	}
	return rate.Tiers, nil
}

// AddRateTier attaches a new tier to an existing deposit rate
func (s *rateService) AddRateTier(ctx context.Context, depositRateID string, tier *models.RateTier) error {
	if err := validateID("depositRateId", depositRateID); err != nil {
		return err
	}
	if tier == nil {
		return invalid(models.FieldError{Field: "rateTier", Message: "must be provided"})
	}

	errs := &models.ValidationError{}
	appendNewTierFields(errs, "", tier)
	if err := tier.Validate(); err != nil {
		appendFields(errs, "", err)
	}
	if len(errs.Fields) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errs)
	}

	rate, err := s.rates.GetByID(ctx, depositRateID)
	if err != nil {
		return s.mapError("add rate tier", err)
	}
	if err := s.checkPartition(append(models.Tiers(rate.Tiers), *tier)); err != nil {
		return err
	}

	id := rate.ID
	tier.DepositRateID = &id
	if err := s.tiers.Create(ctx, tier); err != nil {
		return s.mapError("add rate tier", err)
	}
	return nil
}

// UpdateRateTier rewrites an existing tier. The tier keeps the rate it
// belongs to; back-references sent by the caller are ignored.
func (s *rateService) UpdateRateTier(ctx context.Context, tier *models.RateTier) error {
	if tier == nil {
		return invalid(models.FieldError{Field: "rateTier", Message: "must be provided"})
	}
	if err := validateID("rateTierId", tier.ID); err != nil {
		return err
	}

	existing, err := s.tiers.GetByID(ctx, tier.ID)
	if err != nil {
		return s.mapError("update rate tier", err)
	}
	tier.DepositRateID = existing.DepositRateID
	tier.LendingRateID = existing.LendingRateID

	if err := tier.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if s.enforcePartition && tier.DepositRateID != nil {
		siblings, err := s.tiers.ListByDepositRate(ctx, *tier.DepositRateID)
		if err != nil {
			return s.mapError("update rate tier", err)
		}
		for i := range siblings {
			if siblings[i].ID == tier.ID {
				siblings[i] = *tier
			}
		}
		if err := s.checkPartition(siblings); err != nil {
			return err
		}
	}

	if err := s.tiers.Update(ctx, tier); err != nil {
		return s.mapError("update rate tier", err)
	}
	return nil
}

func (s *rateService) DeleteRateTier(ctx context.Context, id string) error {
	if err := validateID("rateTierId", id); err != nil {
		return err
	}

	if err := s.tiers.Delete(ctx, id); err != nil {
		return s.mapError("delete rate tier", err)
	}
	return nil
}

// ResolveTier returns the tier of a deposit rate that value falls into
func (s *rateService) ResolveTier(ctx context.Context, depositRateID string, value decimal.Decimal) (*models.RateTier, error) {
	if err := validateID("depositRateId", depositRateID); err != nil {
		return nil, err
	}

	tiers, err := s.tiers.ListByDepositRate(ctx, depositRateID)
	if err != nil {
		return nil, s.mapError("resolve rate tier", err)
	}
	if len(tiers) == 0 {
		// tell an unknown rate apart from a rate without tiers
		if _, err := s.rates.GetByID(ctx, depositRateID); err != nil {
			return nil, s.mapError("resolve rate tier", err)
		}
	}

	tier, err := models.Tiers(tiers).Resolve(value)
	if err != nil {
		s.logger.Debug("no tier for value",
			zap.String("depositRateId", depositRateID),
			zap.String("value", value.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return tier, nil
}

// Helper methods

func (s *rateService) checkNewRate(rate *models.DepositRate) error {
	if rate == nil {
		return invalid(models.FieldError{Field: "depositRate", Message: "must be provided"})
	}

	errs := &models.ValidationError{}
	if rate.ID != "" {
		errs.Fields = append(errs.Fields, models.FieldError{Field: "depositRateId", Message: "is assigned by the server and must not be set"})
	}
	for i := range rate.Tiers {
		prefix := fmt.Sprintf("tiers[%d].", i)
		appendNewTierFields(errs, prefix, &rate.Tiers[i])
		if rate.Tiers[i].DepositRateID != nil {
			errs.Fields = append(errs.Fields, models.FieldError{Field: prefix + "depositRateId", Message: "is assigned by the server and must not be set"})
		}
	}
	appendRateFields(errs, rate)
	if len(errs.Fields) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errs)
	}

	if len(rate.Tiers) > 0 {
		return s.checkPartition(rate.Tiers)
	}
	return nil
}

func (s *rateService) checkPartition(tiers models.Tiers) error {
	if !s.enforcePartition || len(tiers) == 0 {
		return nil
	}
	if err := tiers.CheckPartition(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func (s *rateService) mapError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, repository.ErrConstraintViolation):
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	s.logger.Error(op+" failed", zap.Error(err))
	return err
}

func validateID(field, id string) error {
	if !idRegex.MatchString(id) {
		return invalid(models.FieldError{Field: field, Message: fmt.Sprintf("must be %d hexadecimal characters", models.IDLength)})
	}
	return nil
}

// validDuration reports whether s is an ISO 8601 duration with at least one component
func validDuration(s string) bool {
	return durationRegex.MatchString(s) && s != "P" && !strings.HasSuffix(s, "T")
}

// appendRateFields collects the record constraints and the frequency syntax
func appendRateFields(errs *models.ValidationError, rate *models.DepositRate) {
	appendFields(errs, "", rate.Validate())
	if rate.CalculationFrequency != "" && !validDuration(rate.CalculationFrequency) {
		errs.Fields = append(errs.Fields, models.FieldError{Field: "calculationFrequency", Message: fmt.Sprintf("must be an ISO 8601 duration, got %q", rate.CalculationFrequency)})
	}
	if rate.ApplicationFrequency != "" && !validDuration(rate.ApplicationFrequency) {
		errs.Fields = append(errs.Fields, models.FieldError{Field: "applicationFrequency", Message: fmt.Sprintf("must be an ISO 8601 duration, got %q", rate.ApplicationFrequency)})
	}
}

// appendNewTierFields rejects ids on a tier that is about to be created
func appendNewTierFields(errs *models.ValidationError, prefix string, tier *models.RateTier) {
	const msg = "is assigned by the server and must not be set"
	if tier.ID != "" {
		errs.Fields = append(errs.Fields, models.FieldError{Field: prefix + "rateTierId", Message: msg})
	}
	if tier.LendingRateID != nil {
		errs.Fields = append(errs.Fields, models.FieldError{Field: prefix + "lendingRateId", Message: "must not be set on a deposit rate tier"})
	}
	if tier.ApplicabilityConditions != nil && tier.ApplicabilityConditions.ID != "" {
		errs.Fields = append(errs.Fields, models.FieldError{Field: prefix + "applicabilityConditions.rateConditionId", Message: msg})
	}
	if tier.SubTier != nil && tier.SubTier.ID != "" {
		errs.Fields = append(errs.Fields, models.FieldError{Field: prefix + "subTier.subTierId", Message: msg})
	}
}

func appendFields(errs *models.ValidationError, prefix string, err error) {
	if err == nil {
		return
	}
	var v *models.ValidationError
	if errors.As(err, &v) {
		for _, f := range v.Fields {
			errs.Fields = append(errs.Fields, models.FieldError{Field: prefix + f.Field, Message: f.Message})
		}
		return
	}
	errs.Fields = append(errs.Fields, models.FieldError{Field: prefix, Message: err.Error()})
}

func invalid(fields ...models.FieldError) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, &models.ValidationError{Fields: fields})
}
