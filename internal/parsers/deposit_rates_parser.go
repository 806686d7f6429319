package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	models "github.com/zdziszkee/product-rates/internal/models"
	readers "github.com/zdziszkee/product-rates/internal/readers"
)

type DepositRatesParser interface {
	ParseDepositRates(records []readers.DepositRateRecord) ([]*models.DepositRate, error)
}

// DefaultDepositRatesParser groups rate sheet rows by rate key. Invalid rows
// are logged and skipped.
type DefaultDepositRatesParser struct {
	logger *zap.Logger
}

func NewDepositRatesParser(logger *zap.Logger) *DefaultDepositRatesParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultDepositRatesParser{logger: logger}
}

func (p *DefaultDepositRatesParser) ParseDepositRates(records []readers.DepositRateRecord) ([]*models.DepositRate, error) {
	var (
		rates []*models.DepositRate
		byKey = map[string]*models.DepositRate{}
	)

	for _, record := range records {
		if record.RateKey == "" {
			p.skip(record, "rate key cannot be empty")
			continue
		}

		rate, err := parseRate(record)
		if err != nil {
			p.skip(record, err.Error())
			continue
		}

		if existing, ok := byKey[record.RateKey]; ok {
			if !sameRate(existing, rate) {
				p.skip(record, "rate columns differ from the first row of the rate")
				continue
			}
			rate = existing
		}

		if hasTier(record) {
			tier, err := parseTier(record)
			if err != nil {
				p.skip(record, err.Error())
				continue
			}
			rate.Tiers = append(rate.Tiers, *tier)
		}

		if _, ok := byKey[record.RateKey]; !ok {
			byKey[record.RateKey] = rate
			rates = append(rates, rate)
		}
	}

	p.logger.Debug("parsed rate sheet", zap.Int("rows", len(records)), zap.Int("rates", len(rates)))
	return rates, nil
}

func (p *DefaultDepositRatesParser) skip(record readers.DepositRateRecord, reason string) {
	p.logger.Warn("skipping rate sheet row",
		zap.Int("index", record.Index),
		zap.String("rateKey", record.RateKey),
		zap.String("reason", reason),
	)
}

func parseRate(record readers.DepositRateRecord) (*models.DepositRate, error) {
	rateType := models.DepositRateType(strings.ToUpper(record.RateType))
	if !rateType.Valid() {
		return nil, fmt.Errorf("unknown rate type %q", record.RateType)
	}
	rate, err := decimal.NewFromString(record.Rate)
	if err != nil {
		return nil, fmt.Errorf("rate %q is not a decimal", record.Rate)
	}

	r := &models.DepositRate{
		RateType:             rateType,
		Rate:                 rate,
		CalculationFrequency: strings.ToUpper(record.CalculationFrequency),
		ApplicationFrequency: strings.ToUpper(record.ApplicationFrequency),
		AdditionalValue:      record.AdditionalValue,
		AdditionalInfo:       record.AdditionalInfo,
		AdditionalInfoURI:    record.AdditionalInfoURI,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func sameRate(a, b *models.DepositRate) bool {
	return a.RateType == b.RateType &&
		a.Rate.Equal(b.Rate) &&
		a.CalculationFrequency == b.CalculationFrequency &&
		a.ApplicationFrequency == b.ApplicationFrequency &&
		a.AdditionalValue == b.AdditionalValue &&
		a.AdditionalInfo == b.AdditionalInfo &&
		a.AdditionalInfoURI == b.AdditionalInfoURI
}

func hasTier(record readers.DepositRateRecord) bool {
	return record.TierName != "" || record.UnitOfMeasure != "" || record.MinimumValue != "" ||
		record.MaximumValue != "" || record.RateApplicationMethod != ""
}

func parseTier(record readers.DepositRateRecord) (*models.RateTier, error) {
	minValue, err := decimal.NewFromString(record.MinimumValue)
	if err != nil {
		return nil, fmt.Errorf("minimum value %q is not a decimal", record.MinimumValue)
	}

	tier := &models.RateTier{
		Name:                  record.TierName,
		UnitOfMeasure:         models.UnitOfMeasure(strings.ToUpper(record.UnitOfMeasure)),
		MinimumValue:          minValue,
		RateApplicationMethod: models.RateApplicationMethod(strings.ToUpper(record.RateApplicationMethod)),
	}
	if record.MaximumValue != "" {
		maxValue, err := decimal.NewFromString(record.MaximumValue)
		if err != nil {
			return nil, fmt.Errorf("maximum value %q is not a decimal", record.MaximumValue)
		}
		tier.MaximumValue = decimal.NewNullDecimal(maxValue)
	}

	if err := tier.Validate(); err != nil {
		return nil, err
	}
	return tier, nil
}
