package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateCondition describes when a tier applies. It has no lifecycle of its
// own: it lives and dies with the tier that owns it.
type RateCondition struct {
	ID                string `json:"rateConditionId" db:"rate_condition_id"`
	AdditionalInfo    string `json:"additionalInfo" db:"additional_info"`
	AdditionalInfoURI string `json:"additionalInfoUri" db:"additional_info_uri"`
}

func (c *RateCondition) String() string {
	if c == nil {
		return "null"
	}
	return fmt.Sprintf("RateCondition{rateConditionId=%q, additionalInfo=%q, additionalInfoUri=%s}",
		c.ID, c.AdditionalInfo, c.AdditionalInfoURI)
}

func (c *RateCondition) Validate() error {
	if c == nil {
		return nil
	}
	errs := &ValidationError{}
	checkLength(errs, "additionalInfo", c.AdditionalInfo, AdditionalInfoMaxLength)
	checkLength(errs, "additionalInfoUri", c.AdditionalInfoURI, AdditionalInfoURIMaxLength)
	return errs.orNil()
}

// SubTier is a band nested inside a tier, owned by it
type SubTier struct {
	ID                    string                `json:"subTierId" db:"sub_tier_id"`
	Name                  string                `json:"name" db:"name"`
	UnitOfMeasure         UnitOfMeasure         `json:"unitOfMeasure,omitempty" db:"unit_of_measure"`
	MinimumValue          decimal.Decimal       `json:"minimumValue" db:"minimum_value"`
	MaximumValue          decimal.NullDecimal   `json:"maximumValue" db:"maximum_value"`
	RateApplicationMethod RateApplicationMethod `json:"rateApplicationMethod,omitempty" db:"rate_application_method"`
}

func (s *SubTier) String() string {
	if s == nil {
		return "null"
	}
	return fmt.Sprintf("SubTier{subTierId=%q, name=%q, unitOfMeasure=%s, minimumValue=%s, maximumValue=%s, rateApplicationMethod=%s}",
		s.ID, s.Name, s.UnitOfMeasure, s.MinimumValue.String(), nullDecimalString(s.MaximumValue), s.RateApplicationMethod)
}

func (s *SubTier) Validate() error {
	if s == nil {
		return nil
	}
	errs := &ValidationError{}
	if s.UnitOfMeasure != "" && !s.UnitOfMeasure.Valid() {
		errs.add("unitOfMeasure", "unknown unit of measure %q", s.UnitOfMeasure)
	}
	if s.RateApplicationMethod != "" && !s.RateApplicationMethod.Valid() {
		errs.add("rateApplicationMethod", "unknown rate application method %q", s.RateApplicationMethod)
	}
	if s.MaximumValue.Valid && s.MaximumValue.Decimal.LessThan(s.MinimumValue) {
		errs.add("maximumValue", "must not be below minimumValue %s", s.MinimumValue.String())
	}
	return errs.orNil()
}
