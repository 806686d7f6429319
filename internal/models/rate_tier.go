package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateTier defines the criteria and conditions for which a rate applies
type RateTier struct {
	ID            string        `json:"rateTierId" db:"rate_tier_id"`
	Name          string        `json:"name" db:"name"`
	UnitOfMeasure UnitOfMeasure `json:"unitOfMeasure,omitempty" db:"unit_of_measure"`
	// MinimumValue is the inclusive lower bound of the tier.
	MinimumValue decimal.Decimal `json:"minimumValue" db:"minimum_value"`
	// MaximumValue is the upper bound. It is exclusive when it equals the
	// MinimumValue of the next-higher tier; absent means no upper bound.
	MaximumValue          decimal.NullDecimal   `json:"maximumValue" db:"maximum_value"`
	RateApplicationMethod RateApplicationMethod `json:"rateApplicationMethod,omitempty" db:"rate_application_method"`

	// Owned: deleted together with the tier.
	ApplicabilityConditions *RateCondition `json:"applicabilityConditions,omitempty"`
	SubTier                 *SubTier       `json:"subTier,omitempty"`

	// Back-references to the owning rate, at most one is set.
	DepositRateID *string `json:"depositRateId,omitempty" db:"deposit_rate_id"`
	LendingRateID *string `json:"lendingRateId,omitempty" db:"lending_rate_id"`
}

// Equal compares tiers by id only
func (t *RateTier) Equal(other *RateTier) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.ID == other.ID
}

// Bounded reports whether the tier has an upper bound
func (t *RateTier) Bounded() bool {
	return t.MaximumValue.Valid
}

func (t *RateTier) String() string {
	if t == nil {
		return "RateTier<nil>"
	}
	return fmt.Sprintf(
		"RateTier{rateTierId=%q, name=%q, unitOfMeasure=%s, minimumValue=%s, maximumValue=%s, rateApplicationMethod=%s, applicabilityConditions=%s, subTier=%s, depositRate=%s, lendingRate=%s}",
		t.ID,
		t.Name,
		t.UnitOfMeasure,
		t.MinimumValue.String(),
		nullDecimalString(t.MaximumValue),
		t.RateApplicationMethod,
		t.ApplicabilityConditions.String(),
		t.SubTier.String(),
		refString(t.DepositRateID),
		refString(t.LendingRateID),
	)
}

func (t *RateTier) Validate() error {
	errs := &ValidationError{}
	if t.UnitOfMeasure != "" && !t.UnitOfMeasure.Valid() {
		errs.add("unitOfMeasure", "unknown unit of measure %q", t.UnitOfMeasure)
	}
	if t.RateApplicationMethod != "" && !t.RateApplicationMethod.Valid() {
		errs.add("rateApplicationMethod", "unknown rate application method %q", t.RateApplicationMethod)
	}
	if t.MaximumValue.Valid && t.MaximumValue.Decimal.LessThan(t.MinimumValue) {
		errs.add("maximumValue", "must not be below minimumValue %s", t.MinimumValue.String())
	}
	if t.DepositRateID != nil && t.LendingRateID != nil {
		errs.add("lendingRateId", "a tier belongs to either a deposit rate or a lending rate")
	}
	errs.merge("applicabilityConditions.", t.ApplicabilityConditions.Validate())
	errs.merge("subTier.", t.SubTier.Validate())
	return errs.orNil()
}

func nullDecimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "null"
	}
	return d.Decimal.String()
}

func refString(id *string) string {
	if id == nil {
		return "null"
	}
	return fmt.Sprintf("%q", *id)
}
