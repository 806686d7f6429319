package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DepositRate is the rate configuration of a deposit-type banking product
type DepositRate struct {
	ID       string          `json:"depositRateId" db:"deposit_rate_id"`
	RateType DepositRateType `json:"depositRateType" db:"deposit_rate_type"`
	Rate     decimal.Decimal `json:"rate" db:"rate"`
	// CalculationFrequency is the ISO 8601 duration after which the rate is
	// applied to the balance to calculate the amount due for the period.
	CalculationFrequency string `json:"calculationFrequency" db:"calculation_frequency"`
	// ApplicationFrequency is the ISO 8601 duration after which the
	// calculated amounts are debited or credited to the account.
	ApplicationFrequency string `json:"applicationFrequency" db:"application_frequency"`
	// Tiers are owned through RateTier.DepositRateID.
	Tiers []RateTier `json:"tiers"`
	// AdditionalValue is mandatory or not depending on RateType.
	AdditionalValue   string `json:"additionalValue" db:"additional_value"`
	AdditionalInfo    string `json:"additionalInfo" db:"additional_info"`
	AdditionalInfoURI string `json:"additionalInfoUri" db:"additional_info_uri"`
	// ProductDetail holds the ids of the product details bundling this rate.
	// It is the inverse side of the bundles relation and is never persisted
	// from here.
	ProductDetail []string `json:"productDetail"`
}

// Equal compares deposit rates by id only
func (r *DepositRate) Equal(other *DepositRate) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil {
		return false
	}
	return r.ID == other.ID
}

func (r *DepositRate) String() string {
	if r == nil {
		return "DepositRate<nil>"
	}
	tiers := make([]string, 0, len(r.Tiers))
	for i := range r.Tiers {
		tiers = append(tiers, r.Tiers[i].String())
	}
	return fmt.Sprintf(
		"DepositRate{depositRateId=%q, depositRateType=%s, rate=%s, calculationFrequency=%q, applicationFrequency=%q, tiers=[%s], additionalValue=%q, additionalInfo=%q, additionalInfoUri=%s, productDetail=%v}",
		r.ID,
		r.RateType,
		r.Rate.String(),
		r.CalculationFrequency,
		r.ApplicationFrequency,
		strings.Join(tiers, ", "),
		r.AdditionalValue,
		r.AdditionalInfo,
		r.AdditionalInfoURI,
		r.ProductDetail,
	)
}

// Validate checks the declared column constraints and the rate type. It does
// not check duration syntax or the AdditionalValue/RateType pairing.
func (r *DepositRate) Validate() error {
	errs := &ValidationError{}
	if !r.RateType.Valid() {
		errs.add("depositRateType", "must be one of %v, got %q", DepositRateTypes, r.RateType)
	}
	checkLength(errs, "additionalValue", r.AdditionalValue, AdditionalValueMaxLength)
	checkLength(errs, "additionalInfo", r.AdditionalInfo, AdditionalInfoMaxLength)
	checkLength(errs, "additionalInfoUri", r.AdditionalInfoURI, AdditionalInfoURIMaxLength)

	for i := range r.Tiers {
		errs.merge(fmt.Sprintf("tiers[%d].", i), r.Tiers[i].Validate())
	}
	return errs.orNil()
}

// AttachTiers points every tier back at this rate. Call it after the rate
// got its id.
func (r *DepositRate) AttachTiers() {
	for i := range r.Tiers {
		id := r.ID
		r.Tiers[i].DepositRateID = &id
		r.Tiers[i].LendingRateID = nil
	}
}
