package reader

import (
	"io"
)

// DepositRateRecord is one row of a rate sheet: a single tier together with
// the columns of the rate it belongs to. Rows sharing a RateKey form one rate.
type DepositRateRecord struct {
	Index                 int
	RateKey               string // RATE KEY
	RateType              string // RATE TYPE
	Rate                  string // RATE
	CalculationFrequency  string // CALCULATION FREQUENCY
	ApplicationFrequency  string // APPLICATION FREQUENCY
	AdditionalValue       string // ADDITIONAL VALUE
	AdditionalInfo        string // ADDITIONAL INFO
	AdditionalInfoURI     string // ADDITIONAL INFO URI
	TierName              string // TIER NAME
	UnitOfMeasure         string // UNIT OF MEASURE
	MinimumValue          string // MINIMUM VALUE
	MaximumValue          string // MAXIMUM VALUE
	RateApplicationMethod string // RATE APPLICATION METHOD
}

// DepositRatesReader reads rate sheet rows
type DepositRatesReader interface {
	ReadDepositRates(reader io.Reader) ([]DepositRateRecord, error)
}
