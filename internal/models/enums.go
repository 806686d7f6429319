package models

// DepositRateType is the kind of a deposit rate (base, bonus, etc)
type DepositRateType string

const (
	DepositRateFixed        DepositRateType = "FIXED"
	DepositRateBonus        DepositRateType = "BONUS"
	DepositRateBundleBonus  DepositRateType = "BUNDLE_BONUS"
	DepositRateVariable     DepositRateType = "VARIABLE"
	DepositRateIntroductory DepositRateType = "INTRODUCTORY"
	DepositRateFloating     DepositRateType = "FLOATING"
	DepositRateMarketLinked DepositRateType = "MARKET_LINKED"
)

// DepositRateTypes lists every deposit rate type in declaration order
var DepositRateTypes = []DepositRateType{
	DepositRateFixed,
	DepositRateBonus,
	DepositRateBundleBonus,
	DepositRateVariable,
	DepositRateIntroductory,
	DepositRateFloating,
	DepositRateMarketLinked,
}

func (t DepositRateType) Valid() bool {
	switch t {
	case DepositRateFixed, DepositRateBonus, DepositRateBundleBonus, DepositRateVariable,
		DepositRateIntroductory, DepositRateFloating, DepositRateMarketLinked:
		return true
	}
	return false
}

// UnitOfMeasure applies to the minimum and maximum values of a tier,
// e.g. DOLLAR for balances, MONTH for term deposits, PERCENT for LVR
type UnitOfMeasure string

const (
	UnitDollar  UnitOfMeasure = "DOLLAR"
	UnitPercent UnitOfMeasure = "PERCENT"
	UnitMonth   UnitOfMeasure = "MONTH"
	UnitDay     UnitOfMeasure = "DAY"
)

// Valid reports whether u is a known unit. The empty unit is not valid.
func (u UnitOfMeasure) Valid() bool {
	switch u {
	case UnitDollar, UnitPercent, UnitMonth, UnitDay:
		return true
	}
	return false
}

// RateApplicationMethod decides whether a single tier rate applies to the
// whole balance or each tier rate applies to the portion inside that tier
type RateApplicationMethod string

const (
	WholeBalance RateApplicationMethod = "WHOLE_BALANCE"
	PerTier      RateApplicationMethod = "PER_TIER"
)

func (m RateApplicationMethod) Valid() bool {
	switch m {
	case WholeBalance, PerTier:
		return true
	}
	return false
}
