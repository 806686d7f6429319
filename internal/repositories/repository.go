package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/zdziszkee/product-rates/internal/models"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("record already exists")
	ErrConstraintViolation = errors.New("referential integrity violation")
)

// Table names
const (
	depositRatesTable         = "deposit_rates"
	rateTiersTable            = "rate_tiers"
	rateConditionsTable       = "rate_conditions"
	rateSubTiersTable         = "rate_sub_tiers"
	productDetailBundlesTable = "product_detail_bundles"
)

// newID generates a 32 character identifier, the same shape as the ids
// already stored in CHAR(32) key columns
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// mapError translates driver errors into the repository's sentinel errors
func mapError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "foreign_key_violation":
			return fmt.Errorf("%s: %w: %s", op, ErrConstraintViolation, pqErr.Message)
		case "unique_violation":
			return fmt.Errorf("%s: %w: %s", op, ErrDuplicate, pqErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableRef(id *string) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return nullable(*id)
}

func refFrom(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	id := strings.TrimSpace(s.String)
	return &id
}

func decimalFrom(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// idSnapshot remembers the ids held by a record graph before a write, so
// a write that is not committed leaves the caller's records as they were
type idSnapshot []func()

func (s *idSnapshot) rate(rate *models.DepositRate) {
	id := rate.ID
	*s = append(*s, func() { rate.ID = id })
	for i := range rate.Tiers {
		s.tier(&rate.Tiers[i])
	}
}

func (s *idSnapshot) tier(tier *models.RateTier) {
	id, depositRateID, lendingRateID := tier.ID, tier.DepositRateID, tier.LendingRateID
	*s = append(*s, func() {
		tier.ID = id
		tier.DepositRateID = depositRateID
		tier.LendingRateID = lendingRateID
	})
	if c := tier.ApplicabilityConditions; c != nil {
		condID := c.ID
		*s = append(*s, func() { c.ID = condID })
	}
	if sub := tier.SubTier; sub != nil {
		subID := sub.ID
		*s = append(*s, func() { sub.ID = subID })
	}
}

func (s idSnapshot) restore() {
	for _, fn := range s {
		fn()
	}
}

type scanner interface {
	Scan(dest ...any) error
}
