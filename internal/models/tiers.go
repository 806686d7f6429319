package models

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrNoTiers        = errors.New("rate has no tiers")
	ErrTierGap        = errors.New("tiers leave a gap")
	ErrTierOverlap    = errors.New("tiers overlap")
	ErrTierUnbounded  = errors.New("only the highest tier may be unbounded")
	ErrNoMatchingTier = errors.New("no tier covers the value")
)

// Tiers is the band set of a single rate
type Tiers []RateTier

// Sorted returns a copy ordered by minimum value; unbounded tiers sort after
// bounded ones with the same minimum.
func (ts Tiers) Sorted() Tiers {
	out := make(Tiers, len(ts))
	copy(out, ts)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].MinimumValue.Cmp(out[j].MinimumValue); c != 0 {
			return c < 0
		}
		a, b := out[i].MaximumValue, out[j].MaximumValue
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Decimal.LessThan(b.Decimal)
	})
	return out
}

// Resolve returns the tier value falls into. A value sitting on the shared
// boundary of two adjacent tiers belongs to the higher one.
func (ts Tiers) Resolve(value decimal.Decimal) (*RateTier, error) {
	if len(ts) == 0 {
		return nil, ErrNoTiers
	}
	sorted := ts.Sorted()
	for i := len(sorted) - 1; i >= 0; i-- {
		t := sorted[i]
		if value.LessThan(t.MinimumValue) {
			continue
		}
		if t.MaximumValue.Valid && value.GreaterThan(t.MaximumValue.Decimal) {
			continue
		}
		return &t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoMatchingTier, value.String())
}

// CheckPartition verifies the tiers form a contiguous band set: each
// tier's maximum equals the next tier's minimum and only the highest tier
// may be unbounded.
func (ts Tiers) CheckPartition() error {
	if len(ts) == 0 {
		return ErrNoTiers
	}
	sorted := ts.Sorted()
	for i := 0; i < len(sorted)-1; i++ {
		cur, next := sorted[i], sorted[i+1]
		if !cur.MaximumValue.Valid {
			return fmt.Errorf("%w: tier %q", ErrTierUnbounded, tierLabel(cur))
		}
		switch cur.MaximumValue.Decimal.Cmp(next.MinimumValue) {
		case -1:
			return fmt.Errorf("%w: between %s and %s", ErrTierGap, cur.MaximumValue.Decimal.String(), next.MinimumValue.String())
		case 1:
			return fmt.Errorf("%w: %q ends at %s after %q starts at %s",
				ErrTierOverlap, tierLabel(cur), cur.MaximumValue.Decimal.String(), tierLabel(next), next.MinimumValue.String())
		}
	}
	return nil
}

// Coverage returns the range spanned by a valid partition. An invalid max
// means the range is unbounded above.
func (ts Tiers) Coverage() (decimal.Decimal, decimal.NullDecimal, error) {
	if err := ts.CheckPartition(); err != nil {
		return decimal.Decimal{}, decimal.NullDecimal{}, err
	}
	sorted := ts.Sorted()
	return sorted[0].MinimumValue, sorted[len(sorted)-1].MaximumValue, nil
}

func tierLabel(t RateTier) string {
	if t.Name != "" {
		return t.Name
	}
	if t.ID != "" {
		return t.ID
	}
	return t.MinimumValue.String()
}
