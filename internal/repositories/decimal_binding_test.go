package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"github.com/trinodb/trino-go-client/trino"

	"github.com/zdziszkee/product-rates/internal/models"
	repo "github.com/zdziszkee/product-rates/internal/repositories"
)

// trinoConverter passes trino.Numeric through untouched, as the Trino
// driver's CheckNamedValue does, and converts everything else the default way
type trinoConverter struct{}

func (trinoConverter) ConvertValue(v any) (driver.Value, error) {
	if n, ok := v.(trino.Numeric); ok {
		return n, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

// numeric matches an argument bound as an unquoted Trino number
type numeric string

func (n numeric) Match(v driver.Value) bool {
	got, ok := v.(trino.Numeric)
	return ok && string(got) == string(n)
}

var _ = Describe("Decimal binding on Trino", func() {
	var (
		mockDB *sql.DB
		mock   sqlmock.Sqlmock
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		mockDB, mock, err = sqlmock.New(sqlmock.ValueConverterOption(trinoConverter{}))
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
		mockDB.Close()
	})

	It("should send the rate and tier bounds as numbers when creating a rate", func() {
		rate := &models.DepositRate{
			RateType: models.DepositRateFixed,
			Rate:     decimal.RequireFromString("2.50"),
			Tiers: []models.RateTier{{
				Name:         "low",
				MinimumValue: decimal.Zero,
				MaximumValue: decimal.NewNullDecimal(decimal.RequireFromString("10000.5")),
			}},
		}

		mock.ExpectExec(`INSERT INTO ` + ratesTable).
			WithArgs(sqlmock.AnyArg(), "FIXED", numeric("2.5"), "", "", "", "", "").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO `+tiersTable).
			WithArgs(sqlmock.AnyArg(), "low", nil, numeric("0"), numeric("10000.5"), nil, nil, nil, sqlmock.AnyArg(), nil).
			WillReturnResult(sqlmock.NewResult(1, 1))

		repository := repo.NewSQLDepositRateRepository(trinoDatabase(mockDB), nil)
		Expect(repository.Create(ctx, rate)).To(Succeed())
	})

	It("should send the rate as a number when updating a rate", func() {
		rate := &models.DepositRate{ID: rateID, RateType: models.DepositRateBonus, Rate: decimal.RequireFromString("0.75")}

		mock.ExpectQuery(`SELECT 1 FROM ` + ratesTable).
			WithArgs(rateID).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectExec(`UPDATE `+ratesTable).
			WithArgs("BONUS", numeric("0.75"), "", "", "", "", "", rateID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repository := repo.NewSQLDepositRateRepository(trinoDatabase(mockDB), nil)
		Expect(repository.Update(ctx, rate)).To(Succeed())
	})

	It("should send sub-tier bounds as numbers and an open maximum as NULL", func() {
		parentID := rateID
		tier := &models.RateTier{
			ID:            "f0e1d2c3b4a5968778695a4b3c2d1e0f",
			Name:          "high",
			MinimumValue:  decimal.NewFromInt(10000),
			DepositRateID: &parentID,
			SubTier: &models.SubTier{
				Name:         "sub",
				MinimumValue: decimal.RequireFromString("1.25"),
				MaximumValue: decimal.NewNullDecimal(decimal.NewFromInt(5)),
			},
		}

		mock.ExpectQuery(`SELECT applicability_conditions_id, sub_tier_id FROM ` + tiersTable).
			WithArgs(tier.ID).
			WillReturnRows(sqlmock.NewRows([]string{"applicability_conditions_id", "sub_tier_id"}).AddRow(nil, "sub1"))
		mock.ExpectExec(`UPDATE rates_catalog\.default_schema\.rate_sub_tiers`).
			WithArgs("sub", nil, numeric("1.25"), numeric("5"), nil, "sub1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE `+tiersTable).
			WithArgs("high", nil, numeric("10000"), nil, nil, nil, "sub1", rateID, nil, tier.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repository := repo.NewSQLRateTierRepository(trinoDatabase(mockDB), nil)
		Expect(repository.Update(ctx, tier)).To(Succeed())
	})
})
