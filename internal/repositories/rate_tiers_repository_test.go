package repository_test

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/zdziszkee/product-rates/internal/models"
	repo "github.com/zdziszkee/product-rates/internal/repositories"
)

var _ = Describe("SQLRateTierRepository", func() {
	const (
		conditionsTable = `rates_catalog\.default_schema\.rate_conditions`
		subTiersTable   = `rates_catalog\.default_schema\.rate_sub_tiers`
		tierID          = "f0e1d2c3b4a5968778695a4b3c2d1e0f"
	)

	var (
		mockDB     *sql.DB
		mock       sqlmock.Sqlmock
		repository repo.RateTierRepository
		ctx        context.Context
		parentID   string
		sampleTier *models.RateTier
	)

	BeforeEach(func() {
		var err error
		mockDB, mock, err = sqlmock.New()
		Expect(err).NotTo(HaveOccurred())

		repository = repo.NewSQLRateTierRepository(trinoDatabase(mockDB), nil)
		ctx = context.Background()
		parentID = rateID

		sampleTier = &models.RateTier{
			Name:          "high",
			UnitOfMeasure: models.UnitDollar,
			MinimumValue:  decimal.NewFromInt(10000),
			DepositRateID: &parentID,
			ApplicabilityConditions: &models.RateCondition{
				AdditionalInfo:    "new customers only",
				AdditionalInfoURI: "https://bank.example/rates",
			},
			SubTier: &models.SubTier{
				Name:          "sub",
				UnitOfMeasure: models.UnitPercent,
				MinimumValue:  decimal.Zero,
			},
		}
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
		mockDB.Close()
	})

	Describe("Create", func() {
		It("should insert owned records before the tier", func() {
			mock.ExpectExec(`INSERT INTO `+conditionsTable+` \(rate_condition_id, additional_info, additional_info_uri\) VALUES \(\?, \?, \?\)`).
				WithArgs(sqlmock.AnyArg(), "new customers only", "https://bank.example/rates").
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec(`INSERT INTO `+subTiersTable).
				WithArgs(sqlmock.AnyArg(), "sub", "PERCENT", "0", nil, nil).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec(`INSERT INTO `+tiersTable).
				WithArgs(sqlmock.AnyArg(), "high", "DOLLAR", "10000", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), rateID, nil).
				WillReturnResult(sqlmock.NewResult(1, 1))

			Expect(repository.Create(ctx, sampleTier)).To(Succeed())
			Expect(sampleTier.ID).To(HaveLen(models.IDLength))
			Expect(sampleTier.ApplicabilityConditions.ID).To(HaveLen(models.IDLength))
			Expect(sampleTier.SubTier.ID).To(HaveLen(models.IDLength))
		})

		It("should stop when an owned record cannot be stored", func() {
			mock.ExpectExec(`INSERT INTO ` + conditionsTable).
				WillReturnError(errors.New("insert error"))

			err := repository.Create(ctx, sampleTier)
			Expect(err).To(MatchError(ContainSubstring("insert rate condition")))
		})

		It("should put back the caller's ids when the tier insert fails", func() {
			mock.ExpectExec(`INSERT INTO ` + conditionsTable).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec(`INSERT INTO ` + subTiersTable).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec(`INSERT INTO ` + tiersTable).
				WillReturnError(errors.New("insert error"))

			Expect(repository.Create(ctx, sampleTier)).NotTo(Succeed())
			Expect(sampleTier.ID).To(BeEmpty())
			Expect(sampleTier.ApplicabilityConditions.ID).To(BeEmpty())
			Expect(sampleTier.SubTier.ID).To(BeEmpty())
		})
	})

	Describe("GetByID", func() {
		It("should return the tier with its owned records", func() {
			mock.ExpectQuery(`FROM ` + tiersTable + ` t LEFT JOIN ` + conditionsTable + ` c .* LEFT JOIN ` + subTiersTable + ` s .* WHERE t\.rate_tier_id = \?`).
				WithArgs(tierID).
				WillReturnRows(sqlmock.NewRows(tierColumns).AddRow(
					tierID, "high", "DOLLAR", "10000", nil, "WHOLE_BALANCE", rateID, nil,
					"cond1", "new customers only", "https://bank.example/rates",
					"sub1", "sub", "PERCENT", "0", "5", nil,
				))

			tier, err := repository.GetByID(ctx, tierID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tier.RateApplicationMethod).To(Equal(models.WholeBalance))
			Expect(tier.Bounded()).To(BeFalse())
			Expect(tier.LendingRateID).To(BeNil())
			Expect(tier.ApplicabilityConditions).To(Equal(&models.RateCondition{
				ID:                "cond1",
				AdditionalInfo:    "new customers only",
				AdditionalInfoURI: "https://bank.example/rates",
			}))
			Expect(tier.SubTier.ID).To(Equal("sub1"))
			Expect(tier.SubTier.MaximumValue.Valid).To(BeTrue())
			Expect(tier.SubTier.MaximumValue.Decimal.String()).To(Equal("5"))
		})

		It("should return ErrNotFound for unknown ids", func() {
			mock.ExpectQuery(`FROM ` + tiersTable + ` t`).
				WithArgs(tierID).
				WillReturnRows(sqlmock.NewRows(tierColumns))

			_, err := repository.GetByID(ctx, tierID)
			Expect(err).To(Equal(repo.ErrNotFound))
		})
	})

	Describe("ListByLendingRate", func() {
		It("should query by the lending rate back-reference", func() {
			mock.ExpectQuery(`WHERE t\.lending_rate_id = \? ORDER BY t\.minimum_value, t\.rate_tier_id`).
				WithArgs("lend1").
				WillReturnRows(sqlmock.NewRows(tierColumns).
					AddRow(tierID, "only", nil, "0", nil, nil, nil, "lend1", nil, nil, nil, nil, nil, nil, nil, nil, nil))

			tiers, err := repository.ListByLendingRate(ctx, "lend1")
			Expect(err).NotTo(HaveOccurred())
			Expect(tiers).To(HaveLen(1))
			Expect(tiers[0].LendingRateID).To(HaveValue(Equal("lend1")))
			Expect(tiers[0].DepositRateID).To(BeNil())
			Expect(tiers[0].UnitOfMeasure).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("should update kept owned records and drop released ones", func() {
			sampleTier.ID = tierID
			sampleTier.ApplicabilityConditions = nil

			mock.ExpectQuery(`SELECT applicability_conditions_id, sub_tier_id FROM ` + tiersTable).
				WithArgs(tierID).
				WillReturnRows(sqlmock.NewRows([]string{"applicability_conditions_id", "sub_tier_id"}).AddRow("cond1", "sub1"))
			mock.ExpectExec(`UPDATE `+subTiersTable+` SET .* WHERE sub_tier_id = \?`).
				WithArgs("sub", "PERCENT", "0", nil, nil, "sub1").
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`UPDATE `+tiersTable+` SET .* WHERE rate_tier_id = \?`).
				WithArgs("high", "DOLLAR", "10000", nil, nil, nil, "sub1", rateID, nil, tierID).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`DELETE FROM ` + conditionsTable + ` WHERE rate_condition_id = \?`).
				WithArgs("cond1").
				WillReturnResult(sqlmock.NewResult(0, 1))

			Expect(repository.Update(ctx, sampleTier)).To(Succeed())
			Expect(sampleTier.SubTier.ID).To(Equal("sub1"))
		})

		It("should return ErrNotFound for unknown tiers", func() {
			sampleTier.ID = tierID
			mock.ExpectQuery(`SELECT applicability_conditions_id, sub_tier_id FROM ` + tiersTable).
				WithArgs(tierID).
				WillReturnRows(sqlmock.NewRows([]string{"applicability_conditions_id", "sub_tier_id"}))

			Expect(repository.Update(ctx, sampleTier)).To(Equal(repo.ErrNotFound))
		})
	})

	Describe("Delete", func() {
		It("should remove the tier and its sub-tier", func() {
			mock.ExpectQuery(`SELECT applicability_conditions_id, sub_tier_id FROM ` + tiersTable).
				WithArgs(tierID).
				WillReturnRows(sqlmock.NewRows([]string{"applicability_conditions_id", "sub_tier_id"}).AddRow(nil, "sub1"))
			mock.ExpectExec(`DELETE FROM ` + tiersTable + ` WHERE rate_tier_id = \?`).
				WithArgs(tierID).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`DELETE FROM ` + subTiersTable + ` WHERE sub_tier_id = \?`).
				WithArgs("sub1").
				WillReturnResult(sqlmock.NewResult(0, 1))

			Expect(repository.Delete(ctx, tierID)).To(Succeed())
		})

		It("should return ErrNotFound for unknown tiers", func() {
			mock.ExpectQuery(`SELECT applicability_conditions_id, sub_tier_id FROM ` + tiersTable).
				WithArgs(tierID).
				WillReturnRows(sqlmock.NewRows([]string{"applicability_conditions_id", "sub_tier_id"}))

			Expect(repository.Delete(ctx, tierID)).To(Equal(repo.ErrNotFound))
		})
	})
})
