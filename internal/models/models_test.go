package models_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/zdziszkee/product-rates/internal/models"
)

func TestModels(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Models Suite")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func upTo(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

var _ = Describe("DepositRate", func() {
	Describe("Equal", func() {
		It("should compare by id only", func() {
			a := &models.DepositRate{ID: "a1", RateType: models.DepositRateFixed, Rate: dec("2.50")}
			b := &models.DepositRate{ID: "a1", RateType: models.DepositRateBonus, Rate: dec("9.99"), AdditionalInfo: "other"}
			c := &models.DepositRate{ID: "c3", RateType: models.DepositRateFixed, Rate: dec("2.50")}

			Expect(a.Equal(b)).To(BeTrue())
			Expect(b.Equal(a)).To(BeTrue())
			Expect(a.Equal(c)).To(BeFalse())
		})

		It("should treat two records without ids as equal", func() {
			a := &models.DepositRate{RateType: models.DepositRateFixed}
			b := &models.DepositRate{RateType: models.DepositRateVariable}
			Expect(a.Equal(b)).To(BeTrue())
		})

		It("should not equal nil", func() {
			a := &models.DepositRate{ID: "a1"}
			Expect(a.Equal(nil)).To(BeFalse())
		})
	})

	Describe("String", func() {
		It("should enumerate every field", func() {
			r := &models.DepositRate{
				ID:                   "r1",
				RateType:             models.DepositRateFixed,
				Rate:                 dec("2.50"),
				CalculationFrequency: "P1D",
				ApplicationFrequency: "P1M",
				Tiers:                []models.RateTier{{ID: "t1", Name: "Base"}},
				AdditionalInfo:       "info",
				AdditionalInfoURI:    "https://bank.example/rates",
				ProductDetail:        []string{"p1"},
			}
			s := r.String()
			for _, part := range []string{
				`depositRateId="r1"`, "depositRateType=FIXED", "rate=2.5",
				`calculationFrequency="P1D"`, `applicationFrequency="P1M"`,
				`rateTierId="t1"`, `additionalValue=""`, `additionalInfo="info"`,
				"additionalInfoUri=https://bank.example/rates", "productDetail=[p1]",
			} {
				Expect(s).To(ContainSubstring(part))
			}
		})
	})

	Describe("Validate", func() {
		var rate *models.DepositRate

		BeforeEach(func() {
			rate = &models.DepositRate{
				RateType:             models.DepositRateFixed,
				Rate:                 dec("2.50"),
				CalculationFrequency: "P1D",
				ApplicationFrequency: "P1M",
			}
		})

		It("should accept a well formed rate", func() {
			Expect(rate.Validate()).To(Succeed())
		})

		It("should accept text exactly at the column limits", func() {
			rate.AdditionalValue = strings.Repeat("v", models.AdditionalValueMaxLength)
			rate.AdditionalInfo = strings.Repeat("i", models.AdditionalInfoMaxLength)
			rate.AdditionalInfoURI = strings.Repeat("u", models.AdditionalInfoURIMaxLength)
			Expect(rate.Validate()).To(Succeed())
		})

		It("should reject over-length text fields", func() {
			rate.AdditionalValue = strings.Repeat("v", models.AdditionalValueMaxLength+1)
			rate.AdditionalInfo = strings.Repeat("i", models.AdditionalInfoMaxLength+1)
			rate.AdditionalInfoURI = strings.Repeat("u", models.AdditionalInfoURIMaxLength+1)

			err := rate.Validate()
			var verr *models.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(verr.Fields).To(HaveLen(3))
			Expect(err.Error()).To(ContainSubstring("additionalInfoUri: must be at most 64 characters"))
		})

		It("should reject an unknown rate type", func() {
			rate.RateType = "DISCOUNTED"
			Expect(rate.Validate()).To(MatchError(ContainSubstring("depositRateType")))
		})

		It("should report invalid tiers with their position", func() {
			rate.Tiers = []models.RateTier{
				{MinimumValue: dec("0"), MaximumValue: upTo("10")},
				{MinimumValue: dec("10"), UnitOfMeasure: "YEAR"},
			}
			Expect(rate.Validate()).To(MatchError(ContainSubstring("tiers[1].unitOfMeasure")))
		})
	})

	Describe("AttachTiers", func() {
		It("should point every tier at the rate", func() {
			lending := "l1"
			rate := &models.DepositRate{ID: "r1", Tiers: []models.RateTier{{}, {LendingRateID: &lending}}}
			rate.AttachTiers()
			for _, t := range rate.Tiers {
				Expect(t.DepositRateID).NotTo(BeNil())
				Expect(*t.DepositRateID).To(Equal("r1"))
				Expect(t.LendingRateID).To(BeNil())
			}
		})
	})
})

var _ = Describe("RateTier", func() {
	It("should compare by id only", func() {
		a := &models.RateTier{ID: "t1", Name: "low"}
		b := &models.RateTier{ID: "t1", Name: "high", MinimumValue: dec("100")}
		Expect(a.Equal(b)).To(BeTrue())
		Expect(a.Equal(&models.RateTier{ID: "t2"})).To(BeFalse())
		Expect((&models.RateTier{}).Equal(&models.RateTier{})).To(BeTrue())
	})

	It("should reject a tier linked to both a deposit and a lending rate", func() {
		d, l := "d1", "l1"
		t := &models.RateTier{DepositRateID: &d, LendingRateID: &l}
		Expect(t.Validate()).To(MatchError(ContainSubstring("lendingRateId")))
	})

	It("should reject a maximum below the minimum", func() {
		t := &models.RateTier{MinimumValue: dec("100"), MaximumValue: upTo("50")}
		Expect(t.Validate()).To(MatchError(ContainSubstring("maximumValue")))
	})

	It("should validate owned records", func() {
		t := &models.RateTier{
			ApplicabilityConditions: &models.RateCondition{AdditionalInfoURI: strings.Repeat("u", 65)},
			SubTier:                 &models.SubTier{RateApplicationMethod: "HALF"},
		}
		err := t.Validate()
		Expect(err).To(MatchError(ContainSubstring("applicabilityConditions.additionalInfoUri")))
		Expect(err).To(MatchError(ContainSubstring("subTier.rateApplicationMethod")))
	})

	It("should print null for absent references", func() {
		t := &models.RateTier{ID: "t1", MinimumValue: dec("0")}
		s := t.String()
		Expect(s).To(ContainSubstring("maximumValue=null"))
		Expect(s).To(ContainSubstring("depositRate=null"))
		Expect(s).To(ContainSubstring("subTier=null"))
	})
})

var _ = Describe("Tiers", func() {
	var tiers models.Tiers

	BeforeEach(func() {
		// deliberately out of order
		tiers = models.Tiers{
			{ID: "high", MinimumValue: dec("10000")},
			{ID: "low", UnitOfMeasure: models.UnitDollar, MinimumValue: dec("0"), MaximumValue: upTo("10000"), RateApplicationMethod: models.PerTier},
		}
	})

	Describe("Resolve", func() {
		DescribeTable("should pick the right band",
			func(value, expected string) {
				tier, err := tiers.Resolve(dec(value))
				Expect(err).NotTo(HaveOccurred())
				Expect(tier.ID).To(Equal(expected))
			},
			Entry("lower bound is inclusive", "0", "low"),
			Entry("inside the lower band", "9999.99", "low"),
			Entry("shared boundary goes to the higher tier", "10000", "high"),
			Entry("unbounded tier has no ceiling", "1000000000", "high"),
		)

		It("should fail below the lowest tier", func() {
			_, err := tiers.Resolve(dec("-1"))
			Expect(err).To(MatchError(models.ErrNoMatchingTier))
		})

		It("should include the maximum of the highest bounded tier", func() {
			bounded := models.Tiers{{ID: "only", MinimumValue: dec("1"), MaximumValue: upTo("3")}}
			tier, err := bounded.Resolve(dec("3"))
			Expect(err).NotTo(HaveOccurred())
			Expect(tier.ID).To(Equal("only"))
		})

		It("should fail without tiers", func() {
			_, err := models.Tiers{}.Resolve(dec("1"))
			Expect(err).To(MatchError(models.ErrNoTiers))
		})
	})

	Describe("CheckPartition", func() {
		It("should accept contiguous tiers", func() {
			Expect(tiers.CheckPartition()).To(Succeed())
		})

		It("should report a gap", func() {
			tiers[0].MinimumValue = dec("10001")
			Expect(tiers.CheckPartition()).To(MatchError(models.ErrTierGap))
		})

		It("should report an overlap", func() {
			tiers[0].MinimumValue = dec("5000")
			Expect(tiers.CheckPartition()).To(MatchError(models.ErrTierOverlap))
		})

		It("should report an unbounded tier below another tier", func() {
			tiers[1].MaximumValue = decimal.NullDecimal{}
			tiers[0].MaximumValue = upTo("20000")
			Expect(tiers.CheckPartition()).To(MatchError(models.ErrTierUnbounded))
		})
	})

	Describe("Coverage", func() {
		It("should cover zero to infinity for the two-tier fixed rate", func() {
			rate := models.DepositRate{
				RateType:             models.DepositRateFixed,
				Rate:                 dec("2.50"),
				CalculationFrequency: "P1D",
				ApplicationFrequency: "P1M",
				Tiers:                tiers,
				ID:                   "r1",
			}
			rate.AttachTiers()
			Expect(rate.Validate()).To(Succeed())
			Expect(rate.Tiers).To(HaveLen(2))

			low, high, err := models.Tiers(rate.Tiers).Coverage()
			Expect(err).NotTo(HaveOccurred())
			Expect(low.Equal(decimal.Zero)).To(BeTrue())
			Expect(high.Valid).To(BeFalse())
		})
	})
})
