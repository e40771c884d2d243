package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ScoreQuality", func() {
	var (
		records    []RawTransaction
		base       float64
		metrics    QualityMetrics
		confidence float64
	)

	BeforeEach(func() {
		base = 1.0
	})

	JustBeforeEach(func() {
		metrics, confidence = ScoreQuality(records, base)
	})

	When("no records were extracted", func() {
		BeforeEach(func() {
			records = nil
		})

		It("returns the fixed low confidence with zeroed sub-scores", func() {
			Expect(confidence).To(Equal(0.1))
			Expect(metrics).To(Equal(QualityMetrics{}))
		})
	})

	When("a single record is flawless", func() {
		BeforeEach(func() {
			records = []RawTransaction{
				{Date: "2024-02-01", Description: "Grocery Store", Amount: 45.67},
			}
		})

		It("scores every sub-metric at one", func() {
			Expect(metrics.DataCompleteness).To(Equal(1.0))
			Expect(metrics.DateValidity).To(Equal(1.0))
			Expect(metrics.AmountValidity).To(Equal(1.0))
			Expect(metrics.DescriptionQuality).To(Equal(1.0))
			Expect(metrics.ConsistencyScore).To(Equal(1.0))
			Expect(confidence).To(BeNumerically("~", 1.0, 1e-9))
		})

		When("the structure analysis was less confident", func() {
			BeforeEach(func() {
				base = 0.5
			})

			It("blends the base in at its weight", func() {
				Expect(confidence).To(BeNumerically("~", 0.85, 1e-9))
			})
		})
	})

	When("records carry assorted defects", func() {
		BeforeEach(func() {
			base = 0.8
			records = []RawTransaction{
				{Date: "2024-02-01", Description: "Grocery Store", Amount: 45.67},
				{Date: "01/02/2024", Description: "Coffee Shop", Amount: 4.50},
				{Date: "2024-02-03", Description: "House purchase", Amount: 2_000_000},
				{Date: "2024-02-04", Description: "Unknown", Amount: 10},
			}
		})

		It("penalizes non-canonical dates", func() {
			Expect(metrics.DateValidity).To(Equal(0.75))
		})

		It("penalizes implausibly large amounts", func() {
			Expect(metrics.AmountValidity).To(Equal(0.75))
		})

		It("penalizes placeholder descriptions", func() {
			Expect(metrics.DescriptionQuality).To(Equal(0.75))
		})

		It("still counts populated fields as complete", func() {
			Expect(metrics.DataCompleteness).To(Equal(1.0))
		})

		It("blends down accordingly", func() {
			Expect(confidence).To(BeNumerically("~", 0.8275, 1e-9))
		})
	})

	When("a field is missing entirely", func() {
		BeforeEach(func() {
			records = []RawTransaction{
				{Date: "2024-02-01", Description: "", Amount: 5},
			}
		})

		It("drops both completeness and description quality", func() {
			Expect(metrics.DataCompleteness).To(BeNumerically("~", 2.0/3.0, 1e-9))
			Expect(metrics.DescriptionQuality).To(BeZero())
		})
	})

	When("an amount is zero", func() {
		BeforeEach(func() {
			records = []RawTransaction{
				{Date: "2024-02-01", Description: "Pending authorization", Amount: 0},
			}
		})

		It("counts it neither complete nor valid", func() {
			Expect(metrics.DataCompleteness).To(BeNumerically("~", 2.0/3.0, 1e-9))
			Expect(metrics.AmountValidity).To(BeZero())
		})
	})

	When("the list repeats a record", func() {
		BeforeEach(func() {
			records = []RawTransaction{
				{Date: "2024-02-01", Description: "Grocery Store", Amount: 45.67},
				{Date: "2024-02-01", Description: "Grocery Store", Amount: 45.67},
			}
		})

		It("halves the consistency score", func() {
			Expect(metrics.ConsistencyScore).To(Equal(0.5))
		})
	})

	When("descriptions differ only past their leading twenty characters", func() {
		BeforeEach(func() {
			records = []RawTransaction{
				{Date: "2024-02-01", Description: "Subscription renewal monthly", Amount: 9.99},
				{Date: "2024-02-01", Description: "Subscription renewal annual", Amount: 9.99},
			}
		})

		It("treats them as duplicates", func() {
			Expect(metrics.ConsistencyScore).To(Equal(0.5))
		})
	})

	When("short descriptions slip through", func() {
		BeforeEach(func() {
			records = []RawTransaction{
				{Date: "2024-02-01", Description: "Cafe", Amount: 4.50},
			}
		})

		It("does not count them as quality descriptions", func() {
			Expect(metrics.DescriptionQuality).To(BeZero())
		})
	})
})
