package extract

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractGeneralTransactions", func() {
	var (
		text   string
		result *GenericTransactions
	)

	JustBeforeEach(func() {
		result = ExtractGeneralTransactions(text)
	})

	When("the document carries a header row and column gaps", func() {
		BeforeEach(func() {
			text = strings.Join([]string{
				"Date  Description  Amount",
				"01/02/2024  Grocery Store  $45.67",
				"02/02/2024  Salary deposit  $2,500.00",
			}, "\n")
		})

		It("splits rows on column gaps", func() {
			Expect(result.Transactions).To(HaveLen(2))
			Expect(result.Transactions[0]).To(Equal(RawTransaction{
				Date:        "2024-02-01",
				Description: "Grocery Store",
				Amount:      45.67,
			}))
			Expect(result.Transactions[1].Amount).To(Equal(2500.00))
		})
	})

	When("row cells arrive out of the header order", func() {
		BeforeEach(func() {
			text = strings.Join([]string{
				"Date  Description  Amount",
				"01/02/2024  Grocery Store  $45.67",
				"Refund  $10.00  05/02/2024",
			}, "\n")
		})

		It("matches each cell by shape, not position", func() {
			Expect(result.Transactions).To(HaveLen(2))
			Expect(result.Transactions[1]).To(Equal(RawTransaction{
				Date:        "2024-02-05",
				Description: "Refund",
				Amount:      10.00,
			}))
		})
	})

	When("an outflow cue sits in a different cell than the amount", func() {
		BeforeEach(func() {
			text = strings.Join([]string{
				"Date  Description  Amount",
				"01/02/2024  Grocery Store  $45.67",
				"04/02/2024  Account fee  $12.00",
			}, "\n")
		})

		It("signs the amount from its own cell alone", func() {
			Expect(result.Transactions).To(HaveLen(2))
			Expect(result.Transactions[1].Amount).To(Equal(12.00))
		})
	})

	When("a row under the header has no column gaps", func() {
		BeforeEach(func() {
			text = strings.Join([]string{
				"Date  Description  Amount",
				"01/02/2024  Grocery Store  $45.67",
				"03/02/2024 Parking $5.00",
			}, "\n")
		})

		It("parses it as a plain transaction line", func() {
			Expect(result.Transactions).To(HaveLen(2))
			Expect(result.Transactions[1]).To(Equal(RawTransaction{
				Date:        "2024-02-03",
				Description: "Parking",
				Amount:      5.00,
			}))
		})
	})

	When("rows violate the record invariants", func() {
		BeforeEach(func() {
			text = strings.Join([]string{
				"Date  Description  Amount",
				"01/02/2024  Grocery Store  $45.67",
				"05/02/2024  Void item  $0.00",
				"06/02/2024  AB  $9.99",
			}, "\n")
		})

		It("drops zero amounts and trivial descriptions", func() {
			Expect(result.Transactions).To(HaveLen(1))
			Expect(result.Transactions[0].Description).To(Equal("Grocery Store"))
		})
	})

	When("the text looks tabular but has no header row", func() {
		BeforeEach(func() {
			text = strings.Join([]string{
				"Summary   of   charges",
				"Totals   for   period",
				"Figures   below",
				"01/02/2024 Taxi ride $18.00",
			}, "\n")
		})

		It("falls back to line scanning", func() {
			Expect(result.Transactions).To(HaveLen(1))
			Expect(result.Transactions[0]).To(Equal(RawTransaction{
				Date:        "2024-02-01",
				Description: "Taxi ride",
				Amount:      18.00,
			}))
		})
	})

	When("the text is free-form prose", func() {
		BeforeEach(func() {
			text = strings.Join([]string{
				"Receipt issued by the parking garage",
				"01/02/2024 Grocery Store $23.10",
				"thank you for your visit",
			}, "\n")
		})

		It("extracts only lines with both a date and an amount", func() {
			Expect(result.Transactions).To(HaveLen(1))
			Expect(result.Transactions[0]).To(Equal(RawTransaction{
				Date:        "2024-02-01",
				Description: "Grocery Store",
				Amount:      23.10,
			}))
		})
	})
})
