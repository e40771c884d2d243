package extract

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractRideshareTrips", func() {
	var (
		text    string
		summary *RideshareTaxSummary
	)

	JustBeforeEach(func() {
		summary = ExtractRideshareTrips(text)
	})

	When("amounts spill onto following lines", func() {
		BeforeEach(func() {
			text = strings.Join([]string{
				"Trip on 01/02/2024",
				"From: Downtown to: Airport",
				"Fare $12.50 Tip $3.00",
				"Distance 8.2 km Tolls $2.40",
			}, "\n")
		})

		It("anchors the trip on the dated line", func() {
			Expect(summary.Trips).To(HaveLen(1))
			Expect(summary.Trips[0].Date).To(Equal("2024-02-01"))
		})

		It("takes the first amount as the fare and the second as the tip", func() {
			Expect(summary.Trips[0].Fare).To(Equal(12.50))
			Expect(summary.Trips[0].Tips).To(HaveValue(Equal(3.00)))
		})

		It("sums every windowed amount into the trip total", func() {
			// Fare + tip + tolls all fold into the total
			Expect(summary.Trips[0].TotalEarnings).To(BeNumerically("~", 17.90, 1e-9))
		})

		It("captures distance, tolls and route", func() {
			Expect(summary.Trips[0].Distance).To(HaveValue(Equal(8.2)))
			Expect(summary.Trips[0].Tolls).To(HaveValue(Equal(2.40)))
			Expect(summary.Trips[0].PickupLocation).To(Equal("Downtown"))
			Expect(summary.Trips[0].DropoffLocation).To(Equal("Airport"))
		})
	})

	When("the summary holds several trips", func() {
		BeforeEach(func() {
			text = strings.Join([]string{
				"01/02/2024 Fare $12.50 Tip $3.00",
				"02/02/2024 Fare $20.00",
				"03/02/2024 Fare $8.00 Tip $1.00",
			}, "\n")
		})

		It("extracts each trip", func() {
			Expect(summary.Trips).To(HaveLen(3))
			Expect(summary.TotalTrips).To(Equal(3))
		})

		It("totals earnings over the trips", func() {
			Expect(summary.TotalEarnings).To(BeNumerically("~", 12.50+3.00+20.00+8.00+1.00, 1e-9))
		})

		It("totals tips and omits absent optionals", func() {
			Expect(summary.TotalTips).To(HaveValue(BeNumerically("~", 4.00, 1e-9)))
			Expect(summary.TotalTolls).To(BeNil())
			Expect(summary.TotalDistance).To(BeNil())
		})

		It("leaves tips nil on a tipless trip", func() {
			Expect(summary.Trips[1].Tips).To(BeNil())
			Expect(summary.Trips[1].TotalEarnings).To(Equal(20.00))
		})
	})

	When("a dated line has no amounts anywhere in its window", func() {
		BeforeEach(func() {
			text = strings.Join([]string{
				"01/02/2024 shift started",
				"no money involved",
			}, "\n")
		})

		It("extracts nothing", func() {
			Expect(summary.Trips).To(BeEmpty())
			Expect(summary.TotalEarnings).To(BeZero())
		})
	})
})
