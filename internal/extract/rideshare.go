package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tomvasile/ledgerscan/internal/patterns"
)

// lookaheadLines is how many following lines are folded into a trip's
// parsing window, catching amounts that spill past the trip line.
const lookaheadLines = 3

var (
	routeRe    = regexp.MustCompile(`(?i)(?:from|pickup|start)[:\s]+([A-Za-z][A-Za-z0-9 .'\-]*?)\s+(?:to|drop\s?-?off|end)[:\s]+([A-Za-z][A-Za-z0-9 .'\-]*)`)
	distanceRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:km|mi|miles)\b`)
	tollsRe    = regexp.MustCompile(`(?i)tolls?[:\s]*\$?(\d+(?:\.\d{1,2})?)`)
)

// ExtractRideshareTrips parses an earnings summary into trips. Each line
// with a date anchors a trip; amounts are collected from the line plus a
// lookahead window bounded by the next anchor, the first becoming the
// fare and the second the tip.
func ExtractRideshareTrips(text string) *RideshareTaxSummary {
	lines := splitLines(text)
	summary := &RideshareTaxSummary{}

	var (
		sumDistance float64
		sumTips     float64
		sumTolls    float64
	)

	for i, line := range lines {
		rawDate, ok := patterns.FindDate(line)
		if !ok {
			continue
		}

		end := i + 1 + lookaheadLines
		if end > len(lines) {
			end = len(lines)
		}
		// The window never crosses into the next trip's anchor line.
		for j := i + 1; j < end; j++ {
			if _, ok := patterns.FindDate(lines[j]); ok {
				end = j
				break
			}
		}
		windowLines := lines[i:end]
		window := strings.Join(windowLines, " ")

		amounts := patterns.FindAllAmounts(window)
		if len(amounts) == 0 {
			continue
		}

		trip := RideshareTrip{
			Date: patterns.NormalizeDate(rawDate),
			Fare: amounts[0],
			// The window total deliberately sums every matched amount,
			// not fare+tips; see sumWindowAmounts.
			TotalEarnings: sumWindowAmounts(amounts),
		}
		if len(amounts) > 1 {
			trip.Tips = ptr(amounts[1])
			sumTips += amounts[1]
		}
		if m := distanceRe.FindStringSubmatch(window); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				trip.Distance = ptr(v)
				sumDistance += v
			}
		}
		if m := tollsRe.FindStringSubmatch(window); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				trip.Tolls = ptr(v)
				sumTolls += v
			}
		}
		// Route endpoints match per line so the dropoff capture cannot
		// swallow text that follows on a later window line.
		for _, wl := range windowLines {
			if m := routeRe.FindStringSubmatch(wl); m != nil {
				trip.PickupLocation = strings.TrimSpace(m[1])
				trip.DropoffLocation = strings.TrimSpace(m[2])
				break
			}
		}

		summary.Trips = append(summary.Trips, trip)
		summary.TotalEarnings += trip.TotalEarnings
	}

	summary.TotalTrips = len(summary.Trips)
	summary.TotalDistance = optionalSum(sumDistance)
	summary.TotalTips = optionalSum(sumTips)
	summary.TotalTolls = optionalSum(sumTolls)
	return summary
}

// sumWindowAmounts is the trip-total policy: the total is the sum of all
// amounts matched in the lookahead window. This can fold unrelated
// figures (a toll, an odometer reading) into the total and so need not
// equal fare+tips; the quality scorer treats the fare+tips relation as a
// soft signal only. Kept deliberately, pending a product decision.
func sumWindowAmounts(amounts []float64) float64 {
	var total float64
	for _, a := range amounts {
		total += a
	}
	return total
}
