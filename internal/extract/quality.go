package extract

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Weights of the confidence blend. The base confidence comes from the
// structure analysis; the rest are record-level signals.
const (
	weightBase        = 0.30
	weightComplete    = 0.20
	weightDates       = 0.20
	weightAmounts     = 0.15
	weightDescription = 0.10
	weightConsistency = 0.05

	// emptyResultConfidence is returned whenever no records were
	// extracted, regardless of how clean the document looked.
	emptyResultConfidence = 0.1

	// maxSaneAmount bounds what counts as a plausible transaction value.
	maxSaneAmount = 1_000_000
)

var placeholderDescriptions = []string{"unknown", "n/a", "none"}

// ScoreQuality computes the composite confidence for a record list,
// blending record-level signals with the structure analyzer's base
// confidence. An empty list short-circuits to the fixed low confidence
// with zeroed sub-scores.
func ScoreQuality(records []RawTransaction, baseConfidence float64) (QualityMetrics, float64) {
	if len(records) == 0 {
		return QualityMetrics{}, emptyResultConfidence
	}

	n := float64(len(records))
	var (
		fieldsPopulated int
		validDates      int
		validAmounts    int
		goodDescs       int
	)
	seen := make(map[string]int, len(records))

	for _, r := range records {
		if r.Date != "" {
			fieldsPopulated++
		}
		if r.Description != "" {
			fieldsPopulated++
		}
		if r.Amount != 0 {
			fieldsPopulated++
		}

		if _, err := time.Parse("2006-01-02", r.Date); err == nil {
			validDates++
		}
		if r.Amount != 0 && math.Abs(r.Amount) <= maxSaneAmount {
			validAmounts++
		}
		if goodDescription(r.Description) {
			goodDescs++
		}
		seen[dedupKey(r)]++
	}

	metrics := QualityMetrics{
		DataCompleteness:   float64(fieldsPopulated) / (3 * n),
		DateValidity:       float64(validDates) / n,
		AmountValidity:     float64(validAmounts) / n,
		DescriptionQuality: float64(goodDescs) / n,
		ConsistencyScore:   float64(len(seen)) / n,
	}

	confidence := weightBase*baseConfidence +
		weightComplete*metrics.DataCompleteness +
		weightDates*metrics.DateValidity +
		weightAmounts*metrics.AmountValidity +
		weightDescription*metrics.DescriptionQuality +
		weightConsistency*metrics.ConsistencyScore

	return metrics, confidence
}

func goodDescription(desc string) bool {
	if len(desc) <= 5 {
		return false
	}
	lower := strings.ToLower(desc)
	for _, p := range placeholderDescriptions {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	return true
}

// dedupKey identifies exact duplicates: same date, same leading
// description, same amount to the cent.
func dedupKey(r RawTransaction) string {
	desc := r.Description
	if len(desc) > 20 {
		desc = desc[:20]
	}
	return fmt.Sprintf("%s|%s|%.2f", r.Date, desc, r.Amount)
}
