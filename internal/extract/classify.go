package extract

import (
	"regexp"
	"strings"

	"github.com/tomvasile/ledgerscan/internal/patterns"
)

// DocumentType is the closed set of recognized document categories.
type DocumentType string

const (
	DocTypeBankStatement DocumentType = "bank_statement"
	DocTypeRideshare     DocumentType = "rideshare"
	DocTypeGeneral       DocumentType = "general"
)

// tableIndicatorThreshold is the number of indicator lines required
// before a document counts as table-structured.
const tableIndicatorThreshold = 3

// Boost added to the bank scores when tabular structure is detected;
// tabular statements are overwhelmingly bank-style.
const (
	tableBankWeightedBoost   = 5
	tableBankUnweightedBoost = 2
)

var columnGap = regexp.MustCompile(`[ \t]{3,}`)

// Classify assigns text to exactly one document type. Deterministic and
// total: low-signal or tied input defaults to general.
func Classify(text string) DocumentType {
	return ClassifyWithHint(text, DocTypeGeneral)
}

// ClassifyWithHint classifies text, letting an advisory caller hint break
// ties: a hinted type wins over the general default only when at least
// one of its keywords is present.
func ClassifyWithHint(text string, hint DocumentType) DocumentType {
	lower := strings.ToLower(text)

	rideWeighted, ridePresent := keywordScores(lower, patterns.RideshareKeywords)
	bankWeighted, bankPresent := keywordScores(lower, patterns.BankKeywords)

	if DetectTable(splitLines(text)) {
		bankWeighted += tableBankWeightedBoost
		bankPresent += tableBankUnweightedBoost
	}

	switch {
	case rideWeighted > bankWeighted && ridePresent >= 2:
		return DocTypeRideshare
	case bankWeighted >= 2 || bankPresent >= 3:
		return DocTypeBankStatement
	}

	switch hint {
	case DocTypeRideshare:
		if ridePresent >= 1 {
			return DocTypeRideshare
		}
	case DocTypeBankStatement:
		if bankPresent >= 1 {
			return DocTypeBankStatement
		}
	}
	return DocTypeGeneral
}

// keywordScores returns the frequency-weighted occurrence count and the
// unweighted presence count of the keyword set in lower-cased text.
func keywordScores(lower string, keywords []string) (weighted, present int) {
	for _, kw := range keywords {
		n := strings.Count(lower, kw)
		if n > 0 {
			weighted += n
			present++
		}
	}
	return weighted, present
}

// DetectTable reports whether the lines look table-structured: at least
// three lines carrying a table indicator.
func DetectTable(lines []string) bool {
	indicators := 0
	for _, line := range lines {
		if isTableIndicator(line) {
			indicators++
			if indicators >= tableIndicatorThreshold {
				return true
			}
		}
	}
	return false
}

// isTableIndicator recognizes a line-level table signal: a column-gap
// whitespace run, a date and an amount co-occurring, or a header keyword.
func isTableIndicator(line string) bool {
	if columnGap.MatchString(line) {
		return true
	}
	if _, ok := patterns.FindDate(line); ok && patterns.HasAmount(line) {
		return true
	}
	lower := strings.ToLower(line)
	for _, kw := range patterns.TableHeaderKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
