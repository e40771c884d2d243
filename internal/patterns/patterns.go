// Package patterns holds the pre-compiled recognizers shared by the
// classifier and the type-specific extractors: date shapes, monetary
// amount shapes, and the keyword sets that distinguish document types.
// Everything here is pure data plus matching; nothing keeps state.
package patterns

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateRecognizer pairs a regexp that locates a date-shaped token with the
// layouts used to parse it. Recognizers are tried in order; day-first
// layouts come before month-first because the statements this service
// sees are overwhelmingly D/M/Y.
type dateRecognizer struct {
	re      *regexp.Regexp
	layouts []string
}

var dateRecognizers = []dateRecognizer{
	// 01/02/2024, 01-02-2024, 01.02.2024
	{
		re:      regexp.MustCompile(`\b(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4})\b`),
		layouts: []string{"2/1/2006", "1/2/2006"},
	},
	// 2024/02/01, 2024-02-01
	{
		re:      regexp.MustCompile(`\b(\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2})\b`),
		layouts: []string{"2006/1/2"},
	},
	// 1 Feb 2024, 01 February 2024
	{
		re:      regexp.MustCompile(`\b(\d{1,2}\s+(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{4})\b`),
		layouts: []string{"2 Jan 2006", "2 January 2006"},
	},
	// Feb 1, 2024 / February 1 2024
	{
		re:      regexp.MustCompile(`\b((?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{1,2},?\s+\d{4})\b`),
		layouts: []string{"Jan 2, 2006", "Jan 2 2006", "January 2, 2006", "January 2 2006"},
	},
	// D/M/YY short years
	{
		re:      regexp.MustCompile(`\b(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2})\b`),
		layouts: []string{"2/1/06", "1/2/06"},
	},
}

// ordinalSuffixes strips "1st", "22nd" style suffixes so the layouts above
// can parse the remainder.
var ordinalSuffixes = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)\b`)

// separators normalizes - and . separators to / before layout parsing.
var separators = strings.NewReplacer("-", "/", ".", "/")

// FindDate returns the first date-shaped token in line, if any.
func FindDate(line string) (string, bool) {
	cleaned := ordinalSuffixes.ReplaceAllString(line, "$1")
	for _, r := range dateRecognizers {
		if m := r.re.FindString(cleaned); m != "" {
			return m, true
		}
	}
	return "", false
}

// HasDate reports whether line contains a date-shaped token. Only the two
// most specific recognizers are consulted; this is the cheap pre-filter
// used before full line parsing.
func HasDate(line string) bool {
	cleaned := ordinalSuffixes.ReplaceAllString(line, "$1")
	for _, r := range dateRecognizers[:2] {
		if r.re.MatchString(cleaned) {
			return true
		}
	}
	return false
}

// NormalizeDate converts a recognized date token to canonical YYYY-MM-DD
// form. Unrecognized input is returned trimmed but otherwise unchanged, so
// normalization never fails and normalizing twice equals normalizing once.
func NormalizeDate(s string) string {
	trimmed := strings.TrimSpace(ordinalSuffixes.ReplaceAllString(s, "$1"))
	for _, r := range dateRecognizers {
		m := r.re.FindString(trimmed)
		if m == "" {
			continue
		}
		candidate := m
		if !strings.ContainsAny(candidate, "JFMASONDjfmasond") {
			candidate = separators.Replace(candidate)
		}
		for _, layout := range r.layouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return trimmed
}

// Amount recognizers, most specific first. Each regexp captures the
// numeric part in group 1; symbols, codes and thousands separators are
// stripped before parsing.
var amountRecognizers = []*regexp.Regexp{
	// $1,234.56 / A$1,234.56 / €12.50
	regexp.MustCompile(`[A-Z]{0,2}[$€£]\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`),
	// 1,234.56$ / 12.50 €
	regexp.MustCompile(`(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)\s*[$€£]`),
	// explicit sign: -1,234.56 / +45.00
	regexp.MustCompile(`[+-]\s?(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`),
	// bare decimal with two fraction digits: 1,234.56
	regexp.MustCompile(`\b(\d{1,3}(?:,\d{3})*\.\d{2})\b`),
	// currency-code prefix: AUD 1,234.56
	regexp.MustCompile(`\b(?:AUD|USD|EUR|GBP|NZD|CAD)\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)\b`),
}

// outflowWords force a negative sign when they appear anywhere on the
// source line, regardless of which amount shape matched.
var outflowWords = []string{"debit", "withdrawal", "fee", "charge"}

// stripDates blanks out date tokens so amount recognizers cannot match
// digit runs inside 01-02-2024 style dates.
func stripDates(s string) string {
	s = ordinalSuffixes.ReplaceAllString(s, "$1")
	for _, r := range dateRecognizers {
		s = r.re.ReplaceAllString(s, " ")
	}
	return s
}

// ParseAmount extracts the first monetary amount from s. Recognizers are
// tried in order and the first match of the first matching recognizer
// wins. The returned value carries the outflow sign heuristic applied.
func ParseAmount(s string) (float64, bool) {
	stripped := stripDates(s)
	for _, re := range amountRecognizers {
		m := re.FindStringSubmatch(stripped)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		signed := ApplySign(s, v)
		// A minus attached to the matched token wins even when the line
		// carries no outflow cue.
		if signed > 0 && strings.HasPrefix(strings.TrimSpace(m[0]), "-") {
			signed = -signed
		}
		return signed, true
	}
	return 0, false
}

// FindAllAmounts returns every amount matched by the first recognizer
// that matches anywhere in s, in order of appearance. Values are
// unsigned; callers dealing in windows sum them as-is.
func FindAllAmounts(s string) []float64 {
	stripped := stripDates(s)
	for _, re := range amountRecognizers {
		ms := re.FindAllStringSubmatch(stripped, -1)
		if len(ms) == 0 {
			continue
		}
		out := make([]float64, 0, len(ms))
		for _, m := range ms {
			v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err != nil {
				continue
			}
			out = append(out, v)
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// HasAmount reports whether s contains an amount-shaped token, consulting
// only the three most specific recognizers. Pre-filter companion to
// HasDate.
func HasAmount(s string) bool {
	stripped := stripDates(s)
	for _, re := range amountRecognizers[:3] {
		if re.MatchString(stripped) {
			return true
		}
	}
	return false
}

// ApplySign forces amount negative when the line signals an outflow:
// either an outflow word anywhere in the line or a leading minus sign.
func ApplySign(line string, amount float64) float64 {
	if amount < 0 {
		amount = -amount
	}
	lower := strings.ToLower(line)
	for _, w := range outflowWords {
		if strings.Contains(lower, w) {
			return -amount
		}
	}
	if strings.HasPrefix(strings.TrimSpace(line), "-") {
		return -amount
	}
	return amount
}

// transactionPrefixes are leading labels stripped from descriptions.
var transactionPrefixes = []string{
	"payment:", "deposit:", "withdrawal:", "purchase:", "transfer:",
	"direct debit:", "direct credit:", "pos:", "eftpos:",
}

var whitespaceRuns = regexp.MustCompile(`\s+`)

// CleanDescription removes date and amount tokens from line, collapses
// whitespace, strips known transaction-type prefixes and trims stray
// punctuation.
func CleanDescription(line string) string {
	s := ordinalSuffixes.ReplaceAllString(line, "$1")
	for _, r := range dateRecognizers {
		s = r.re.ReplaceAllString(s, " ")
	}
	for _, re := range amountRecognizers {
		s = re.ReplaceAllString(s, " ")
	}
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, p := range transactionPrefixes {
		if strings.HasPrefix(lower, p) {
			s = strings.TrimSpace(s[len(p):])
			lower = strings.ToLower(s)
		}
	}
	return strings.Trim(s, " \t-–:;,.|")
}

// Keyword sets used by the document classifier.
var (
	RideshareKeywords = []string{
		"trip", "driver", "fare", "pickup", "dropoff", "uber", "lyft",
		"didi", "rideshare", "passenger", "surge", "tolls",
	}
	BankKeywords = []string{
		"account", "balance", "debit", "credit", "deposit", "withdrawal",
		"statement", "transaction", "interest", "bsb",
	}
	// TableHeaderKeywords mark a line as a likely column header row.
	TableHeaderKeywords = []string{
		"date", "amount", "description", "debit", "credit", "balance",
	}
)
