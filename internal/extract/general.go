package extract

import (
	"regexp"
	"strings"

	"github.com/tomvasile/ledgerscan/internal/patterns"
)

const (
	// headerSearchLines bounds the scan for a table header row.
	headerSearchLines = 10

	// minDescriptionLen is the cleaned-description floor below which a
	// record is discarded.
	minDescriptionLen = 2
)

var cellSplit = regexp.MustCompile(`[ \t]{2,}`)

// ExtractGeneralTransactions parses arbitrary financial text. Tabular
// documents go through column-aware row splitting; everything else goes
// through a pre-filtered line parser.
func ExtractGeneralTransactions(text string) *GenericTransactions {
	lines := splitLines(text)
	result := &GenericTransactions{}

	if DetectTable(lines) {
		result.Transactions = extractFromTable(lines)
		if len(result.Transactions) > 0 {
			return result
		}
	}

	for _, line := range lines {
		// Cheap pre-filter before the full parse: candidate lines must
		// show both a date shape and an amount shape.
		if !patterns.HasDate(line) || !patterns.HasAmount(line) {
			continue
		}
		if tx, ok := parseTransactionLine(line); ok {
			result.Transactions = append(result.Transactions, tx)
		}
	}
	return result
}

// extractFromTable locates a header row and splits the following rows on
// column gaps, matching each cell against date and amount shapes
// independent of position. Rows that fail the structural parse fall back
// to the plain line parser.
func extractFromTable(lines []string) []RawTransaction {
	headerIdx := findHeaderRow(lines)
	if headerIdx < 0 {
		return nil
	}

	var out []RawTransaction
	for _, line := range lines[headerIdx+1:] {
		cells := cellSplit.Split(line, -1)
		if len(cells) >= 2 {
			if tx, ok := parseRowCells(cells); ok {
				out = append(out, tx)
				continue
			}
		}
		if tx, ok := parseTransactionLine(line); ok {
			out = append(out, tx)
		}
	}
	return out
}

// findHeaderRow returns the index of a header row within the leading
// lines: one containing at least two of the date/description/amount
// header keywords.
func findHeaderRow(lines []string) int {
	limit := len(lines)
	if limit > headerSearchLines {
		limit = headerSearchLines
	}
	for i := 0; i < limit; i++ {
		lower := strings.ToLower(lines[i])
		hits := 0
		for _, kw := range []string{"date", "description", "amount"} {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits >= 2 {
			return i
		}
	}
	return -1
}

func parseRowCells(cells []string) (RawTransaction, bool) {
	var (
		date      string
		amount    float64
		hasAmount bool
		descParts []string
	)
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if date == "" {
			if raw, ok := patterns.FindDate(cell); ok {
				date = patterns.NormalizeDate(raw)
				continue
			}
		}
		if !hasAmount {
			if v, ok := patterns.ParseAmount(cell); ok {
				amount = v
				hasAmount = true
				continue
			}
		}
		descParts = append(descParts, cell)
	}

	if date == "" || !hasAmount {
		return RawTransaction{}, false
	}
	tx := RawTransaction{
		Date:        date,
		Description: strings.Join(descParts, " "),
		Amount:      amount,
	}
	return tx, validRecord(tx)
}

func parseTransactionLine(line string) (RawTransaction, bool) {
	rawDate, ok := patterns.FindDate(line)
	if !ok {
		return RawTransaction{}, false
	}
	amount, ok := patterns.ParseAmount(line)
	if !ok {
		return RawTransaction{}, false
	}
	tx := RawTransaction{
		Date:        patterns.NormalizeDate(rawDate),
		Description: patterns.CleanDescription(line),
		Amount:      amount,
	}
	return tx, validRecord(tx)
}

// validRecord enforces the record invariants: a nonzero amount and a
// meaningful description.
func validRecord(tx RawTransaction) bool {
	return tx.Amount != 0 && len(tx.Description) > minDescriptionLen
}
