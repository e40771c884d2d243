package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tomvasile/ledgerscan/internal/extract"
	"github.com/tomvasile/ledgerscan/internal/patterns"
)

// parseStatementJSON parses the JSON response from a vision model
func parseStatementJSON(text string) (*StatementData, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var data StatementData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	for i := range data.Transactions {
		t := &data.Transactions[i]

		t.Date = normalizeScannedDate(t.Date)
		t.Description = strings.TrimSpace(t.Description)
		if t.Description == "" {
			t.Description = "Unknown Transaction"
		}

		// Models sometimes return zero instead of null for the unused side
		if t.WithdrawalAmount != nil && *t.WithdrawalAmount == 0 {
			t.WithdrawalAmount = nil
		}
		if t.DepositAmount != nil && *t.DepositAmount == 0 {
			t.DepositAmount = nil
		}
	}

	return &data, nil
}

// normalizeScannedDate coerces a model-supplied date to ISO form. Models
// are asked for YYYY-MM-DD but do not always comply.
func normalizeScannedDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err == nil {
		return date
	}
	normalized := patterns.NormalizeDate(date)
	if _, err := time.Parse("2006-01-02", normalized); err == nil {
		return normalized
	}
	return time.Now().Format("2006-01-02")
}

// ToTransactionList converts scanned statement data to the pipeline's
// bank-statement result shape.
func (d *StatementData) ToTransactionList() *extract.TransactionList {
	list := &extract.TransactionList{
		AccountNumber: d.AccountNumber,
		Transactions:  make([]extract.BankTransaction, 0, len(d.Transactions)),
	}

	if start, end, ok := splitPeriod(d.Period); ok {
		list.StatementPeriodStart = start
		list.StatementPeriodEnd = end
	}

	for _, t := range d.Transactions {
		list.Transactions = append(list.Transactions, extract.BankTransaction{
			Date:        t.Date,
			Description: t.Description,
			Debit:       t.WithdrawalAmount,
			Credit:      t.DepositAmount,
		})
	}

	return list
}

// splitPeriod splits a "start to end" period string into its halves.
func splitPeriod(period string) (string, string, bool) {
	parts := strings.SplitN(period, " to ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	start := patterns.NormalizeDate(strings.TrimSpace(parts[0]))
	end := patterns.NormalizeDate(strings.TrimSpace(parts[1]))
	return start, end, true
}
