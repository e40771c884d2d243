package extract

import (
	"regexp"
	"strings"

	"github.com/tomvasile/ledgerscan/internal/patterns"
)

// Debit/credit cue sets. Sign resolution follows a fixed precedence:
// explicit minus sign, primary debit keywords, primary credit keywords,
// secondary debit context keywords, then default to credit.
var (
	debitKeywords = []string{
		"debit", "withdrawal", "fee", "charge", "payment", "purchase",
	}
	creditKeywords = []string{
		"credit", "deposit", "interest", "refund", "transfer in",
	}
	debitContextKeywords = []string{
		"atm", "pos", "transfer out", "bill",
	}
)

var accountNumberRe = regexp.MustCompile(`(?i)account\s*(?:number|no\.?|#)?[:\s]+([\d][\d\- ]{4,}\d)`)

// ExtractBankTransactions parses statement text line by line. A line
// becomes a transaction when it carries both a date and an amount; the
// amount lands in the debit or credit column per the cue precedence.
func ExtractBankTransactions(text string) *TransactionList {
	list := &TransactionList{}

	for _, line := range splitLines(text) {
		if list.AccountNumber == "" {
			if m := accountNumberRe.FindStringSubmatch(line); m != nil {
				list.AccountNumber = strings.TrimSpace(m[1])
			}
		}

		rawDate, ok := patterns.FindDate(line)
		if !ok {
			continue
		}
		amount, ok := patterns.ParseAmount(line)
		if !ok || amount == 0 {
			continue
		}

		desc := patterns.CleanDescription(line)
		if desc == "" {
			continue
		}

		tx := BankTransaction{
			Date:        patterns.NormalizeDate(rawDate),
			Description: desc,
		}
		magnitude := amount
		if magnitude < 0 {
			magnitude = -magnitude
		}
		if isDebitLine(line, amount) {
			tx.Debit = ptr(magnitude)
		} else {
			tx.Credit = ptr(magnitude)
		}
		list.Transactions = append(list.Transactions, tx)
	}

	// TODO: parse the statement period and opening/closing balances from
	// the header block above the transaction table.
	return list
}

// isDebitLine applies the documented cue precedence to decide which
// column the amount belongs to.
func isDebitLine(line string, amount float64) bool {
	if amount < 0 {
		return true
	}
	lower := strings.ToLower(line)
	if containsAny(lower, debitKeywords) {
		return true
	}
	if containsAny(lower, creditKeywords) {
		return false
	}
	return containsAny(lower, debitContextKeywords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
