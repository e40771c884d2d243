// Package extract turns extracted document text into typed transaction
// records: classification, the per-type extractors, quality scoring and
// the pipeline driver that ties them together.
package extract

import (
	"fmt"
	"strings"
)

// RawTransaction is the canonical record shape every result converges
// to: a dated, described, signed amount. Immutable once built.
type RawTransaction struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// BankTransaction is one line of a bank statement. At most one of Debit
// and Credit is expected to be populated; the extractor enforces this by
// construction but the shape allows both for lossless round-tripping.
type BankTransaction struct {
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Debit       *float64 `json:"debit,omitempty"`
	Credit      *float64 `json:"credit,omitempty"`
	Balance     *float64 `json:"balance,omitempty"`
	Reference   string   `json:"reference,omitempty"`
}

// TransactionList is the bank-statement result shape.
type TransactionList struct {
	Transactions         []BankTransaction `json:"transactions"`
	AccountNumber        string            `json:"account_number,omitempty"`
	StatementPeriodStart string            `json:"statement_period_start,omitempty"`
	StatementPeriodEnd   string            `json:"statement_period_end,omitempty"`
	OpeningBalance       *float64          `json:"opening_balance,omitempty"`
	ClosingBalance       *float64          `json:"closing_balance,omitempty"`
}

// RideshareTrip is a single trip from an earnings summary.
type RideshareTrip struct {
	Date            string   `json:"date"`
	Fare            float64  `json:"fare"`
	Tips            *float64 `json:"tips,omitempty"`
	Tolls           *float64 `json:"tolls,omitempty"`
	Distance        *float64 `json:"distance,omitempty"`
	PickupLocation  string   `json:"pickup_location,omitempty"`
	DropoffLocation string   `json:"dropoff_location,omitempty"`
	TotalEarnings   float64  `json:"total_earnings"`
}

// RideshareTaxSummary is the rideshare result shape. The totals are sums
// over the trips; optional totals are omitted when their sum is zero.
type RideshareTaxSummary struct {
	Trips         []RideshareTrip `json:"trips"`
	TotalTrips    int             `json:"total_trips"`
	TotalDistance *float64        `json:"total_distance,omitempty"`
	TotalEarnings float64         `json:"total_earnings"`
	TotalTips     *float64        `json:"total_tips,omitempty"`
	TotalTolls    *float64        `json:"total_tolls,omitempty"`
}

// GenericTransactions is the general-document result shape.
type GenericTransactions struct {
	Transactions []RawTransaction `json:"transactions"`
}

// RecordSet is the closed variant over the three result shapes. Each
// case carries a total conversion to the canonical RawTransaction form;
// no caller ever needs runtime type inspection beyond this interface.
type RecordSet interface {
	RawTransactions() []RawTransaction
}

// RawTransactions converts statement lines to signed amounts: credits
// positive, debits negative. Lines with neither populated convert to a
// zero amount, which downstream scoring treats as invalid.
func (l *TransactionList) RawTransactions() []RawTransaction {
	out := make([]RawTransaction, 0, len(l.Transactions))
	for _, t := range l.Transactions {
		var amount float64
		if t.Credit != nil {
			amount += *t.Credit
		}
		if t.Debit != nil {
			amount -= *t.Debit
		}
		out = append(out, RawTransaction{
			Date:        t.Date,
			Description: t.Description,
			Amount:      amount,
		})
	}
	return out
}

// RawTransactions converts each trip to one earnings record.
func (s *RideshareTaxSummary) RawTransactions() []RawTransaction {
	out := make([]RawTransaction, 0, len(s.Trips))
	for _, t := range s.Trips {
		desc := "Rideshare trip"
		if t.PickupLocation != "" && t.DropoffLocation != "" {
			desc = fmt.Sprintf("Rideshare trip %s to %s", t.PickupLocation, t.DropoffLocation)
		}
		out = append(out, RawTransaction{
			Date:        t.Date,
			Description: desc,
			Amount:      t.TotalEarnings,
		})
	}
	return out
}

// RawTransactions returns the records unchanged.
func (g *GenericTransactions) RawTransactions() []RawTransaction {
	return g.Transactions
}

// QualityMetrics are the component sub-scores behind a confidence value.
type QualityMetrics struct {
	DataCompleteness   float64 `json:"data_completeness"`
	DateValidity       float64 `json:"date_validity"`
	AmountValidity     float64 `json:"amount_validity"`
	DescriptionQuality float64 `json:"description_quality"`
	ConsistencyScore   float64 `json:"consistency_score"`
}

// ExtractionResult is the terminal output of the pipeline.
type ExtractionResult struct {
	Transactions         []RawTransaction `json:"transactions"`
	PageCount            int              `json:"page_count"`
	TransactionCount     int              `json:"transaction_count"`
	DocumentType         DocumentType     `json:"document_type"`
	ExtractionConfidence float64          `json:"extraction_confidence"`
	QualityMetrics       QualityMetrics   `json:"quality_metrics"`
}

// splitLines returns the non-empty, trimmed lines of text.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func ptr(v float64) *float64 { return &v }

// optionalSum returns nil when the sum is zero, matching the summary
// shape's omit-when-absent contract.
func optionalSum(sum float64) *float64 {
	if sum == 0 {
		return nil
	}
	return ptr(sum)
}
