package scanning

// ScannedTransaction is a single transaction extracted by a vision model
type ScannedTransaction struct {
	Date             string   `json:"date"` // ISO 8601 format
	Description      string   `json:"description"`
	WithdrawalAmount *float64 `json:"withdrawal_amount,omitempty"`
	DepositAmount    *float64 `json:"deposit_amount,omitempty"`
}

// StatementData contains transactions extracted from a scanned statement
type StatementData struct {
	AccountNumber string               `json:"account_number,omitempty"`
	Period        string               `json:"period,omitempty"`
	Transactions  []ScannedTransaction `json:"transactions"`
}

// Scanner defines the interface for statement scanning operations
type Scanner interface {
	// ScanStatement analyzes a statement image/PDF and extracts transactions
	ScanStatement(documentData []byte, contentType string) (*StatementData, error)
	// Close closes the scanner and releases resources
	Close() error
}
