// Package document is the serving layer: uploaded files are stored,
// run through the extraction pipeline (with an optional vision-model
// fallback) and persisted with their results.
package document

import (
	"time"

	"github.com/tomvasile/ledgerscan/internal/extract"
)

// Document represents an uploaded document and its extraction result
type Document struct {
	ID           string                    `json:"id"`
	Filename     string                    `json:"filename"`
	ContentType  string                    `json:"content_type"`
	Size         int                       `json:"size"`
	DocumentType extract.DocumentType      `json:"document_type"`
	Scanned      bool                      `json:"scanned,omitempty"` // true when a vision model produced the result
	Result       *extract.ExtractionResult `json:"result"`
	UploadedAt   time.Time                 `json:"uploaded_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}
