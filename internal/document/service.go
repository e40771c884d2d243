package document

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomvasile/ledgerscan/internal/extract"
	"github.com/tomvasile/ledgerscan/internal/scanning"
)

// scannedBaseConfidence is the structural confidence assigned to results
// produced by a vision model, which bypass layout analysis.
const scannedBaseConfidence = 0.95

// Extractor runs the heuristic pipeline over document bytes
type Extractor interface {
	Extract(ctx context.Context, data []byte, hint extract.DocumentType) (*extract.ExtractionResult, error)
}

// IDGenerator generates unique IDs for documents
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles document operations
type Service struct {
	db          DB
	storage     Storage
	extractor   Extractor
	scanner     scanning.Scanner // optional fallback, may be nil
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, storage Storage, extractor Extractor, scanner scanning.Scanner) *Service {
	return &Service{
		db:          db,
		storage:     storage,
		extractor:   extractor,
		scanner:     scanner,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, storage Storage, extractor Extractor, scanner scanning.Scanner, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		storage:     storage,
		extractor:   extractor,
		scanner:     scanner,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")

	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "document"
	}

	return base + ext
}

// ProcessDocument stores an uploaded document, runs extraction on it and
// saves the result. When the heuristic pipeline fails completely and a
// vision scanner is configured, the scanner is tried before giving up.
func (s *Service) ProcessDocument(ctx context.Context, filename string, data []byte, contentType string, hint extract.DocumentType) (*Document, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	cleanFilename := sanitizeFilename(filename)

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	result, scanned, err := s.extractWithFallback(ctx, filename, data, contentType, hint)
	if err != nil {
		// Clean up the saved file since extraction failed
		s.storage.Delete(savedPath)
		return nil, err
	}

	doc := &Document{
		ID:           id,
		Filename:     savedPath,
		ContentType:  contentType,
		Size:         len(data),
		DocumentType: result.DocumentType,
		Scanned:      scanned,
		Result:       result,
		UploadedAt:   now,
		UpdatedAt:    now,
	}

	if err := s.db.SaveDocument(doc); err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving document to database: %w", err)
	}

	return doc, nil
}

func (s *Service) extractWithFallback(ctx context.Context, filename string, data []byte, contentType string, hint extract.DocumentType) (*extract.ExtractionResult, bool, error) {
	result, err := s.extractor.Extract(ctx, data, hint)
	if err == nil {
		return result, false, nil
	}

	if s.scanner == nil {
		slog.Error("Failed to extract document",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, false, fmt.Errorf("extracting document: %w", err)
	}

	slog.Warn("Heuristic extraction failed, falling back to scanner",
		"filename", filename,
		"error", err,
	)

	statement, scanErr := s.scanner.ScanStatement(data, contentType)
	if scanErr != nil {
		slog.Error("Failed to scan document",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", scanErr,
		)
		return nil, false, fmt.Errorf("extracting document: %w: scanning fallback: %w", err, scanErr)
	}

	raw := statement.ToTransactionList().RawTransactions()
	metrics, confidence := extract.ScoreQuality(raw, scannedBaseConfidence)

	return &extract.ExtractionResult{
		Transactions:         raw,
		TransactionCount:     len(raw),
		DocumentType:         extract.DocTypeBankStatement,
		ExtractionConfidence: confidence,
		QualityMetrics:       metrics,
	}, true, nil
}

// GetDocument retrieves a document by ID
func (s *Service) GetDocument(id string) (*Document, error) {
	doc, err := s.db.GetDocument(id)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns all documents
func (s *Service) ListDocuments() ([]*Document, error) {
	docs, err := s.db.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document and its file
func (s *Service) DeleteDocument(id string) error {
	doc, err := s.db.GetDocument(id)
	if err != nil {
		return fmt.Errorf("getting document for deletion: %w", err)
	}

	if err := s.storage.Delete(doc.Filename); err != nil {
		// Log error but continue with database deletion
		slog.Warn("Failed to delete file", "filename", doc.Filename, "error", err)
	}

	if err := s.db.DeleteDocument(id); err != nil {
		return fmt.Errorf("deleting document from database: %w", err)
	}
	return nil
}

// GetDocumentFile retrieves the file data for a document
func (s *Service) GetDocumentFile(id string) ([]byte, string, error) {
	doc, err := s.db.GetDocument(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting document: %w", err)
	}

	data, err := s.storage.Get(doc.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting document file: %w", err)
	}

	return data, doc.ContentType, nil
}
