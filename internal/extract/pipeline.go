package extract

import (
	"context"
	"log/slog"

	"github.com/tomvasile/ledgerscan/internal/analysis"
	"github.com/tomvasile/ledgerscan/internal/extraction"
	"github.com/tomvasile/ledgerscan/internal/render"
)

// Pipeline is the extraction driver: document bytes in, classified and
// scored transaction records out. Stateless per call; the only shared
// mutable state is the analysis cache, which is safe for concurrent use.
type Pipeline struct {
	text     *extraction.TextExtractor
	analyzer *analysis.Analyzer
}

// NewPipeline wires the pipeline over a render backend and a shared
// analysis cache.
func NewPipeline(opener render.Opener, cache *analysis.Cache) *Pipeline {
	return &Pipeline{
		text:     extraction.NewTextExtractor(opener),
		analyzer: analysis.NewAnalyzer(opener, cache),
	}
}

// Extract runs the full pipeline. The hint is advisory; the classifier
// may override it. The call either returns a fully-formed result —
// possibly with zero transactions and low confidence — or a single
// typed error describing total extraction failure, never both.
func (p *Pipeline) Extract(ctx context.Context, data []byte, hint DocumentType) (*ExtractionResult, error) {
	structure := p.analyzer.Analyze(data)

	text, pageCount, err := p.text.ExtractText(ctx, data)
	if err != nil {
		return nil, err
	}

	records, docType := p.extractRecords(text, hint)
	raw := records.RawTransactions()
	metrics, confidence := ScoreQuality(raw, structure.ExtractionConfidence)

	slog.Info("Extraction complete",
		"document_type", docType,
		"pages", pageCount,
		"transactions", len(raw),
		"confidence", confidence,
	)

	return &ExtractionResult{
		Transactions:         raw,
		PageCount:            pageCount,
		TransactionCount:     len(raw),
		DocumentType:         docType,
		ExtractionConfidence: confidence,
		QualityMetrics:       metrics,
	}, nil
}

// ExtractStructured runs the pipeline but returns the type-specific
// record shape instead of the flattened result.
func (p *Pipeline) ExtractStructured(ctx context.Context, data []byte, hint DocumentType) (RecordSet, DocumentType, error) {
	text, _, err := p.text.ExtractText(ctx, data)
	if err != nil {
		return nil, "", err
	}
	records, docType := p.extractRecords(text, hint)
	return records, docType, nil
}

// Analysis exposes the structure analysis for a document, served from
// the shared cache when the content was seen before.
func (p *Pipeline) Analysis(data []byte) *analysis.StructureAnalysis {
	return p.analyzer.Analyze(data)
}

func (p *Pipeline) extractRecords(text string, hint DocumentType) (RecordSet, DocumentType) {
	docType := ClassifyWithHint(text, hint)
	switch docType {
	case DocTypeBankStatement:
		return ExtractBankTransactions(text), docType
	case DocTypeRideshare:
		return ExtractRideshareTrips(text), docType
	default:
		return ExtractGeneralTransactions(text), docType
	}
}
