package analysis

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/tomvasile/ledgerscan/internal/render"
)

// LayoutComplexity is the qualitative classification of a document's
// visual structure.
type LayoutComplexity string

const (
	LayoutSimple   LayoutComplexity = "simple"
	LayoutModerate LayoutComplexity = "moderate"
	LayoutComplex  LayoutComplexity = "complex"
	LayoutUnknown  LayoutComplexity = "unknown"
)

// StructureAnalysis describes a document's structure, sampled from its
// first pages. Computed once per distinct content hash and never mutated.
type StructureAnalysis struct {
	PageCount            int              `json:"page_count"`
	FileSize             int              `json:"file_size"`
	HasMetadata          bool             `json:"has_metadata"`
	TextDensity          float64          `json:"text_density"`
	LayoutComplexity     LayoutComplexity `json:"layout_complexity"`
	HasImages            bool             `json:"has_images"`
	HasForms             bool             `json:"has_forms"`
	FontCount            int              `json:"font_count"`
	IsSearchable         bool             `json:"is_searchable"`
	ExtractionConfidence float64          `json:"extraction_confidence"`
}

const (
	analysisSamplePages = 3

	// Thresholds for the layout complexity ladder.
	complexBlockCount  = 10
	complexFontCount   = 5
	moderateFontCount  = 2
	moderateBlockRatio = 3.0

	// Characters per sampled page below which the document counts as
	// text-sparse.
	lowDensityThreshold = 100
)

// Analyzer computes StructureAnalysis values and serves repeats from the
// shared cache.
type Analyzer struct {
	opener render.Opener
	cache  *Cache
}

// NewAnalyzer creates an Analyzer over the given backend and cache.
func NewAnalyzer(opener render.Opener, cache *Cache) *Analyzer {
	return &Analyzer{opener: opener, cache: cache}
}

// Analyze returns the structure analysis for data. Identical content is
// looked up by hash; a miss computes, caches and returns. Analysis never
// fails: unreadable documents produce a degraded default, which is cached
// too so broken content is not re-analyzed on every request.
func (a *Analyzer) Analyze(data []byte) *StructureAnalysis {
	key := ContentHash(data)
	if v, ok := a.cache.Get(key); ok {
		return v.(*StructureAnalysis)
	}

	result := a.compute(data)
	a.cache.Put(key, result)
	return result
}

func (a *Analyzer) compute(data []byte) *StructureAnalysis {
	doc, err := a.opener.Open(data)
	if err != nil {
		slog.Warn("Structure analysis fell back to degraded default", "error", err)
		return degradedAnalysis(len(data))
	}
	defer doc.Close()

	pageCount := doc.PageCount()
	if pageCount == 0 {
		return degradedAnalysis(len(data))
	}

	sampled := pageCount
	if sampled > analysisSamplePages {
		sampled = analysisSamplePages
	}

	fonts := make(map[string]bool)
	var (
		totalTextLen    int
		maxBlocks       int
		totalBlocks     int
		searchablePages int
		hasImages       bool
		hasForms        bool
	)

	for page := 0; page < sampled; page++ {
		if doc.PageHasImages(page) {
			hasImages = true
		}
		if doc.PageHasForms(page) {
			hasForms = true
		}

		spans, err := doc.PageSpans(page)
		if err == nil {
			for _, s := range spans {
				fonts[fontKey(s)] = true
			}
			blocks := countBlocks(spans)
			totalBlocks += blocks
			if blocks > maxBlocks {
				maxBlocks = blocks
			}
		}

		text, terr := doc.PageText(page)
		if terr == nil {
			totalTextLen += len(text)
		}
		// A page is searchable when either engine yields selectable text.
		if (terr == nil && len(text) > 0) || len(spans) > 0 {
			searchablePages++
		}
	}

	density := float64(totalTextLen) / float64(sampled)
	blockRatio := float64(totalBlocks) / float64(sampled)
	searchable := searchablePages == sampled

	complexity := LayoutSimple
	switch {
	case maxBlocks > complexBlockCount || len(fonts) > complexFontCount || hasImages:
		complexity = LayoutComplex
	case len(fonts) > moderateFontCount || blockRatio > moderateBlockRatio:
		complexity = LayoutModerate
	}

	confidence := 0.9
	if !searchable {
		confidence *= 0.6
	}
	if complexity == LayoutComplex {
		confidence *= 0.8
	}
	if density < lowDensityThreshold {
		confidence *= 0.7
	}

	return &StructureAnalysis{
		PageCount:            pageCount,
		FileSize:             len(data),
		HasMetadata:          len(doc.Metadata()) > 0,
		TextDensity:          density,
		LayoutComplexity:     complexity,
		HasImages:            hasImages,
		HasForms:             hasForms,
		FontCount:            len(fonts),
		IsSearchable:         searchable,
		ExtractionConfidence: confidence,
	}
}

func degradedAnalysis(size int) *StructureAnalysis {
	return &StructureAnalysis{
		FileSize:             size,
		LayoutComplexity:     LayoutUnknown,
		ExtractionConfidence: 0.3,
	}
}

// fontKey identifies a distinct (font, size) pair.
func fontKey(s render.Span) string {
	return fmt.Sprintf("%s/%.1f", s.Font, s.FontSize)
}

// countBlocks groups spans into visual rows; a row is the block unit the
// complexity ladder counts.
func countBlocks(spans []render.Span) int {
	rows := make(map[int]bool)
	for _, s := range spans {
		rows[int(math.Round(s.Y/10))] = true
	}
	return len(rows)
}
