// Package extraction obtains best-effort text from document bytes. It
// samples pages on large documents, walks a ladder of per-page fallback
// tiers, and repairs corrupted byte content within a bounded attempt
// budget. A single unreadable page never fails the call; only a document
// that yields no text at all does.
package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/tomvasile/ledgerscan/internal/render"
)

const (
	// maxTextLen bounds accumulated text to keep regex cost and memory
	// flat on pathological documents.
	maxTextLen = 100_000

	// samplePageThreshold is the page count above which only a sample of
	// pages is extracted.
	samplePageThreshold = 10

	// maxRepairAttempts bounds the repair ladder.
	maxRepairAttempts = 3

	// rowTolerance buckets span Y coordinates so jittered baselines still
	// land on the same output line.
	rowTolerance = 10.0
)

// Error is the typed failure returned when a document yields no text
// after the repair budget is exhausted.
type Error struct {
	Attempts int
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("text extraction failed after %d repair attempts: %v", e.Attempts, e.Cause)
	}
	return fmt.Sprintf("text extraction failed after %d repair attempts: document yielded no text", e.Attempts)
}

func (e *Error) Unwrap() error { return e.Cause }

// TextExtractor is the robustness layer over a render.Opener.
type TextExtractor struct {
	opener render.Opener
}

// NewTextExtractor creates a TextExtractor using the given backend.
func NewTextExtractor(opener render.Opener) *TextExtractor {
	return &TextExtractor{opener: opener}
}

// ExtractText returns the best-effort text content and total page count
// of the document. Repair strategies are applied in a fixed order, one
// per retry, until text is obtained or the budget runs out.
func (e *TextExtractor) ExtractText(ctx context.Context, data []byte) (string, int, error) {
	defer reclaimMemory()

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		text, pages, err := e.extractOnce(ctx, data)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, pages, nil
		}
		if err != nil {
			lastErr = err
		}

		if attempt >= maxRepairAttempts {
			return "", 0, &Error{Attempts: attempt, Cause: lastErr}
		}

		repaired, changed := repairContent(data, attempt)
		if changed {
			slog.Warn("Retrying extraction with repaired content",
				"attempt", attempt+1, "strategy", repairStrategyName(attempt))
		}
		data = repaired
	}
}

// SamplePages selects the pages to extract: everything for small
// documents, otherwise the first three pages, two around the midpoint
// and the last two, deduplicated and sorted ascending.
func SamplePages(pageCount int) []int {
	if pageCount <= samplePageThreshold {
		pages := make([]int, pageCount)
		for i := range pages {
			pages[i] = i
		}
		return pages
	}

	mid := pageCount / 2
	candidates := []int{0, 1, 2, mid - 1, mid, pageCount - 2, pageCount - 1}
	seen := make(map[int]bool, len(candidates))
	var pages []int
	for _, p := range candidates {
		if p < 0 || p >= pageCount || seen[p] {
			continue
		}
		seen[p] = true
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

func (e *TextExtractor) extractOnce(ctx context.Context, data []byte) (string, int, error) {
	doc, err := e.opener.Open(data)
	if err != nil {
		return "", 0, fmt.Errorf("opening document: %w", err)
	}
	defer doc.Close()

	pageCount := doc.PageCount()
	if pageCount == 0 {
		return "", 0, fmt.Errorf("document has no pages")
	}

	var sb strings.Builder
	for _, page := range SamplePages(pageCount) {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		text := e.extractPage(doc, page)
		if text == "" {
			slog.Warn("Page yielded no text, skipping", "page", page)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		if sb.Len() > maxTextLen {
			slog.Info("Text ceiling reached, stopping early",
				"page", page, "length", sb.Len())
			break
		}
	}
	return sb.String(), pageCount, nil
}

// extractPage walks the per-page fallback ladder: layout-aware row
// reconstruction, plain text, alternate-engine plain text, and finally a
// raw concatenation of whatever spans exist. Failures are logged and the
// next tier is tried.
func (e *TextExtractor) extractPage(doc render.Document, page int) string {
	spans, err := doc.PageSpans(page)
	if err == nil && len(spans) > 0 {
		if text := reconstructRows(spans); strings.TrimSpace(text) != "" {
			return text
		}
	} else if err != nil {
		slog.Debug("Span extraction failed", "page", page, "error", err)
	}

	if text, err := doc.PageText(page); err == nil && strings.TrimSpace(text) != "" {
		return text
	} else if err != nil {
		slog.Debug("Plain text extraction failed", "page", page, "error", err)
	}

	if text, err := doc.PageTextAlt(page); err == nil && strings.TrimSpace(text) != "" {
		return text
	} else if err != nil {
		slog.Debug("Alternate text extraction failed", "page", page, "error", err)
	}

	// Last resort: stitch span strings together in stream order.
	if len(spans) > 0 {
		parts := make([]string, 0, len(spans))
		for _, s := range spans {
			if t := strings.TrimSpace(s.Text); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// reconstructRows rebuilds page text from positioned spans: spans are
// grouped into rows by bucketed Y coordinate, rows are emitted top to
// bottom, and spans within a row left to right. Column alignment is
// preserved by separating row cells with double spaces so downstream
// table detection still sees the gaps.
func reconstructRows(spans []render.Span) string {
	rows := make(map[int][]render.Span)
	for _, s := range spans {
		bucket := int(math.Round(s.Y / rowTolerance))
		rows[bucket] = append(rows[bucket], s)
	}

	buckets := make([]int, 0, len(rows))
	for b := range rows {
		buckets = append(buckets, b)
	}
	// PDF Y grows upward, so higher buckets render first.
	sort.Sort(sort.Reverse(sort.IntSlice(buckets)))

	var sb strings.Builder
	for _, b := range buckets {
		row := rows[b]
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })
		for i, s := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(strings.TrimSpace(s.Text))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// reclaimMemory forces a collection pass after processing so large batch
// workloads do not accumulate resident pages.
func reclaimMemory() {
	runtime.GC()
	debug.FreeOSMemory()
}
