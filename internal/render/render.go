// Package render defines the page-rendering capability the extraction
// core consumes. The core never touches a PDF library directly; it sees
// documents as a page count plus per-page text in several modes, and
// positioned text spans for layout-aware reconstruction.
package render

// Span is one positioned run of text on a page. Coordinates follow the
// PDF convention: origin at the bottom-left, Y increasing upward.
type Span struct {
	Text     string
	X, Y, W  float64
	Font     string
	FontSize float64
}

// Document is an open document handle. Page numbers are zero-based.
type Document interface {
	// PageCount returns the total number of pages.
	PageCount() int

	// PageText returns the primary plain-text rendering of a page.
	PageText(page int) (string, error)

	// PageTextAlt returns an alternate plain-text rendering, produced by
	// a different engine than PageText. Used as a fallback tier.
	PageTextAlt(page int) (string, error)

	// PageSpans returns the positioned text spans of a page.
	PageSpans(page int) ([]Span, error)

	// PageHasImages reports whether the page references image XObjects.
	PageHasImages(page int) bool

	// PageHasForms reports whether the page carries form widgets.
	PageHasForms(page int) bool

	// Metadata returns document-level metadata key/value pairs.
	Metadata() map[string]string

	// Close releases the underlying resources.
	Close() error
}

// Opener opens raw document bytes into a Document.
type Opener interface {
	Open(data []byte) (Document, error)
}
