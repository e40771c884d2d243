package render

import (
	"bytes"
	"fmt"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// PDFOpener opens PDF bytes using two engines: MuPDF (go-fitz) for plain
// page text and metadata, and a pure-Go reader (ledongthuc/pdf) for
// positioned spans, fonts and resource inspection. Either engine may fail
// on a damaged file; the document stays usable as long as one of them
// opens, and the missing engine's methods report errors per page.
type PDFOpener struct{}

// Open opens data as a PDF.
func (PDFOpener) Open(data []byte) (Document, error) {
	doc := &pdfDocument{}

	if fz, err := fitz.NewFromMemory(data); err == nil {
		doc.fz = fz
	}
	if rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		doc.rdr = rdr
	}

	if doc.fz == nil && doc.rdr == nil {
		return nil, fmt.Errorf("opening pdf: no engine could read the document")
	}
	return doc, nil
}

type pdfDocument struct {
	fz  *fitz.Document
	rdr *pdf.Reader
}

func (d *pdfDocument) PageCount() int {
	if d.fz != nil {
		return d.fz.NumPage()
	}
	return d.rdr.NumPage()
}

func (d *pdfDocument) PageText(page int) (string, error) {
	if d.fz == nil {
		return "", fmt.Errorf("page %d: text engine unavailable", page)
	}
	text, err := d.fz.Text(page)
	if err != nil {
		return "", fmt.Errorf("page %d: extracting text: %w", page, err)
	}
	return text, nil
}

func (d *pdfDocument) PageTextAlt(page int) (string, error) {
	if d.rdr == nil {
		return "", fmt.Errorf("page %d: alternate text engine unavailable", page)
	}
	if page < 0 || page >= d.rdr.NumPage() {
		return "", fmt.Errorf("page %d: out of range", page)
	}
	p := d.rdr.Page(page + 1)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d: missing page object", page)
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d: extracting alternate text: %w", page, err)
	}
	return text, nil
}

func (d *pdfDocument) PageSpans(page int) (spans []Span, err error) {
	if d.rdr == nil {
		return nil, fmt.Errorf("page %d: span engine unavailable", page)
	}
	if page < 0 || page >= d.rdr.NumPage() {
		return nil, fmt.Errorf("page %d: out of range", page)
	}
	// The content-stream parser panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			spans = nil
			err = fmt.Errorf("page %d: reading content: %v", page, r)
		}
	}()

	p := d.rdr.Page(page + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing page object", page)
	}
	content := p.Content()
	spans = make([]Span, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		spans = append(spans, Span{
			Text:     t.S,
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			Font:     t.Font,
			FontSize: t.FontSize,
		})
	}
	return spans, nil
}

func (d *pdfDocument) PageHasImages(page int) bool {
	v, ok := d.pageValue(page)
	if !ok {
		return false
	}
	xobjects := v.Key("Resources").Key("XObject")
	if xobjects.IsNull() {
		return false
	}
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			return true
		}
	}
	return false
}

func (d *pdfDocument) PageHasForms(page int) bool {
	v, ok := d.pageValue(page)
	if !ok {
		return false
	}
	annots := v.Key("Annots")
	if annots.IsNull() {
		return false
	}
	for i := 0; i < annots.Len(); i++ {
		if annots.Index(i).Key("Subtype").Name() == "Widget" {
			return true
		}
	}
	return false
}

func (d *pdfDocument) pageValue(page int) (v pdf.Value, ok bool) {
	if d.rdr == nil || page < 0 || page >= d.rdr.NumPage() {
		return pdf.Value{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	p := d.rdr.Page(page + 1)
	if p.V.IsNull() {
		return pdf.Value{}, false
	}
	return p.V, true
}

func (d *pdfDocument) Metadata() map[string]string {
	if d.fz == nil {
		return nil
	}
	meta := map[string]string{}
	for k, v := range d.fz.Metadata() {
		if v != "" {
			meta[k] = v
		}
	}
	return meta
}

func (d *pdfDocument) Close() error {
	if d.fz != nil {
		return d.fz.Close()
	}
	return nil
}
