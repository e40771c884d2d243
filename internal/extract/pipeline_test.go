package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tomvasile/ledgerscan/internal/analysis"
	"github.com/tomvasile/ledgerscan/internal/extraction"
	"github.com/tomvasile/ledgerscan/internal/render"
)

type fakeDocument struct {
	pages []string
	meta  map[string]string
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) PageText(page int) (string, error) {
	if page < 0 || page >= len(d.pages) {
		return "", fmt.Errorf("page %d out of range", page)
	}
	return d.pages[page], nil
}

func (d *fakeDocument) PageTextAlt(page int) (string, error) { return "", nil }

func (d *fakeDocument) PageSpans(page int) ([]render.Span, error) { return nil, nil }

func (d *fakeDocument) PageHasImages(page int) bool { return false }

func (d *fakeDocument) PageHasForms(page int) bool { return false }

func (d *fakeDocument) Metadata() map[string]string { return d.meta }

func (d *fakeDocument) Close() error { return nil }

type fakeOpener struct {
	pages []string
	err   error
}

func (o *fakeOpener) Open(data []byte) (render.Document, error) {
	if o.err != nil {
		return nil, o.err
	}
	return &fakeDocument{pages: o.pages, meta: map[string]string{"Producer": "test"}}, nil
}

var _ = Describe("Pipeline", func() {
	var (
		opener   *fakeOpener
		pipeline *Pipeline
		data     []byte
		hint     DocumentType
	)

	BeforeEach(func() {
		opener = &fakeOpener{}
		pipeline = NewPipeline(opener, analysis.NewCache(16, 1<<30))
		data = []byte("%PDF-1.7 statement bytes")
		hint = DocTypeGeneral
	})

	Describe("Extract", func() {
		var (
			result *ExtractionResult
			err    error
		)

		JustBeforeEach(func() {
			result, err = pipeline.Extract(context.Background(), data, hint)
		})

		When("the document is a readable bank statement", func() {
			BeforeEach(func() {
				opener.pages = []string{strings.Join([]string{
					"Account Statement",
					"Account Number: 1234-5678-90",
					"balance brought forward",
					"01/02/2024 Deposit payroll $1,500.00",
					"02/02/2024 Purchase grocery $45.00",
				}, "\n")}
			})

			It("returns a fully-formed result", func() {
				Expect(err).ToNot(HaveOccurred())
				Expect(result.DocumentType).To(Equal(DocTypeBankStatement))
				Expect(result.PageCount).To(Equal(1))
				Expect(result.TransactionCount).To(Equal(2))
			})

			It("signs the flattened transactions", func() {
				Expect(err).ToNot(HaveOccurred())
				Expect(result.Transactions).To(Equal([]RawTransaction{
					{Date: "2024-02-01", Description: "Deposit payroll", Amount: 1500.00},
					{Date: "2024-02-02", Description: "Purchase grocery", Amount: -45.00},
				}))
			})

			It("blends the structure confidence into the score", func() {
				Expect(err).ToNot(HaveOccurred())
				// Clean single-page text scores 0.9 structurally and the
				// record signals are all perfect.
				Expect(result.ExtractionConfidence).To(BeNumerically("~", 0.3*0.9+0.7, 1e-9))
				Expect(result.QualityMetrics.DateValidity).To(Equal(1.0))
			})
		})

		When("the document yields records of no recognizable type", func() {
			BeforeEach(func() {
				opener.pages = []string{"01/02/2024 Market stall $12.00"}
			})

			It("classifies as general and still extracts", func() {
				Expect(err).ToNot(HaveOccurred())
				Expect(result.DocumentType).To(Equal(DocTypeGeneral))
				Expect(result.Transactions).To(HaveLen(1))
			})
		})

		When("the document yields no transactions at all", func() {
			BeforeEach(func() {
				opener.pages = []string{"quarterly newsletter, no figures enclosed"}
			})

			It("returns an empty result at floor confidence, not an error", func() {
				Expect(err).ToNot(HaveOccurred())
				Expect(result.Transactions).To(BeEmpty())
				Expect(result.ExtractionConfidence).To(Equal(0.1))
			})
		})

		When("the backend cannot open the document", func() {
			BeforeEach(func() {
				opener.err = errors.New("malformed xref")
			})

			It("surfaces the typed extraction error", func() {
				Expect(result).To(BeNil())
				var extErr *extraction.Error
				Expect(errors.As(err, &extErr)).To(BeTrue())
				Expect(extErr.Attempts).To(Equal(3))
			})
		})
	})

	Describe("ExtractStructured", func() {
		BeforeEach(func() {
			opener.pages = []string{strings.Join([]string{
				"Account Statement",
				"Account Number: 1234-5678-90",
				"balance brought forward",
				"01/02/2024 Deposit payroll $1,500.00",
			}, "\n")}
		})

		It("returns the type-specific shape", func() {
			records, docType, err := pipeline.ExtractStructured(context.Background(), data, hint)
			Expect(err).ToNot(HaveOccurred())
			Expect(docType).To(Equal(DocTypeBankStatement))

			list, ok := records.(*TransactionList)
			Expect(ok).To(BeTrue())
			Expect(list.AccountNumber).To(Equal("1234-5678-90"))
			Expect(list.Transactions).To(HaveLen(1))
			Expect(list.Transactions[0].Credit).To(HaveValue(Equal(1500.00)))
		})
	})

	Describe("Analysis", func() {
		BeforeEach(func() {
			opener.pages = []string{strings.Repeat("ledger line with plenty of text\n", 10)}
		})

		It("serves repeated content from the cache", func() {
			first := pipeline.Analysis(data)
			second := pipeline.Analysis(data)
			Expect(second).To(BeIdenticalTo(first))
			Expect(first.IsSearchable).To(BeTrue())
		})
	})
})
