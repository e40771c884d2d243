package document

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tomvasile/ledgerscan/internal/extract"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveDocument", func() {
		var (
			doc *Document
			err error
		)

		BeforeEach(func() {
			doc = &Document{
				ID:           "test-id",
				Filename:     "test.pdf",
				ContentType:  "application/pdf",
				Size:         1024,
				DocumentType: extract.DocTypeBankStatement,
				Result: &extract.ExtractionResult{
					Transactions: []extract.RawTransaction{
						{Date: "2024-01-15", Description: "Coffee Shop", Amount: -4.50},
					},
					TransactionCount: 1,
					DocumentType:     extract.DocTypeBankStatement,
				},
				UploadedAt: time.Now(),
				UpdatedAt:  time.Now(),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveDocument(doc)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should save the document to the database", func() {
				saved, getErr := db.GetDocument("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ID).To(Equal("test-id"))
			})

			It("should round-trip the extraction result", func() {
				saved, getErr := db.GetDocument("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Result).NotTo(BeNil())
				Expect(saved.Result.Transactions).To(HaveLen(1))
				Expect(saved.Result.Transactions[0].Amount).To(Equal(-4.50))
			})
		})
	})

	Describe("GetDocument", func() {
		When("the document does not exist", func() {
			It("returns an error", func() {
				_, err := db.GetDocument("missing")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("ListDocuments", func() {
		When("documents exist", func() {
			BeforeEach(func() {
				Expect(db.SaveDocument(&Document{ID: "id1"})).NotTo(HaveOccurred())
				Expect(db.SaveDocument(&Document{ID: "id2"})).NotTo(HaveOccurred())
			})

			It("returns all documents", func() {
				docs, err := db.ListDocuments()
				Expect(err).NotTo(HaveOccurred())
				Expect(docs).To(HaveLen(2))
			})
		})

		When("no documents exist", func() {
			It("returns an empty slice", func() {
				docs, err := db.ListDocuments()
				Expect(err).NotTo(HaveOccurred())
				Expect(docs).To(BeEmpty())
			})
		})
	})

	Describe("DeleteDocument", func() {
		BeforeEach(func() {
			Expect(db.SaveDocument(&Document{ID: "test-id"})).NotTo(HaveOccurred())
		})

		It("removes the document", func() {
			Expect(db.DeleteDocument("test-id")).NotTo(HaveOccurred())
			_, err := db.GetDocument("test-id")
			Expect(err).To(HaveOccurred())
		})
	})
})
