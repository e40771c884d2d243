package document

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/tomvasile/ledgerscan/internal/analysis"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		storage     *mockStorage
		extractor   *mockExtractor
		service     *Service
		server      *Server
		auth        BasicAuth
		cache       *analysis.Cache
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		server = NewServerWithMux(service, cache, "test-version", auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		extractor = newMockExtractor()
		cache = analysis.NewCache(10, 0)
		auth = BasicAuth{}
		service = NewService(db, storage, extractor, newMockScanner())
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	Describe("handleListDocuments", func() {
		When("documents exist", func() {
			BeforeEach(func() {
				db.documents["id1"] = &Document{ID: "id1"}
				db.documents["id2"] = &Document{ID: "id2"}
			})

			It("should return status OK", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/documents")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should return all documents", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/documents")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				var docs []*Document
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &docs)).NotTo(HaveOccurred())
				Expect(docs).To(HaveLen(2))
			})

			It("should set Content-Type to application/json", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/documents")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
			})
		})
	})

	Describe("handleUploadDocument", func() {
		var makeMultipartRequest = func(filename string, content []byte) (*http.Response, error) {
			var buf bytes.Buffer
			writer := multipart.NewWriter(&buf)
			part, err := writer.CreateFormFile("file", filename)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write(content)
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.Close()).NotTo(HaveOccurred())

			req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/documents", &buf)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", writer.FormDataContentType())
			return http.DefaultClient.Do(req)
		}

		When("a file is uploaded", func() {
			It("should return status Created with the document", func() {
				resp, err := makeMultipartRequest("statement.pdf", []byte("fake pdf"))
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var doc Document
				Expect(json.NewDecoder(resp.Body).Decode(&doc)).NotTo(HaveOccurred())
				Expect(doc.Result).NotTo(BeNil())
				Expect(doc.Result.TransactionCount).To(Equal(1))
			})
		})

		When("no file is provided", func() {
			It("should return status Bad Request", func() {
				var buf bytes.Buffer
				writer := multipart.NewWriter(&buf)
				Expect(writer.Close()).NotTo(HaveOccurred())

				req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/documents", &buf)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Content-Type", writer.FormDataContentType())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})
	})

	Describe("handleUploadDocumentBase64", func() {
		When("the body is valid", func() {
			It("should return status Created", func() {
				payload := map[string]string{
					"filename":     "statement.pdf",
					"content_type": "application/pdf",
					"data":         base64.StdEncoding.EncodeToString([]byte("fake pdf")),
				}
				body, err := json.Marshal(payload)
				Expect(err).NotTo(HaveOccurred())

				resp, err := http.Post(ghttpServer.URL()+"/api/documents/base64", "application/json", bytes.NewReader(body))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
				resp.Body.Close()
			})
		})

		When("the data field is not base64", func() {
			It("should return status Bad Request", func() {
				body := `{"filename": "x.pdf", "data": "not base64!!"}`
				resp, err := http.Post(ghttpServer.URL()+"/api/documents/base64", "application/json", strings.NewReader(body))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})

		When("the data field is missing", func() {
			It("should return status Bad Request", func() {
				body := `{"filename": "x.pdf"}`
				resp, err := http.Post(ghttpServer.URL()+"/api/documents/base64", "application/json", strings.NewReader(body))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})
	})

	Describe("handleGetDocument", func() {
		When("the document exists", func() {
			BeforeEach(func() {
				db.documents["doc-1"] = &Document{ID: "doc-1"}
			})

			It("should return the document", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/documents/doc-1")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var doc Document
				Expect(json.NewDecoder(resp.Body).Decode(&doc)).NotTo(HaveOccurred())
				Expect(doc.ID).To(Equal("doc-1"))
			})
		})

		When("the document does not exist", func() {
			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/documents/missing")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				resp.Body.Close()
			})
		})
	})

	Describe("handleExportDocument", func() {
		When("the document has a result", func() {
			BeforeEach(func() {
				db.documents["doc-1"] = &Document{
					ID:     "doc-1",
					Result: newMockExtractor().result,
				}
			})

			It("should return an XLSX attachment", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/documents/doc-1/export")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
				Expect(resp.Header.Get("Content-Disposition")).To(ContainSubstring("doc-1.xlsx"))
			})
		})

		When("the document has no result", func() {
			BeforeEach(func() {
				db.documents["doc-1"] = &Document{ID: "doc-1"}
			})

			It("should return status Conflict", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/documents/doc-1/export")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusConflict))
				resp.Body.Close()
			})
		})
	})

	Describe("handleDeleteDocument", func() {
		When("the document exists", func() {
			BeforeEach(func() {
				db.documents["doc-1"] = &Document{ID: "doc-1", Filename: "f.pdf"}
				storage.files["f.pdf"] = []byte("data")
			})

			It("should return status No Content", func() {
				req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/documents/doc-1", nil)
				Expect(err).NotTo(HaveOccurred())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
				resp.Body.Close()
				Expect(db.documents).NotTo(HaveKey("doc-1"))
			})
		})
	})

	Describe("handleHealth", func() {
		It("should return status OK without auth", func() {
			auth = BasicAuth{Username: "user", Password: "pass"}
			setupServer()

			resp, err := http.Get(ghttpServer.URL() + "/health")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()
		})
	})

	Describe("handleStatus", func() {
		It("should report the version and cache counters", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/status")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var status map[string]json.RawMessage
			Expect(json.NewDecoder(resp.Body).Decode(&status)).NotTo(HaveOccurred())
			Expect(status).To(HaveKey("version"))
			Expect(status).To(HaveKey("analysis_cache"))
		})
	})

	Describe("handleIndex", func() {
		It("should serve the HTML interface at the root", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/html"))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("LedgerScan"))
		})
	})

	Describe("authentication", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "pass"}
			setupServer()
		})

		When("credentials are missing", func() {
			It("should return status Unauthorized", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/documents")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				resp.Body.Close()
			})
		})

		When("credentials are valid", func() {
			It("should return status OK", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/documents", nil)
				Expect(err).NotTo(HaveOccurred())
				req.SetBasicAuth("user", "pass")
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})
		})
	})
})
