package document

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/tomvasile/ledgerscan/internal/export"
	"github.com/tomvasile/ledgerscan/internal/extract"
)

// maxUploadSize caps uploads at 50MB to handle high-resolution scans
const maxUploadSize = int64(50 << 20)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonError writes a JSON error body with the given status
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// typeHint reads the optional document type hint from a request
func typeHint(value string) extract.DocumentType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "bank_statement":
		return extract.DocTypeBankStatement
	case "rideshare":
		return extract.DocTypeRideshare
	default:
		return extract.DocTypeGeneral
	}
}

// contentTypeFor guesses a content type from a filename when the header
// did not carry one
func contentTypeFor(filename, declared string) string {
	contentType := strings.ToLower(strings.TrimSpace(declared))
	if contentType != "" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleListDocuments returns a list of all documents
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.service.ListDocuments()
	if err != nil {
		slog.Error("Error listing documents", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(docs); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleUploadDocument handles multipart document upload
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "File is too large. Maximum size is 50MB."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if err.Error() == "http: no such file" {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		jsonError(w, "File is too large. Maximum size is 50MB.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := contentTypeFor(header.Filename, header.Header.Get("Content-Type"))
	hint := typeHint(r.FormValue("document_type"))

	doc, err := s.service.ProcessDocument(r.Context(), header.Filename, data, contentType, hint)
	if err != nil {
		slog.Error("Error processing document", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleUploadDocumentBase64 handles JSON uploads with base64 file content
func (s *Server) handleUploadDocumentBase64(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename     string `json:"filename"`
		ContentType  string `json:"content_type"`
		DocumentType string `json:"document_type"`
		Data         string `json:"data"`
	}

	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Data == "" {
		jsonError(w, "Field 'data' is required", http.StatusBadRequest)
		return
	}
	if req.Filename == "" {
		req.Filename = "document"
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		jsonError(w, "Field 'data' is not valid base64", http.StatusBadRequest)
		return
	}

	contentType := contentTypeFor(req.Filename, req.ContentType)
	hint := typeHint(req.DocumentType)

	doc, err := s.service.ProcessDocument(r.Context(), req.Filename, data, contentType, hint)
	if err != nil {
		slog.Error("Error processing document", "filename", req.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetDocument returns a single document with its extraction result
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Document ID required", http.StatusBadRequest)
		return
	}
	doc, err := s.service.GetDocument(id)
	if err != nil {
		corsError(w, "Document not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleGetDocumentFile returns the original file for a document
func (s *Server) handleGetDocumentFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Document ID required", http.StatusBadRequest)
		return
	}
	data, contentType, err := s.service.GetDocumentFile(id)
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleExportDocument returns a document's transactions as an XLSX workbook
func (s *Server) handleExportDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Document ID required", http.StatusBadRequest)
		return
	}
	doc, err := s.service.GetDocument(id)
	if err != nil {
		corsError(w, "Document not found", http.StatusNotFound)
		return
	}
	if doc.Result == nil {
		corsError(w, "Document has no extraction result", http.StatusConflict)
		return
	}

	data, err := export.Workbook(doc.Result)
	if err != nil {
		slog.Error("Error exporting document", "id", id, "error", err)
		corsError(w, "Error exporting document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, id))
	w.Write(data)
}

// handleDeleteDocument deletes a document
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Document ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteDocument(id); err != nil {
		corsError(w, "Error deleting document", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleHealth is the liveness endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleStatus reports the version and analysis cache counters
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"version": s.version,
	}
	if s.cache != nil {
		status["analysis_cache"] = s.cache.Stats()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
