package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/Lllllllleong/vetreportflow/internal/models"
	"github.com/Lllllllleong/vetreportflow/internal/ocr"
	"github.com/Lllllllleong/vetreportflow/internal/services"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead allows for form boundaries and headers around the file.
const multipartOverhead = 1 << 20

type handler struct {
	resolve       ServiceResolver
	maxFileSizeMB int
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// upload handles POST /pdf/upload with the PDF in the multipart field "file".
func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w)
	if !ok {
		return
	}

	maxBytes := int64(h.maxFileSizeMB) * 1024 * 1024
	if maxBytes > 0 && r.ContentLength > maxBytes+multipartOverhead {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("File exceeds maximum size of %dMB", h.maxFileSizeMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Missing multipart field \"file\"")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != "application/pdf" {
		writeDetail(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("Invalid file type: %s. Only PDF files are accepted.", contentType))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	record, err := svc.Process(r.Context(), services.UploadRequest{
		Filename:   header.Filename,
		Content:    content,
		UploadedBy: r.Header.Get(UploadedByHeader),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewUploadResponse(record))
}

// get handles GET /pdf/{documentId}.
func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w)
	if !ok {
		return
	}
	record, err := svc.Get(r.Context(), chi.URLParam(r, "documentId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// list handles GET /pdf, scoped to the caller when the identity header is set.
func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeDetail(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	records, err := svc.List(r.Context(), r.Header.Get(UploadedByHeader), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.RecordListResponse{Records: records})
}

func (h *handler) service(w http.ResponseWriter) (ReportService, bool) {
	svc, err := h.resolve()
	if err != nil {
		slog.Error("Report service unavailable", "error", err)
		writeDetail(w, http.StatusServiceUnavailable, "GCP services are unavailable. Check credentials and configuration.")
		return nil, false
	}
	return svc, true
}

// writeError maps a processing error onto its HTTP status.
func writeError(w http.ResponseWriter, err error) {
	var invalid *services.ValidationError
	switch {
	case errors.As(err, &invalid):
		writeDetail(w, http.StatusUnprocessableEntity, invalid.Message)
	case errors.Is(err, services.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Document not found")
	case errors.Is(err, ocr.ErrRecognitionEngine),
		errors.Is(err, services.ErrStorage),
		errors.Is(err, services.ErrRecordStore):
		writeDetail(w, http.StatusBadGateway, err.Error())
	default:
		slog.Error("Unhandled processing error", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
