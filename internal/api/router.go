// Package api exposes the report processor over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/Lllllllleong/vetreportflow/internal/models"
	"github.com/Lllllllleong/vetreportflow/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// UploadedByHeader carries the identity of the caller. Authentication happens
// in front of the function.
const UploadedByHeader = "X-Uploaded-By"

// ReportService is the processor as seen by the HTTP handlers.
type ReportService interface {
	Process(ctx context.Context, req services.UploadRequest) (*models.Record, error)
	Get(ctx context.Context, documentID string) (*models.Record, error)
	List(ctx context.Context, uploadedBy string, limit int) ([]*models.Record, error)
}

// ServiceResolver returns the service, or an error while its clients are unavailable.
type ServiceResolver func() (ReportService, error)

// Config holds the HTTP-level limits.
type Config struct {
	MaxFileSizeMB int
}

// NewRouter creates the API router with all routes configured.
func NewRouter(resolve ServiceResolver, cfg Config) http.Handler {
	h := &handler{resolve: resolve, maxFileSizeMB: cfg.MaxFileSizeMB}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", h.health)

	r.Post("/pdf/upload", h.upload)
	r.Get("/pdf", h.list)
	r.Get("/pdf/{documentId}", h.get)
	return r
}
