package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"github.com/Lllllllleong/vetreportflow/internal/gcp"
	"github.com/Lllllllleong/vetreportflow/internal/imagetriage"
	"github.com/Lllllllleong/vetreportflow/internal/models"
	"github.com/Lllllllleong/vetreportflow/internal/ocr"
	"github.com/Lllllllleong/vetreportflow/internal/pdfdoc"
	"github.com/Lllllllleong/vetreportflow/internal/reportparser"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Document is an opened PDF as both pipeline stages see it.
type Document interface {
	ocr.Pager
	imagetriage.Source
}

// TextExtractor recognizes the text of an opened document.
type TextExtractor interface {
	ExtractDocument(ctx context.Context, doc ocr.Pager) (string, []models.PageText, error)
}

// UploadRequest is a PDF submitted for processing.
type UploadRequest struct {
	Filename   string
	Content    []byte
	UploadedBy string
}

// Dependencies are the collaborators of a ReportProcessor. Workflow may be nil.
type Dependencies struct {
	Records   RecordStore
	Blobs     BlobStore
	Extractor TextExtractor
	Workflow  WorkflowTrigger
}

// ReportProcessor runs uploaded reports through text extraction, image triage
// and field parsing, and persists the result.
type ReportProcessor struct {
	config    ProcessorConfig
	records   RecordStore
	blobs     BlobStore
	extractor TextExtractor
	workflow  WorkflowTrigger

	open  func([]byte) (Document, error)
	now   func() time.Time
	newID func() string

	closers []io.Closer
}

// NewReportProcessor builds a processor from the environment and connects
// every client it needs.
func NewReportProcessor(ctx context.Context) (*ReportProcessor, error) {
	config, err := LoadProcessorConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID, config.DatabaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	engine, engineCloser, err := NewEngine(ctx, config.PipelineConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create recognition engine: %w", err)
	}

	deps := Dependencies{
		Records:   NewFirestoreStore(firestoreClient, config.CollectionName),
		Blobs:     NewGCSBlobStore(storageClient, config.UploadsBucket),
		Extractor: NewExtractor(engine, config.PipelineConfig),
	}
	closers := []io.Closer{firestoreClient, storageClient, engineCloser}

	if config.WorkflowID != "" {
		executionsClient, err := executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
		deps.Workflow = NewExecutionsTrigger(executionsClient,
			gcp.WorkflowName(config.ProjectID, config.WorkflowLocation, config.WorkflowID))
		closers = append(closers, executionsClient)
	}

	p := NewReportProcessorWith(*config, deps)
	p.closers = closers
	slog.Info("Report processor initialized.",
		"engine", config.RecognitionEngine, "bucket", config.UploadsBucket, "workflowId", config.WorkflowID)
	return p, nil
}

// NewReportProcessorWith assembles a processor from explicit dependencies.
func NewReportProcessorWith(config ProcessorConfig, deps Dependencies) *ReportProcessor {
	return &ReportProcessor{
		config:    config,
		records:   deps.Records,
		blobs:     deps.Blobs,
		extractor: deps.Extractor,
		workflow:  deps.Workflow,
		open: func(data []byte) (Document, error) {
			return pdfdoc.Open(data)
		},
		now:   time.Now,
		newID: newDocumentID,
	}
}

// Close releases the clients created by NewReportProcessor.
func (p *ReportProcessor) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Process validates an upload, runs the pipeline and returns the stored record.
// A file whose content was already processed returns the earlier record.
func (p *ReportProcessor) Process(ctx context.Context, req UploadRequest) (*models.Record, error) {
	start := p.now()
	if err := validatePDF(req.Content, p.config.MaxFileSizeMB); err != nil {
		return nil, err
	}
	filename := sanitizeFilename(req.Filename)
	fileHash := hashContent(req.Content)
	logCtx := slog.With("filename", filename, "fileHash", fileHash, "uploadedBy", req.UploadedBy)

	existing, err := p.records.FindCompleteByHash(ctx, fileHash)
	if err != nil {
		logCtx.Error("Failed to check for duplicate", "error", err)
		return nil, err
	}
	if existing != nil {
		logCtx.Info("Duplicate file detected. Returning existing record.", "existingDocId", existing.DocumentID)
		return existing, nil
	}

	record := &models.Record{
		DocumentID: p.newID(),
		FileHash:   fileHash,
		Filename:   filename,
		Status:     models.StatusProcessing,
		Images:     []models.ImageInfo{},
		CreatedAt:  start.UTC(),
		UploadedBy: req.UploadedBy,
	}
	if err := p.records.Create(ctx, record); err != nil {
		logCtx.Error("Failed to create initial record", "error", err)
		return nil, err
	}
	logCtx = logCtx.With("documentId", record.DocumentID)
	logCtx.Info("Created report record.")

	if err := p.run(ctx, logCtx, record, req.Content, start); err != nil {
		return nil, err
	}
	logCtx.Info("Report processed.", "totalPages", record.TotalPages, "imageCount", len(record.Images),
		"processingTimeSeconds", record.ProcessingTimeSeconds)
	return record, nil
}

func (p *ReportProcessor) run(ctx context.Context, logCtx *slog.Logger, record *models.Record, content []byte, start time.Time) error {
	object := uploadObjectName(start, record.DocumentID, record.Filename)
	uri, err := p.blobs.Upload(ctx, object, content, "application/pdf")
	if err != nil {
		return p.handleError(ctx, logCtx, record, "failed to upload PDF", err)
	}
	record.GCSUri = uri

	doc, err := p.open(content)
	if err != nil {
		invalid := &ValidationError{Message: "File does not appear to be a valid PDF"}
		return p.handleError(ctx, logCtx, record, "failed to read PDF", errors.Join(invalid, err))
	}

	var (
		fullText string
		pages    []models.PageText
		images   []models.ExtractedImage
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		fullText, pages, err = p.extractor.ExtractDocument(gctx, doc)
		return err
	})
	eg.Go(func() error {
		images = imagetriage.TriageSource(doc, p.config.TriageOptions())
		return nil
	})
	if err := eg.Wait(); err != nil {
		return p.handleError(ctx, logCtx, record, "text extraction failed", err)
	}

	infos, err := p.uploadImages(ctx, logCtx, record.DocumentID, images)
	if err != nil {
		return p.handleError(ctx, logCtx, record, "one or more images failed to upload", err)
	}

	record.FullText = fullText
	record.Pages = pages
	record.TotalPages = len(pages)
	record.Images = infos
	record.ReportInfo = reportparser.Parse(fullText)
	record.Status = models.StatusComplete
	record.ProcessingTimeSeconds = roundSeconds(p.now().Sub(start))

	if err := p.records.Save(ctx, record); err != nil {
		return p.handleError(ctx, logCtx, record, "failed to save record", err)
	}

	p.triggerWorkflow(ctx, logCtx, record)
	return nil
}

func (p *ReportProcessor) uploadImages(ctx context.Context, logCtx *slog.Logger, documentID string, images []models.ExtractedImage) ([]models.ImageInfo, error) {
	infos := make([]models.ImageInfo, len(images))
	if len(images) == 0 {
		return infos, nil
	}
	logCtx.Info("Starting concurrent upload of images.", "imageCount", len(images))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, p.config.UploadWorkers))
	for i, img := range images {
		eg.Go(func() error {
			object := imageObjectName(documentID, img.PageNumber, i, img.MIMEType)
			uri, err := p.blobs.Upload(gctx, object, img.Data, img.MIMEType)
			if err != nil {
				return fmt.Errorf("image %d on page %d: %w", i, img.PageNumber, err)
			}
			infos[i] = models.ImageInfo{
				PageNumber: img.PageNumber,
				GCSUri:     uri,
				Width:      img.Width,
				Height:     img.Height,
				MIMEType:   img.MIMEType,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

// triggerWorkflow is best effort: the record is already complete.
func (p *ReportProcessor) triggerWorkflow(ctx context.Context, logCtx *slog.Logger, record *models.Record) {
	if p.workflow == nil {
		return
	}
	executionID, err := p.workflow.Trigger(ctx, models.ProcessingHandoff{
		DocumentID: record.DocumentID,
		PageCount:  record.TotalPages,
		ImageCount: len(record.Images),
	})
	if err != nil {
		logCtx.Warn("Failed to trigger post-processing workflow.", "error", err)
		return
	}
	record.WorkflowExecutionID = executionID
	if err := p.records.Save(ctx, record); err != nil {
		logCtx.Warn("Failed to record workflow execution id.", "executionId", executionID, "error", err)
		return
	}
	logCtx.Info("Hand-off to workflow complete.", "executionId", executionID)
}

// Get returns the stored record for documentID.
func (p *ReportProcessor) Get(ctx context.Context, documentID string) (*models.Record, error) {
	return p.records.Get(ctx, documentID)
}

// List returns the most recent records, optionally only those of one uploader.
func (p *ReportProcessor) List(ctx context.Context, uploadedBy string, limit int) ([]*models.Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return p.records.List(ctx, uploadedBy, min(limit, maxListLimit))
}

// ProcessObject processes a PDF dropped under the incoming prefix of a bucket.
// Objects outside the prefix and rejected files are acknowledged without error
// so the event is not redelivered.
func (p *ReportProcessor) ProcessObject(ctx context.Context, bucket, name string) error {
	logCtx := slog.With("gcsBucket", bucket, "gcsObject", name)
	if !strings.HasPrefix(name, p.config.IncomingPrefix) || strings.HasSuffix(name, "/") {
		logCtx.Debug("Ignoring object outside the incoming prefix.")
		return nil
	}
	logCtx.Info("Processing new GCS object.")

	content, err := p.blobs.Download(ctx, bucket, name)
	if err != nil {
		logCtx.Error("Failed to download source PDF", "error", err)
		return err
	}

	record, err := p.Process(ctx, UploadRequest{
		Filename:   path.Base(name),
		Content:    content,
		UploadedBy: "gs://" + bucket,
	})
	var invalid *ValidationError
	if errors.As(err, &invalid) {
		logCtx.Warn("Rejected incoming object.", "reason", invalid.Message)
		return nil
	}
	if err != nil {
		return err
	}
	logCtx.Info("Incoming object processed.", "documentId", record.DocumentID)
	return nil
}

func (p *ReportProcessor) handleError(ctx context.Context, logCtx *slog.Logger, record *models.Record, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	record.Status = models.StatusFailed
	record.ErrorDetails = fullError
	if err := p.records.UpdateStatus(ctx, record.DocumentID, models.StatusFailed, fullError); err != nil {
		logCtx.Error("CRITICAL: Failed to update record status to FAILED after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s: %w", message, originalErr)
}

func newDocumentID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func uploadObjectName(at time.Time, documentID, filename string) string {
	return fmt.Sprintf("uploads/%s_%s_%s", at.UTC().Format("20060102150405"), documentID, filename)
}

func imageObjectName(documentID string, pageNumber, index int, mimeType string) string {
	ext := "png"
	if _, sub, ok := strings.Cut(mimeType, "/"); ok && sub != "" {
		ext = sub
	}
	return fmt.Sprintf("extracted_images/%s/page%d_img%d.%s", documentID, pageNumber, index, ext)
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
