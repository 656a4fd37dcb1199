package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/vetreportflow/internal/api"
	"github.com/Lllllllleong/vetreportflow/internal/gcp"
	"github.com/Lllllllleong/vetreportflow/internal/models"
	"github.com/Lllllllleong/vetreportflow/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/joho/godotenv"
)

var (
	processorInstance *services.ReportProcessor
	once              sync.Once
	initErr           error

	router http.Handler
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Local runs read a .env file; deployed functions get their environment from GCP.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not load .env file", "error", err)
	}

	router = api.NewRouter(resolveProcessor, api.Config{
		MaxFileSizeMB: gcp.GetEnvInt("MAX_FILE_SIZE_MB", services.DefaultMaxFileSizeMB),
	})

	functions.HTTP("ReportAPI", serveReportAPI)
	functions.CloudEvent("ProcessUploadedReport", processUploadedReport)
}

// main is required by the Go Functions Framework.
func main() {}

// resolveProcessor connects the GCP clients on first use. A failed
// initialization is reported on every request instead of crashing the instance.
func resolveProcessor() (api.ReportService, error) {
	once.Do(func() {
		processorInstance, initErr = services.NewReportProcessor(context.Background())
		if initErr != nil {
			slog.Error("Critical: report processor initialization failed", "error", initErr)
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return processorInstance, nil
}

func serveReportAPI(w http.ResponseWriter, r *http.Request) {
	router.ServeHTTP(w, r)
}

// processUploadedReport handles PDFs written straight to the uploads bucket.
func processUploadedReport(ctx context.Context, e cloudevents.Event) error {
	if _, err := resolveProcessor(); err != nil {
		return err
	}

	var gcsEvent models.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Errors are logged with context inside ProcessObject. Returning one
	// marks the invocation as failed so the event is retried.
	return processorInstance.ProcessObject(ctx, gcsEvent.Bucket, gcsEvent.Name)
}
