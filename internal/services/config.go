package services

import (
	"fmt"

	"github.com/Lllllllleong/vetreportflow/internal/gcp"
	"github.com/Lllllllleong/vetreportflow/internal/imagetriage"
	"github.com/Lllllllleong/vetreportflow/internal/ocr"
)

// Recognition engines selectable through RECOGNITION_ENGINE.
const (
	EngineDocumentAI = "documentai"
	EngineGemini     = "gemini"
)

// DefaultMaxFileSizeMB is the upload size limit when MAX_FILE_SIZE_MB is unset.
const DefaultMaxFileSizeMB = 20

// PipelineConfig holds the settings shared by every entry point that runs the
// extraction pipeline, with or without storage.
type PipelineConfig struct {
	ProjectID             string
	RecognitionEngine     string
	DocumentAILocation    string
	DocumentAIProcessorID string
	VertexAIRegion        string
	GeminiModel           string
	OCRPageLimit          int
	OCRWorkers            int

	MinImageWidth         int
	MinImageHeight        int
	MinImageFileSizeKB    int
	DecorativePagePercent int
}

// ProcessorConfig holds all configuration for the report processor service.
type ProcessorConfig struct {
	PipelineConfig

	UploadsBucket    string
	IncomingPrefix   string
	CollectionName   string
	DatabaseID       string
	MaxFileSizeMB    int
	UploadWorkers    int
	WorkflowID       string
	WorkflowLocation string
}

// LoadPipelineConfig loads and validates the pipeline environment variables.
func LoadPipelineConfig() (*PipelineConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := &PipelineConfig{
		ProjectID:             projectID,
		RecognitionEngine:     gcp.GetEnv("RECOGNITION_ENGINE", EngineDocumentAI),
		DocumentAILocation:    gcp.GetEnv("DOCUMENT_AI_LOCATION", "us"),
		DocumentAIProcessorID: gcp.GetEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		VertexAIRegion:        gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		GeminiModel:           gcp.GetEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		OCRPageLimit:          gcp.GetEnvInt("OCR_PAGE_LIMIT", ocr.DefaultPageLimit),
		OCRWorkers:            gcp.GetEnvInt("OCR_WORKERS", ocr.DefaultWorkers),
		MinImageWidth:         gcp.GetEnvInt("MIN_IMAGE_WIDTH", 400),
		MinImageHeight:        gcp.GetEnvInt("MIN_IMAGE_HEIGHT", 300),
		MinImageFileSizeKB:    gcp.GetEnvInt("MIN_IMAGE_FILE_SIZE_KB", 20),
		DecorativePagePercent: gcp.GetEnvInt("DECORATIVE_PAGE_PERCENT", imagetriage.DefaultDecorativePagePercent),
	}

	switch config.RecognitionEngine {
	case EngineDocumentAI:
		if config.DocumentAIProcessorID == "" {
			return nil, fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID environment variable must be set for the %s engine", EngineDocumentAI)
		}
	case EngineGemini:
	default:
		return nil, fmt.Errorf("unknown RECOGNITION_ENGINE %q", config.RecognitionEngine)
	}
	return config, nil
}

// LoadProcessorConfig loads the pipeline settings plus storage and workflow settings.
func LoadProcessorConfig() (*ProcessorConfig, error) {
	pipeline, err := LoadPipelineConfig()
	if err != nil {
		return nil, err
	}

	config := &ProcessorConfig{
		PipelineConfig:   *pipeline,
		UploadsBucket:    gcp.GetEnv("UPLOADS_BUCKET", ""),
		IncomingPrefix:   gcp.GetEnv("INCOMING_PREFIX", "incoming/"),
		CollectionName:   gcp.GetEnv("FIRESTORE_COLLECTION", "pdf_records"),
		DatabaseID:       gcp.GetEnv("FIRESTORE_DATABASE", ""),
		MaxFileSizeMB:    gcp.GetEnvInt("MAX_FILE_SIZE_MB", DefaultMaxFileSizeMB),
		UploadWorkers:    gcp.GetEnvInt("UPLOAD_WORKERS", 8),
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
	}
	if config.UploadsBucket == "" {
		return nil, fmt.Errorf("UPLOADS_BUCKET environment variable must be set")
	}
	return config, nil
}

// TriageOptions converts the image settings into triage options.
func (c PipelineConfig) TriageOptions() imagetriage.Options {
	return imagetriage.Options{
		MinWidth:              c.MinImageWidth,
		MinHeight:             c.MinImageHeight,
		MinFileSize:           c.MinImageFileSizeKB * 1024,
		DecorativePagePercent: c.DecorativePagePercent,
	}
}
