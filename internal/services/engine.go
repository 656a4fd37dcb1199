package services

import (
	"context"
	"fmt"
	"io"

	"github.com/Lllllllleong/vetreportflow/internal/gcp"
	"github.com/Lllllllleong/vetreportflow/internal/ocr"
)

// NewEngine connects the configured recognition engine. The returned closer
// releases the underlying client.
func NewEngine(ctx context.Context, config PipelineConfig) (ocr.Engine, io.Closer, error) {
	switch config.RecognitionEngine {
	case EngineGemini:
		vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion, config.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create vertex client: %w", err)
		}
		return ocr.NewGeminiEngine(vertexClient.RecognitionModel, gcp.RecognitionUserPrompt), vertexClient, nil
	default:
		client, err := gcp.NewDocumentAIClient(ctx, config.DocumentAILocation)
		if err != nil {
			return nil, nil, err
		}
		name := gcp.ProcessorName(config.ProjectID, config.DocumentAILocation, config.DocumentAIProcessorID)
		engine := ocr.NewDocumentAIEngine(client, name)
		return engine, engine, nil
	}
}

// NewExtractor wraps engine in a chunking extractor sized from config.
func NewExtractor(engine ocr.Engine, config PipelineConfig) *ocr.Extractor {
	return ocr.NewExtractor(engine, ocr.WithPageLimit(config.OCRPageLimit), ocr.WithWorkers(config.OCRWorkers))
}
