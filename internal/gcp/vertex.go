package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- Recognition Model Prompts ---
const RecognitionSystemPrompt = "You are an OCR engine for scanned veterinary diagnostic reports. You transcribe the text of every page exactly as printed, without translating, summarizing or correcting it. You must output your response as valid JSON."
const RecognitionUserPrompt = `You will be provided with a PDF document.

Transcribe the document page by page and follow these rules precisely:
1.  Produce exactly one JSON object per page, in page order, even for pages without text.
2.  Each object must have exactly two keys:
    - "text": the full text of the page, with line breaks preserved as "\n". Keep every "Label: value" pair on its original line.
    - "languages": an array of ISO-639-1 codes of the languages present on the page (e.g. ["es"]).
3.  Ignore images, logos and stamps; transcribe only printed or handwritten text.
4.  The final output MUST be a single JSON object of the form {"pages": [...]}. Do not include any text before or after it.

Example output format:
{
  "pages": [
    {"text": "Paciente: Luna\nEspecie: Canino", "languages": ["es"]},
    {"text": "", "languages": []}
  ]
}`

// VertexClient holds the pre-configured generative models for our app.
type VertexClient struct {
	RecognitionModel *genai.GenerativeModel
	baseClient       *genai.Client
}

// NewVertexClient creates a new client holding the recognition model.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = "gemini-1.5-pro"
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	recognitionModel := baseClient.GenerativeModel(modelName)
	recognitionModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(RecognitionSystemPrompt)},
	}
	recognitionModel.GenerationConfig = genai.GenerationConfig{
		// Force JSON output so pages can be split reliably.
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0),
	}
	recognitionModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		RecognitionModel: recognitionModel,
		baseClient:       baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
