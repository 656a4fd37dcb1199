package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/vertexai/genai"
)

// GeminiEngine transcribes documents with a Vertex AI Gemini model. It reports
// no page geometry.
type GeminiEngine struct {
	model  *genai.GenerativeModel
	prompt string
}

// NewGeminiEngine returns an Engine backed by a model configured for JSON output.
func NewGeminiEngine(model *genai.GenerativeModel, prompt string) *GeminiEngine {
	return &GeminiEngine{model: model, prompt: prompt}
}

type geminiPage struct {
	Text      string   `json:"text"`
	Languages []string `json:"languages"`
}

type geminiTranscript struct {
	Pages []geminiPage `json:"pages"`
}

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// Process implements Engine.
func (e *GeminiEngine) Process(ctx context.Context, document []byte) (*Result, error) {
	filePart := genai.Blob{
		MIMEType: "application/pdf",
		Data:     document,
	}
	resp, err := e.model.GenerateContent(ctx, filePart, genai.Text(e.prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return parseGeminiResponse(extractText(resp))
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

func parseGeminiResponse(raw string) (*Result, error) {
	cleanJSON := strings.TrimSpace(raw)
	cleanJSON = strings.TrimPrefix(cleanJSON, "```json")
	cleanJSON = strings.TrimPrefix(cleanJSON, "```")
	cleanJSON = strings.TrimSuffix(cleanJSON, "```")
	cleanJSON = strings.TrimSpace(cleanJSON)
	if cleanJSON == "" {
		return nil, fmt.Errorf("gemini returned an empty response")
	}

	var transcript geminiTranscript
	if err := json.Unmarshal([]byte(cleanJSON), &transcript); err != nil {
		lower := strings.ToLower(cleanJSON)
		for _, phrase := range refusalPhrases {
			if strings.Contains(lower, phrase) {
				return nil, fmt.Errorf("gemini response indicates refusal")
			}
		}
		return nil, fmt.Errorf("failed to parse JSON from model: %w", err)
	}

	// Pages are joined with a newline; spans are rune offsets into the joined text.
	res := &Result{}
	var sb strings.Builder
	offset := 0
	for i, p := range transcript.Pages {
		if i > 0 {
			sb.WriteByte('\n')
			offset++
		}
		n := utf8.RuneCountInString(p.Text)
		layout := PageLayout{Languages: p.Languages}
		if n > 0 {
			layout.Spans = []TextSpan{{Start: offset, End: offset + n}}
		}
		sb.WriteString(p.Text)
		offset += n
		res.Pages = append(res.Pages, layout)
	}
	res.Text = sb.String()
	return res, nil
}
