package ocr

import (
	"context"
	"fmt"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

// DocumentAIEngine runs documents through a Google Document AI OCR processor.
type DocumentAIEngine struct {
	client        *documentai.DocumentProcessorClient
	processorName string
}

// NewDocumentAIEngine returns an Engine for the given processor resource name.
func NewDocumentAIEngine(client *documentai.DocumentProcessorClient, processorName string) *DocumentAIEngine {
	return &DocumentAIEngine{client: client, processorName: processorName}
}

// Process implements Engine.
func (e *DocumentAIEngine) Process(ctx context.Context, document []byte) (*Result, error) {
	req := &documentaipb.ProcessRequest{
		Name: e.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  document,
				MimeType: "application/pdf",
			},
		},
	}
	resp, err := e.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("document AI processing failed: %w", err)
	}
	return resultFromDocument(resp.GetDocument()), nil
}

// Close releases the underlying client.
func (e *DocumentAIEngine) Close() error {
	return e.client.Close()
}

func resultFromDocument(doc *documentaipb.Document) *Result {
	res := &Result{Text: doc.GetText()}
	for _, page := range doc.GetPages() {
		layout := PageLayout{
			Width:  float64(page.GetDimension().GetWidth()),
			Height: float64(page.GetDimension().GetHeight()),
		}
		for _, seg := range page.GetLayout().GetTextAnchor().GetTextSegments() {
			layout.Spans = append(layout.Spans, TextSpan{
				Start: int(seg.GetStartIndex()),
				End:   int(seg.GetEndIndex()),
			})
		}
		for _, lang := range page.GetDetectedLanguages() {
			if code := lang.GetLanguageCode(); code != "" {
				layout.Languages = append(layout.Languages, code)
			}
		}
		res.Pages = append(res.Pages, layout)
	}
	return res
}
