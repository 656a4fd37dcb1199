// Package ocr pages documents through a page-limited text-recognition engine
// and merges the partial results into one ordered page sequence.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/vetreportflow/internal/models"
	"github.com/Lllllllleong/vetreportflow/internal/pdfdoc"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPageLimit is the Document AI online-processing page limit.
	DefaultPageLimit = 15
	DefaultWorkers   = 4
)

// ErrRecognitionEngine marks every failure that originates in the recognition engine.
var ErrRecognitionEngine = errors.New("recognition engine failure")

// EngineError reports the chunk that could not be built or recognized.
type EngineError struct {
	FirstPage int
	LastPage  int
	Err       error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("recognition engine failed on pages %d-%d: %v", e.FirstPage, e.LastPage, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

func (e *EngineError) Is(target error) bool { return target == ErrRecognitionEngine }

// TextSpan is a half-open [Start, End) range of character offsets into Result.Text.
type TextSpan struct {
	Start int
	End   int
}

// PageLayout is the engine's description of one page.
type PageLayout struct {
	Spans     []TextSpan
	Width     float64
	Height    float64
	Languages []string
}

// Result is what the engine returns for one submitted document.
type Result struct {
	Text  string
	Pages []PageLayout
}

// Engine recognizes the text of a standalone PDF.
type Engine interface {
	Process(ctx context.Context, document []byte) (*Result, error)
}

// Pager is the document view the extractor needs.
type Pager interface {
	Bytes() []byte
	PageCount() int
	ExtractPages(first, last int) ([]byte, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPageLimit sets the maximum number of pages per engine request.
func WithPageLimit(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.pageLimit = n
		}
	}
}

// WithWorkers bounds the number of concurrent engine requests.
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// Extractor splits oversized documents into chunks for the engine.
type Extractor struct {
	engine    Engine
	pageLimit int
	workers   int
}

// NewExtractor returns an Extractor bound to engine.
func NewExtractor(engine Engine, opts ...Option) *Extractor {
	e := &Extractor{
		engine:    engine,
		pageLimit: DefaultPageLimit,
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type chunk struct {
	first, last int
}

type chunkResult struct {
	text  string
	pages []models.PageText
}

// Extract recognizes the full text of a PDF and returns it with one PageText per page.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, []models.PageText, error) {
	doc, err := pdfdoc.Open(data)
	if err != nil {
		return "", nil, err
	}
	return e.ExtractDocument(ctx, doc)
}

// ExtractDocument is Extract over an already opened document.
func (e *Extractor) ExtractDocument(ctx context.Context, doc Pager) (string, []models.PageText, error) {
	total := doc.PageCount()
	if total <= e.pageLimit {
		res, err := e.process(ctx, doc.Bytes(), chunk{first: 1, last: total})
		if err != nil {
			return "", nil, err
		}
		return res.text, res.pages, nil
	}

	chunks := splitPages(total, e.pageLimit)
	slog.Info("Document exceeds engine page limit, processing in chunks.",
		"pageCount", total, "pageLimit", e.pageLimit, "chunkCount", len(chunks))

	results := make([]chunkResult, len(chunks))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)
	for i, c := range chunks {
		eg.Go(func() error {
			part, err := doc.ExtractPages(c.first, c.last)
			if err != nil {
				return &EngineError{FirstPage: c.first, LastPage: c.last, Err: fmt.Errorf("failed to build chunk: %w", err)}
			}
			res, err := e.process(gctx, part, c)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", nil, err
	}

	texts := make([]string, 0, len(results))
	pages := make([]models.PageText, 0, total)
	for _, res := range results {
		texts = append(texts, res.text)
		pages = append(pages, res.pages...)
	}
	return strings.Join(texts, "\n"), pages, nil
}

// process sends one chunk to the engine and numbers its pages from c.first.
func (e *Extractor) process(ctx context.Context, data []byte, c chunk) (chunkResult, error) {
	res, err := e.engine.Process(ctx, data)
	if err != nil {
		return chunkResult{}, &EngineError{FirstPage: c.first, LastPage: c.last, Err: err}
	}
	if res == nil {
		return chunkResult{}, &EngineError{FirstPage: c.first, LastPage: c.last, Err: errors.New("empty response")}
	}
	if want := c.last - c.first + 1; len(res.Pages) != want {
		err := fmt.Errorf("engine returned %d pages, expected %d", len(res.Pages), want)
		return chunkResult{}, &EngineError{FirstPage: c.first, LastPage: c.last, Err: err}
	}

	text := []rune(res.Text)
	pages := make([]models.PageText, 0, len(res.Pages))
	for i, p := range res.Pages {
		langs := p.Languages
		if langs == nil {
			langs = []string{}
		}
		pages = append(pages, models.PageText{
			PageNumber:        c.first + i,
			Width:             p.Width,
			Height:            p.Height,
			Text:              spanText(text, p.Spans),
			DetectedLanguages: langs,
		})
	}
	return chunkResult{text: res.Text, pages: pages}, nil
}

// splitPages partitions 1..total into consecutive ranges of at most limit pages.
func splitPages(total, limit int) []chunk {
	var chunks []chunk
	for first := 1; first <= total; first += limit {
		chunks = append(chunks, chunk{first: first, last: min(first+limit-1, total)})
	}
	return chunks
}

// spanText concatenates the spans of text; out-of-range offsets are clamped.
func spanText(text []rune, spans []TextSpan) string {
	var sb strings.Builder
	for _, s := range spans {
		start := max(0, min(s.Start, len(text)))
		end := max(start, min(s.End, len(text)))
		sb.WriteString(string(text[start:end]))
	}
	return sb.String()
}
