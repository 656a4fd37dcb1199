// Package imagetriage separates clinical images embedded in a report from
// decorative assets such as logos and letterheads.
//
// An image object referenced from a large share of the pages is treated as
// decorative. The remaining objects are materialized once each, filtered by
// size, and returned in page order.
package imagetriage

import (
	"log/slog"

	"github.com/Lllllllleong/vetreportflow/internal/models"
	"github.com/Lllllllleong/vetreportflow/internal/pdfdoc"
)

const (
	DefaultDecorativePagePercent = 30
	DefaultDecorativeMinPages    = 2
)

// Source is the view of a document the triage needs.
type Source interface {
	PageCount() int
	PageImageIDs(pageNr int) []int
	Image(pageNr, objNr int) (*pdfdoc.Image, error)
}

// Options control which images are kept.
type Options struct {
	MinWidth    int
	MinHeight   int
	MinFileSize int // bytes

	// An image on at least max(DecorativeMinPages, ceil(DecorativePagePercent% of pages))
	// pages is decorative. Zero values use the defaults.
	DecorativePagePercent int
	DecorativeMinPages    int
}

// Triage opens a PDF and returns its substantive embedded images.
func Triage(data []byte, opts Options) ([]models.ExtractedImage, error) {
	doc, err := pdfdoc.Open(data)
	if err != nil {
		return nil, err
	}
	return TriageSource(doc, opts), nil
}

// TriageSource runs the two-pass triage over src.
func TriageSource(src Source, opts Options) []models.ExtractedImage {
	total := src.PageCount()

	// First pass: count the pages each image object appears on.
	pageCount := make(map[int]int)
	for pageNr := 1; pageNr <= total; pageNr++ {
		seenOnPage := make(map[int]bool)
		for _, id := range src.PageImageIDs(pageNr) {
			if !seenOnPage[id] {
				seenOnPage[id] = true
				pageCount[id]++
			}
		}
	}

	threshold := DecorativeThreshold(total, opts.DecorativePagePercent, opts.DecorativeMinPages)

	// Second pass: materialize each non-decorative object at its first page.
	images := []models.ExtractedImage{}
	seen := make(map[int]bool)
	for pageNr := 1; pageNr <= total; pageNr++ {
		for _, id := range src.PageImageIDs(pageNr) {
			if pageCount[id] >= threshold || seen[id] {
				continue
			}
			seen[id] = true

			img, err := src.Image(pageNr, id)
			if err != nil {
				slog.Debug("Skipping malformed image object.", "page", pageNr, "objNr", id, "error", err)
				continue
			}
			if len(img.Data) == 0 {
				continue
			}
			if img.Width < opts.MinWidth || img.Height < opts.MinHeight {
				continue
			}
			if len(img.Data) < opts.MinFileSize {
				continue
			}

			images = append(images, models.ExtractedImage{
				Data:       img.Data,
				PageNumber: pageNr,
				MIMEType:   pdfdoc.MIMEType(img.Format),
				Width:      img.Width,
				Height:     img.Height,
			})
		}
	}
	slog.Debug("Image triage complete.", "pageCount", total, "threshold", threshold,
		"distinctImages", len(pageCount), "kept", len(images))
	return images
}

// DecorativeThreshold returns the number of pages at which an image object is
// considered decorative: max(minPages, ceil(percent% of totalPages)).
func DecorativeThreshold(totalPages, percent, minPages int) int {
	if percent <= 0 {
		percent = DefaultDecorativePagePercent
	}
	if minPages <= 0 {
		minPages = DefaultDecorativeMinPages
	}
	return max(minPages, (totalPages*percent+99)/100)
}
