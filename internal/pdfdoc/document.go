// Package pdfdoc wraps pdfcpu to expose the few document operations the
// pipeline needs: page count, page-range slicing and embedded image access.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrImageUnavailable is returned when an image object cannot be materialized.
var ErrImageUnavailable = errors.New("image object unavailable")

// Image is a materialized embedded image.
type Image struct {
	Data   []byte
	Format string // pdfcpu file type, e.g. "jpg", "png", "tif"
	Width  int
	Height int
}

// Document is a parsed, read-only PDF held in memory.
type Document struct {
	data []byte
	ctx  *model.Context

	mu     sync.Mutex
	images map[int]*Image
	failed map[int]error
}

func newConfig() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

// Open parses raw PDF bytes.
func Open(data []byte) (*Document, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return &Document{
		data:   data,
		ctx:    ctx,
		images: make(map[int]*Image),
		failed: make(map[int]error),
	}, nil
}

// Bytes returns the raw document bytes.
func (d *Document) Bytes() []byte { return d.data }

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return d.ctx.PageCount }

// ExtractPages builds a standalone PDF containing pages first..last (1-based, inclusive).
func (d *Document) ExtractPages(first, last int) ([]byte, error) {
	if first < 1 || last > d.PageCount() || first > last {
		return nil, fmt.Errorf("invalid page range %d-%d for %d-page document", first, last, d.PageCount())
	}
	var buf bytes.Buffer
	selection := []string{fmt.Sprintf("%d-%d", first, last)}
	if err := api.Trim(bytes.NewReader(d.data), &buf, selection, newConfig()); err != nil {
		return nil, fmt.Errorf("failed to extract pages %d-%d: %w", first, last, err)
	}
	return buf.Bytes(), nil
}

// PageImageIDs returns the object numbers of the images referenced on a page,
// in ascending order. The same object reused on several pages keeps its number.
func (d *Document) PageImageIDs(pageNr int) []int {
	if d.ctx.Optimize == nil {
		return nil
	}
	ids := pdfcpu.ImageObjNrs(d.ctx, pageNr)
	sort.Ints(ids)
	return ids
}

// Image materializes the image object objNr as referenced from pageNr.
// Each object is decoded on its own, so a corrupt image never hides its
// siblings on the same page. Results are cached by object number.
func (d *Document) Image(pageNr, objNr int) (*Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if img, ok := d.images[objNr]; ok {
		return img, nil
	}
	if err, ok := d.failed[objNr]; ok {
		return nil, err
	}

	img, err := d.materialize(pageNr, objNr)
	if err != nil {
		err = fmt.Errorf("page %d object %d: %w: %v", pageNr, objNr, ErrImageUnavailable, err)
		d.failed[objNr] = err
		return nil, err
	}
	d.images[objNr] = img
	return img, nil
}

func (d *Document) materialize(pageNr, objNr int) (*Image, error) {
	if d.ctx.Optimize == nil {
		return nil, errors.New("document has no image registry")
	}
	obj, ok := d.ctx.Optimize.ImageObjects[objNr]
	if !ok || obj.ImageDict == nil {
		return nil, errors.New("not an image object")
	}

	// The decoded image carries no geometry, so read it from the stream dict.
	width, err := d.intEntry(obj.ImageDict, "Width")
	if err != nil {
		return nil, err
	}
	height, err := d.intEntry(obj.ImageDict, "Height")
	if err != nil {
		return nil, err
	}

	extracted, err := pdfcpu.ExtractImage(d.ctx, obj.ImageDict, false, obj.ResourceNames[pageNr-1], objNr, false)
	if err != nil {
		return nil, err
	}
	if extracted == nil || extracted.Reader == nil {
		return nil, errors.New("unsupported image encoding")
	}
	data, err := io.ReadAll(extracted)
	if err != nil {
		return nil, err
	}
	return &Image{
		Data:   data,
		Format: strings.ToLower(extracted.FileType),
		Width:  width,
		Height: height,
	}, nil
}

func (d *Document) intEntry(sd *types.StreamDict, key string) (int, error) {
	o, ok := sd.Find(key)
	if !ok {
		return 0, fmt.Errorf("missing /%s", key)
	}
	i, err := d.ctx.DereferenceInteger(o)
	if err != nil {
		return 0, err
	}
	if i == nil {
		return 0, fmt.Errorf("missing /%s", key)
	}
	return i.Value(), nil
}

// MIMEType maps a pdfcpu image file type to a MIME type.
func MIMEType(format string) string {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	case "jpx", "jp2":
		return "image/jp2"
	case "":
		return "image/png"
	default:
		return "image/" + strings.ToLower(format)
	}
}
