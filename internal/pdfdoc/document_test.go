package pdfdoc

import (
	"testing"

	"github.com/Lllllllleong/vetreportflow/internal/pdfdoc/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMIMEType(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"jpg", "image/jpeg"},
		{"JPEG", "image/jpeg"},
		{"png", "image/png"},
		{"tif", "image/tiff"},
		{"jpx", "image/jp2"},
		{"webp", "image/webp"},
		{"", "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, MIMEType(tt.format))
		})
	}
}

func TestOpen_RejectsNonPDF(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":      nil,
		"plain text": []byte("Paciente: Luna\nEspecie: Canino\n"),
		"truncated":  []byte("%PDF-1.4\n"),
	} {
		t.Run(name, func(t *testing.T) {
			doc, err := Open(data)
			require.Error(t, err)
			assert.Nil(t, doc)
		})
	}
}

func TestImage_ReportsDimensions(t *testing.T) {
	data := pdftest.Build(
		[]pdftest.Image{{Width: 500, Height: 400, Seed: 7}},
		[]pdftest.Page{{Images: []int{0}}},
	)
	doc, err := Open(data)
	require.NoError(t, err)
	require.Equal(t, 1, doc.PageCount())

	ids := doc.PageImageIDs(1)
	require.Len(t, ids, 1)

	img, err := doc.Image(1, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 500, img.Width)
	assert.Equal(t, 400, img.Height)
	assert.Equal(t, "png", img.Format)
	assert.NotEmpty(t, img.Data)

	again, err := doc.Image(1, ids[0])
	require.NoError(t, err)
	assert.Same(t, img, again)
}

func TestImage_CorruptSiblingDoesNotHideValidImage(t *testing.T) {
	data := pdftest.Build(
		[]pdftest.Image{
			{Width: 500, Height: 400, Seed: 7},
			{Width: 300, Height: 300, Corrupt: true},
		},
		[]pdftest.Page{{Images: []int{0, 1}}},
	)
	doc, err := Open(data)
	require.NoError(t, err)

	ids := doc.PageImageIDs(1)
	require.Len(t, ids, 2)

	var good, bad int
	for _, id := range ids {
		img, err := doc.Image(1, id)
		if err != nil {
			assert.ErrorIs(t, err, ErrImageUnavailable)
			bad++
			continue
		}
		assert.Equal(t, 500, img.Width)
		assert.Equal(t, 400, img.Height)
		good++
	}
	assert.Equal(t, 1, good)
	assert.Equal(t, 1, bad)
}

func TestPageImageIDs_SharedObjectKeepsIdentity(t *testing.T) {
	data := pdftest.Build(
		[]pdftest.Image{{Width: 120, Height: 60, Seed: 1}, {Width: 500, Height: 400, Seed: 2}},
		[]pdftest.Page{{Images: []int{0}}, {Images: []int{0, 1}}, {}},
	)
	doc, err := Open(data)
	require.NoError(t, err)
	require.Equal(t, 3, doc.PageCount())

	first := doc.PageImageIDs(1)
	second := doc.PageImageIDs(2)
	require.Len(t, first, 1)
	require.Len(t, second, 2)
	assert.Contains(t, second, first[0])
	assert.Empty(t, doc.PageImageIDs(3))
}

func TestExtractPages(t *testing.T) {
	doc, err := Open(pdftest.Build(nil, pdftest.Pages(20)))
	require.NoError(t, err)
	require.Equal(t, 20, doc.PageCount())

	for _, tt := range []struct{ first, last, want int }{
		{1, 15, 15},
		{16, 20, 5},
		{7, 7, 1},
	} {
		chunk, err := doc.ExtractPages(tt.first, tt.last)
		require.NoError(t, err)

		sub, err := Open(chunk)
		require.NoError(t, err)
		assert.Equal(t, tt.want, sub.PageCount(), "pages %d-%d", tt.first, tt.last)
	}
}

func TestExtractPages_InvalidRange(t *testing.T) {
	doc, err := Open(pdftest.Build(nil, pdftest.Pages(3)))
	require.NoError(t, err)

	for _, r := range [][2]int{{0, 2}, {2, 4}, {3, 2}} {
		_, err := doc.ExtractPages(r[0], r[1])
		assert.Error(t, err, "pages %d-%d", r[0], r[1])
	}
}
