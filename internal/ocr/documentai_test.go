package ocr

import (
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultFromDocument(t *testing.T) {
	doc := &documentaipb.Document{
		Text: "Paciente: Luna\nEspecie: Canino\n",
		Pages: []*documentaipb.Document_Page{
			{
				Dimension: &documentaipb.Document_Page_Dimension{Width: 612, Height: 792, Unit: "points"},
				Layout: &documentaipb.Document_Page_Layout{
					TextAnchor: &documentaipb.Document_TextAnchor{
						TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
							{StartIndex: 0, EndIndex: 15},
							{StartIndex: 15, EndIndex: 31},
						},
					},
				},
				DetectedLanguages: []*documentaipb.Document_Page_DetectedLanguage{
					{LanguageCode: "es", Confidence: 0.98},
					{LanguageCode: ""},
				},
			},
			{},
		},
	}

	res := resultFromDocument(doc)

	require.Len(t, res.Pages, 2)
	assert.Equal(t, doc.Text, res.Text)
	assert.Equal(t, []TextSpan{{0, 15}, {15, 31}}, res.Pages[0].Spans)
	assert.Equal(t, 612.0, res.Pages[0].Width)
	assert.Equal(t, 792.0, res.Pages[0].Height)
	assert.Equal(t, []string{"es"}, res.Pages[0].Languages)

	// A page without layout has no spans and resolves to empty text.
	assert.Empty(t, res.Pages[1].Spans)
	assert.Zero(t, res.Pages[1].Width)
	assert.Equal(t, "", spanText([]rune(res.Text), res.Pages[1].Spans))
}

func TestResultFromDocument_NilDocument(t *testing.T) {
	res := resultFromDocument(nil)
	assert.Empty(t, res.Text)
	assert.Empty(t, res.Pages)
}
