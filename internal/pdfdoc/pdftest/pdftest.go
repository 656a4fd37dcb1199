// Package pdftest assembles small uncompressed-structure PDFs with embedded
// grayscale images for tests.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"
)

// Image describes one image XObject.
type Image struct {
	Width  int
	Height int
	// Seed selects the pixel noise. Images with different seeds never share content.
	Seed uint32
	// Corrupt stores bytes that are not a valid FlateDecode stream.
	Corrupt bool
}

// Page lists the images drawn on a page as indexes into the image slice.
type Page struct {
	Images []int
}

// Build returns a PDF with one object per image, shared by every page that
// references it.
func Build(images []Image, pages []Page) []byte {
	const (
		catalogNr = 1
		pagesNr   = 2
	)
	imageNr := func(i int) int { return 3 + i }
	pageNr := func(p int) int { return 3 + len(images) + 2*p }
	contentNr := func(p int) int { return pageNr(p) + 1 }
	total := 3 + len(images) + 2*len(pages)

	var buf bytes.Buffer
	offsets := make([]int, total)
	writeObject := func(nr int, body []byte) {
		offsets[nr] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", nr)
		buf.Write(body)
		buf.WriteString("\nendobj\n")
	}
	stream := func(dict string, data []byte) []byte {
		var b bytes.Buffer
		fmt.Fprintf(&b, "<< %s /Length %d >>\nstream\n", dict, len(data))
		b.Write(data)
		b.WriteString("\nendstream")
		return b.Bytes()
	}

	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	writeObject(catalogNr, []byte(fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesNr)))

	kids := make([]string, len(pages))
	for p := range pages {
		kids[p] = fmt.Sprintf("%d 0 R", pageNr(p))
	}
	writeObject(pagesNr, []byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(pages))))

	for i, img := range images {
		dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d "+
			"/ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode", img.Width, img.Height)
		writeObject(imageNr(i), stream(dict, imageData(img)))
	}

	for p, page := range pages {
		var xobjects, content strings.Builder
		for j, i := range page.Images {
			fmt.Fprintf(&xobjects, " /Im%d %d 0 R", j, imageNr(i))
			fmt.Fprintf(&content, "q 200 0 0 150 50 %d cm /Im%d Do Q\n", 50+160*j, j)
		}
		if content.Len() == 0 {
			content.WriteString("q Q\n")
		}
		resources := "<< >>"
		if xobjects.Len() > 0 {
			resources = fmt.Sprintf("<< /XObject <<%s >> >>", xobjects.String())
		}
		writeObject(pageNr(p), []byte(fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources %s /Contents %d 0 R >>",
			pagesNr, resources, contentNr(p))))
		writeObject(contentNr(p), stream("", []byte(content.String())))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", total)
	for nr := 1; nr < total; nr++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[nr])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", total, catalogNr, xref)
	return buf.Bytes()
}

// Pages returns n pages without images.
func Pages(n int) []Page {
	return make([]Page, n)
}

func imageData(img Image) []byte {
	if img.Corrupt {
		return bytes.Repeat([]byte("not a deflate stream "), 16)
	}

	// xorshift noise keeps the encoded image large and unique per seed.
	pixels := make([]byte, img.Width*img.Height)
	state := img.Seed | 1
	for i := range pixels {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		pixels[i] = byte(state)
	}

	var b bytes.Buffer
	zw := zlib.NewWriter(&b)
	zw.Write(pixels)
	zw.Close()
	return b.Bytes()
}
