// Package pdfdoc adapts PDF files to the extract.SectionSource port.
// Page text comes from ledongthuc/pdf; embedded images come from pdfcpu.
// Sections are pages: section i is page i+1.
package pdfdoc

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pveilleux/claimsift/internal/extract"
)

// Document is an open claim PDF
type Document struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	pages  int
}

// Open opens the PDF at path
func Open(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	return &Document{
		path:   path,
		file:   f,
		reader: r,
		pages:  r.NumPage(),
	}, nil
}

// Opener adapts Open to the extract.SourceOpener signature
func Opener(path string) (extract.SectionSource, error) {
	return Open(path)
}

// NumSections returns the page count
func (d *Document) NumSections() int {
	return d.pages
}

// SectionText returns the plain text of page i+1
func (d *Document) SectionText(i int) (string, error) {
	if i < 0 || i >= d.pages {
		return "", fmt.Errorf("section %d out of range (document has %d)", i, d.pages)
	}

	page := d.reader.Page(i + 1)
	if page.V.IsNull() {
		return "", nil
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("read page %d text: %w", i+1, err)
	}
	return text, nil
}

// SectionImages returns the embedded images of page i+1 in embedding order.
// pdfcpu needs its own reader positioned at the start, so the file is
// reopened rather than sharing the text reader's handle.
func (d *Document) SectionImages(i int) ([]extract.SectionImage, error) {
	if i < 0 || i >= d.pages {
		return nil, nil
	}

	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("reopen pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	var images []extract.SectionImage
	digest := func(img pdfcpumodel.Image, singleImgPerPage bool, maxPageDigits int) error {
		data, err := io.ReadAll(img)
		if err != nil {
			return fmt.Errorf("read image %s: %w", img.Name, err)
		}
		images = append(images, extract.SectionImage{
			Data:     data,
			FileType: img.FileType,
		})
		return nil
	}

	pages := []string{strconv.Itoa(i + 1)}
	if err := api.ExtractImages(f, pages, digest, nil); err != nil {
		return nil, fmt.Errorf("extract images from page %d: %w", i+1, err)
	}

	return images, nil
}

// Close releases the underlying file handle
func (d *Document) Close() error {
	return d.file.Close()
}
