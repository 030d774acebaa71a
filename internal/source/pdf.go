package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned for content that is not a PDF document.
var ErrNotPDF = errors.New("please select a PDF file")

// FromPDF extracts the plain text of every page. Words on a page are joined
// with spaces and pages with a newline.
func FromPDF(r io.ReaderAt, size int64) (text string, err error) {
	head := make([]byte, 512)
	n, _ := r.ReadAt(head, 0)
	if http.DetectContentType(head[:n]) != "application/pdf" {
		return "", ErrNotPDF
	}

	// The parser panics on some malformed documents.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("read PDF: %v", rec)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("read PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read PDF page %d: %w", i, err)
		}
		b.WriteString(Normalize(pageText))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// FromPDFFile extracts the text of the PDF at path.
func FromPDFFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return FromPDF(bytes.NewReader(data), int64(len(data)))
}
