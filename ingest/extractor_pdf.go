package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// extractPDF pulls plain text out of a PDF, page by page, pages joined with
// a blank line so the splitter sees page breaks as paragraph boundaries.
// Pages that fail individually are skipped; PDFs routinely contain
// image-only or malformed pages and one of them should not sink the
// document. The result is NFKC-normalized: PDF extraction produces
// ligatures and fullwidth forms that would otherwise slip past keyword
// search.
func extractPDF(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty pdf content")
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}
	return norm.NFKC.String(strings.TrimSpace(text.String())), nil
}
