package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docchat/docchat/internal/pkg/errs"
)

// PDFText extracts the plain text of every page. Pages are separated by a
// marker so downstream normalization keeps page breaks as whitespace.
func PDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", errs.ErrExtraction, err)
	}
	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// a single broken page should not sink the document
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n\n--- Page %d ---\n\n%s", i, pageText)
	}
	return strings.TrimSpace(sb.String()), nil
}
