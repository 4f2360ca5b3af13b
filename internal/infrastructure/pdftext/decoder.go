// Package pdftext decodes PDF order attachments into plain text for the
// layout extractors.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
	"github.com/ledongthuc/pdf"
)

// Decoder converts PDF payloads to text. Text is read row by row so the
// column layout the extractors depend on survives; there is no OCR, a
// scanned image-only PDF decodes to nothing and fails structurally.
type Decoder struct{}

// NewDecoder creates a PDF text decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode extracts the text of every page, one text row per line, pages
// separated by form feeds. An unreadable payload is a structural
// extraction failure: the run cannot proceed without lines.
func (d *Decoder) Decode(ctx context.Context, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("pdftext: empty payload: %w", domain.ErrStructuralExtraction)
	}

	reader, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", fmt.Errorf("pdftext: %v: %w", err, domain.ErrStructuralExtraction)
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			// A single bad page is tolerable; the rest may still parse
			continue
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(word.S)
			}
			b.WriteByte('\n')
		}
		b.WriteByte('\f')
	}

	text := strings.TrimSpace(strings.Trim(b.String(), "\f"))
	if text == "" {
		return "", fmt.Errorf("pdftext: no extractable text: %w", domain.ErrStructuralExtraction)
	}
	return text, nil
}
